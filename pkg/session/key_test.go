package session

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a", "artable:session:0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a"},
		{"abc", "artable:session:abc"},
	}

	for _, tt := range tests {
		if got := Key(tt.id); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID returned the same id twice")
	}
	if !ValidID(a) {
		t.Errorf("ValidID(%q) = false", a)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a", true},
		{"", false},
		{"not-a-uuid", false},
		{"{0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a}", false},
		{"urn:uuid:0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a", false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
