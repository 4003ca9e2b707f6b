package session

import "strings"

// keyPrefix namespaces session keys in a shared Redis.
const keyPrefix = "artable:session"

// Key returns the storage key for a session id.
//
// Example:
//
//	artable:session:0b0c9e4e-5d7a-4e0b-9d55-3f7b8f8f1c2a
func Key(id string) string {
	return strings.Join([]string{keyPrefix, id}, ":")
}
