// Package export writes fetched catalog records to files.
//
// Two formats are supported: JSON Lines (one record per line, same field names
// as the catalog API) and Parquet (one row per record, nullable columns).
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/logging"
)

// Format names an output encoding.
type Format string

const (
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat is returned for any format other than jsonl or parquet.
var ErrUnknownFormat = errors.New("unknown export format")

var exportRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "artable_export_records_total",
	Help: "Records written by export format",
}, []string{"format"})

// Row is the Parquet schema of one record.
type Row struct {
	ID            int64   `parquet:"id"`
	Title         *string `parquet:"title,optional"`
	PlaceOfOrigin *string `parquet:"place_of_origin,optional"`
	ArtistTitle   *string `parquet:"artist_title,optional"`
	Inscriptions  *string `parquet:"inscriptions,optional"`
	DateStart     *int64  `parquet:"date_start,optional"`
	DateEnd       *int64  `parquet:"date_end,optional"`
}

// ParseFormat maps a name (case-insensitive) to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSONL, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: jsonl, parquet)", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(path, ".jsonl"), strings.HasSuffix(path, ".json"):
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
	}
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format Format, records []catalog.Record) error {
	logger := logging.NewLogger("export")

	var err error
	switch format {
	case FormatJSONL:
		err = writeJSONL(w, records)
	case FormatParquet:
		err = writeParquet(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		logger.Error().Err(err).Str("format", string(format)).Msg("Export failed")
		return err
	}

	exportRecordsTotal.WithLabelValues(string(format)).Add(float64(len(records)))
	logger.Debug().Str("format", string(format)).Int("records", len(records)).Msg("Export written")
	return nil
}

func writeJSONL(w io.Writer, records []catalog.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", r.ID, err)
		}
	}
	return nil
}

func writeParquet(w io.Writer, records []catalog.Record) error {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = ToRow(r)
	}

	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ToRow converts a record to its Parquet row.
func ToRow(r catalog.Record) Row {
	return Row{
		ID:            r.ID,
		Title:         r.Title,
		PlaceOfOrigin: r.PlaceOfOrigin,
		ArtistTitle:   r.ArtistTitle,
		Inscriptions:  r.Inscriptions,
		DateStart:     widen(r.DateStart),
		DateEnd:       widen(r.DateEnd),
	}
}

func widen(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
