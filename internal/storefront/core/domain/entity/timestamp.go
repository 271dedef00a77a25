package entity

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend and the browser both expect prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Timestamp accepts the backend's zone-less LocalDateTime strings as well
// as RFC3339. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("entity: unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*t = Timestamp{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' {
		return fmt.Errorf("entity: timestamp must be a string, got %s", b)
	}
	parsed, err := ParseTimestamp(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}
