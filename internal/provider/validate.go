package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrProvider is returned when the envelope itself reports a failure. The
// whole extraction aborts; no partial result is produced.
var ErrProvider = errors.New("provider call failed")

// MalformedError identifies which part of the provider document was missing
// or inconsistent, so callers can tell provider bugs from our own.
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed provider document: %s: %s", e.Field, e.Reason)
}

// Decode parses a provider response envelope and validates it.
func Decode(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProvider, resp.Error)
	}
	if err := Validate(&resp.Document); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate checks the structural requirements the pipeline depends on.
// Anomalies below this bar (orphaned provenance, degenerate boxes) degrade
// silently downstream instead of failing here.
func Validate(doc *Document) error {
	if doc == nil {
		return &MalformedError{Field: "document", Reason: "missing"}
	}
	if doc.Pages.Len() == 0 {
		return &MalformedError{Field: "document.pages", Reason: "no page dimensions"}
	}
	for i, txt := range doc.Texts {
		if len(txt.Prov) == 0 {
			return &MalformedError{
				Field:  fmt.Sprintf("document.texts[%d].prov", i),
				Reason: "no provenance",
			}
		}
	}
	for i, tbl := range doc.Tables {
		if tbl.Data == nil {
			return &MalformedError{
				Field:  fmt.Sprintf("document.tables[%d].data", i),
				Reason: "missing table data",
			}
		}
		if tbl.Data.NumRows < 0 || tbl.Data.NumCols < 0 {
			return &MalformedError{
				Field:  fmt.Sprintf("document.tables[%d].data", i),
				Reason: "negative grid dimensions",
			}
		}
	}
	return nil
}
