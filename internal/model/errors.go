package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSource marks a source with no rows at all (no header line to
// validate). Fatal to the ingestion run.
var ErrMalformedSource = errors.New("malformed source: no rows")

// MissingColumnsError reports every required column absent from the header
// row. Raised before any data row is processed, so a bad file fails in
// constant time regardless of its size.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("source is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// AsMissingColumns unwraps err into a *MissingColumnsError if it is one.
func AsMissingColumns(err error) (*MissingColumnsError, bool) {
	var mc *MissingColumnsError
	if errors.As(err, &mc) {
		return mc, true
	}
	return nil, false
}
