package store

import "fmt"

// DataUnavailableError reports that a symbol's backing data file is missing
// or unreadable. The store never substitutes data for a symbol it cannot
// load, so this error is fatal for the run that triggered it.
type DataUnavailableError struct {
	Symbol string
	Path   string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for %s (%s): %v", e.Symbol, e.Path, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// MalformedRecordError reports a row that could not be parsed into a Bar:
// a non-numeric field, an invalid date, or a duplicate date within one
// symbol's file. Rows are never skipped silently — a dropped row would shift
// every later bar and corrupt the reference trading calendar.
type MalformedRecordError struct {
	Symbol string
	Row    int // 1-based data row position, header excluded
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record for %s at row %d: %v", e.Symbol, e.Row, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
