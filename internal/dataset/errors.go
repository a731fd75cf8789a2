package dataset

import "fmt"

// SourceNotFoundError reports that a configured source file does not exist.
// Fatal to that dataset only; an independently configured second dataset
// still loads and renders.
type SourceNotFoundError struct {
	Name string
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %q not found: %s", e.Name, e.Path)
}

// UnreadableSourceError reports that no encoding candidate decoded the file
// into well-formed delimited rows, or that the spreadsheet container is
// corrupt. Carries the underlying decode error text for diagnosis.
type UnreadableSourceError struct {
	Name  string
	Path  string
	Tried []string
	Cause error
}

func (e *UnreadableSourceError) Error() string {
	if len(e.Tried) > 0 {
		return fmt.Sprintf("source %q unreadable (%s): tried encodings %v: %v", e.Name, e.Path, e.Tried, e.Cause)
	}
	return fmt.Sprintf("source %q unreadable (%s): %v", e.Name, e.Path, e.Cause)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Cause
}
