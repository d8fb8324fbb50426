package plan

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a plan file or source document is missing
var ErrNotFound = errors.New("not found")

// ParseError reports a plan document that cannot be used
type ParseError struct {
	Path    string
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Section != "":
		return fmt.Sprintf("parse plan %s: section %q not found", e.Path, e.Section)
	case e.Err != nil:
		return fmt.Sprintf("parse plan %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("parse plan %s", e.Path)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
