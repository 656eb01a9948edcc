package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a specifier names a missing directory or
	// matches no Markdown files, or when a file disappears before it is read.
	ErrNotFound = errors.New("content not found")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed front matter")
)

// ParseError reports a front matter block that could not be split or decoded.
// Missing front matter is not an error.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse front matter: %v", e.Err)
	}
	return fmt.Sprintf("parse front matter in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
