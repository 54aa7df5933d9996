package marble

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by every DiagramError. Match with errors.Is.
var (
	// ErrInvalidDiagram is returned when a conventional diagram contains '!'.
	ErrInvalidDiagram = errors.New("invalid marble diagram")
	// ErrDuplicateMarker is returned for a second '^' or '!' in a subscription diagram.
	ErrDuplicateMarker = errors.New("duplicate marker")
	// ErrInvalidCharacter is returned for anything but "- ^!()" in a subscription diagram.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrMalformedGroup is returned for nested, unmatched or unclosed groups.
	ErrMalformedGroup = errors.New("malformed group")
)

// DiagramError reports where compilation of a diagram failed.
// Pos is the zero-based character (rune) index of Char in Diagram.
type DiagramError struct {
	Diagram string
	Pos     int
	Char    rune
	Err     error
	msg     string
}

func (e *DiagramError) Error() string {
	return fmt.Sprintf("%s at position %d of %q", e.msg, e.Pos, e.Diagram)
}

func (e *DiagramError) Unwrap() error { return e.Err }

func newDiagramError(diagram string, pos int, c rune, err error, msg string) *DiagramError {
	return &DiagramError{Diagram: diagram, Pos: pos, Char: c, Err: err, msg: msg}
}

func unsubscriptionMarkerError(diagram string, pos int) error {
	return newDiagramError(diagram, pos, '!', ErrInvalidDiagram,
		"conventional marble diagrams cannot have the unsubscription marker '!'")
}

func duplicateMarkerError(diagram string, pos int, c rune) error {
	point := "subscription"
	if c == '!' {
		point = "unsubscription"
	}
	return newDiagramError(diagram, pos, c, ErrDuplicateMarker,
		fmt.Sprintf("found a second %s point '%c' in a subscription marble diagram. There can only be one.", point, c))
}

func invalidCharacterError(diagram string, pos int, c rune) error {
	return newDiagramError(diagram, pos, c, ErrInvalidCharacter,
		fmt.Sprintf("there can only be '^' and '!' markers in a subscription marble diagram. Found instead '%c'.", c))
}

func malformedGroupError(diagram string, pos int, c rune, why string) error {
	return newDiagramError(diagram, pos, c, ErrMalformedGroup, why)
}
