package csl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cslkit/pkg/csl/diag"
)

// Sentinels matched by the typed resource errors through errors.Is.
var (
	ErrUnknownStyle  = errors.New("unknown style")
	ErrUnknownLocale = errors.New("unknown locale")
)

// UnknownStyleError is returned when a style identifier cannot be resolved
// to a readable source.
type UnknownStyleError struct {
	Identifier string
	Path       string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("%q is not a known style (looked for %s)", e.Identifier, e.Path)
}

// Is reports whether target is ErrUnknownStyle.
func (e *UnknownStyleError) Is(target error) bool { return target == ErrUnknownStyle }

// UnknownLocaleError is returned when a locale code has no locale file.
type UnknownLocaleError struct {
	Code      string
	Path      string
	Available []string
}

func (e *UnknownLocaleError) Error() string {
	msg := fmt.Sprintf("%q is not a known locale (looked for %s)", e.Code, e.Path)
	if len(e.Available) > 0 {
		msg += "\nAvailable locales: " + strings.Join(e.Available, ", ")
	}
	return msg
}

// Is reports whether target is ErrUnknownLocale.
func (e *UnknownLocaleError) Is(target error) bool { return target == ErrUnknownLocale }

// EmptyDocumentError is returned when a source holds no document element.
// Diagnostics holds any syntax errors met before giving up.
type EmptyDocumentError struct {
	Source      string
	Diagnostics diag.List
}

func (e *EmptyDocumentError) Error() string {
	if len(e.Diagnostics) > 0 {
		return fmt.Sprintf("%s: no document element: %v", e.Source, e.Diagnostics)
	}
	return fmt.Sprintf("%s: no document element", e.Source)
}

// RootTypeError is returned when a document root does not have the type a
// facade requires.
type RootTypeError struct {
	Source string
	Tag    string
	Want   string
}

func (e *RootTypeError) Error() string {
	return fmt.Sprintf("%s: document element %q cannot be used as a %s", e.Source, e.Tag, e.Want)
}
