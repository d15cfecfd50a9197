package render

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Cite positions.
const (
	PositionFirst           = "first"
	PositionSubsequent      = "subsequent"
	PositionIbid            = "ibid"
	PositionIbidWithLocator = "ibid-with-locator"
)

// Options carries per-call render settings. Styles pass them to the
// formatter untouched.
type Options struct {
	Position       string `mapstructure:"position"`
	Locator        string `mapstructure:"locator"`
	Label          string `mapstructure:"label"`
	Prefix         string `mapstructure:"prefix"`
	Suffix         string `mapstructure:"suffix"`
	SuppressAuthor bool   `mapstructure:"suppress_author"`
	AuthorOnly     bool   `mapstructure:"author_only"`
	NoteIndex      int    `mapstructure:"note_index"`
	Format         string `mapstructure:"format"`
}

// DecodeOptions decodes keyword-style options (for example parsed from a
// command line or a JSON request) into Options. Unknown keys are rejected.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("decode render options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks enumerated option values.
func (o Options) Validate() error {
	switch o.Position {
	case "", PositionFirst, PositionSubsequent, PositionIbid, PositionIbidWithLocator:
	default:
		return fmt.Errorf("invalid position %q", o.Position)
	}
	if o.SuppressAuthor && o.AuthorOnly {
		return fmt.Errorf("suppress_author and author_only are mutually exclusive")
	}
	return nil
}
