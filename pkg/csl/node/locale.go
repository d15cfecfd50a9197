package node

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is the last resort of every locale fallback chain.
const DefaultLocale = "en-US"

// LocaleSource loads standalone locale documents by code.
type LocaleSource interface {
	LoadLocale(code string) (*Locale, error)
}

// Locale holds localized terms, date formats and options. It is the root of
// a locale file and may also appear inline in a style.
type Locale struct{ Element }

// Lang returns the xml:lang attribute; empty for language-neutral inline
// locales.
func (l *Locale) Lang() string { return l.AttrOr("xml:lang", "") }

// Terms returns every term of the locale.
func (l *Locale) Terms() []*Term {
	var out []*Term
	for _, ts := range All[*Terms](l) {
		out = append(out, All[*Term](ts)...)
	}
	return out
}

// Term returns the term with the given name and form. An empty form means
// "long".
func (l *Locale) Term(name, form string) (*Term, bool) {
	if form == "" {
		form = "long"
	}
	for _, t := range l.Terms() {
		if t.Name() == name && t.Form() == form {
			return t, true
		}
	}
	return nil, false
}

// DateFormat returns the localized date format of the given form.
func (l *Locale) DateFormat(form string) (*Date, bool) {
	for _, d := range All[*Date](l) {
		if d.Form() == form {
			return d, true
		}
	}
	return nil, false
}

// StyleOptions returns the locale options element.
func (l *Locale) StyleOptions() (*StyleOptions, bool) { return First[*StyleOptions](l) }

// primaryDialects maps a language to the locale file used when only the
// language matches.
var primaryDialects = map[string]string{
	"af": "af-ZA", "ar": "ar", "bg": "bg-BG", "ca": "ca-AD", "cs": "cs-CZ",
	"cy": "cy-GB", "da": "da-DK", "de": "de-DE", "el": "el-GR", "en": "en-US",
	"es": "es-ES", "et": "et-EE", "eu": "eu", "fa": "fa-IR", "fi": "fi-FI",
	"fr": "fr-FR", "he": "he-IL", "hr": "hr-HR", "hu": "hu-HU", "id": "id-ID",
	"is": "is-IS", "it": "it-IT", "ja": "ja-JP", "km": "km-KH", "ko": "ko-KR",
	"lt": "lt-LT", "lv": "lv-LV", "mn": "mn-MN", "nb": "nb-NO", "nl": "nl-NL",
	"nn": "nn-NO", "pl": "pl-PL", "pt": "pt-PT", "ro": "ro-RO", "ru": "ru-RU",
	"sk": "sk-SK", "sl": "sl-SI", "sr": "sr-RS", "sv": "sv-SE", "th": "th-TH",
	"tr": "tr-TR", "uk": "uk-UA", "vi": "vi-VN", "zh": "zh-CN",
}

// PrimaryDialect returns the primary dialect locale code for a language.
func PrimaryDialect(lang string) (string, bool) {
	d, ok := primaryDialects[strings.ToLower(lang)]
	return d, ok
}

// SetLocaleList establishes the locale fallback order of the style. For
// each requested code, in order:
//
//  1. inline locales whose xml:lang equals the code
//  2. inline locales of the code's base language
//  3. inline locales without xml:lang
//  4. the locale file of the code
//  5. the locale file of the language's primary dialect
//
// followed by the en-US locale file. Locale files that cannot be loaded are
// skipped and reported by MissingLocales. Without codes the style's
// default-locale (or en-US) is used.
func (s *Style) SetLocaleList(codes ...string) error {
	if len(codes) == 0 {
		codes = []string{s.AttrOr("default-locale", DefaultLocale)}
	}

	var src LocaleSource
	if s.tree != nil {
		src = s.tree.LocaleSource()
	}

	var (
		list    []*Locale
		missing []string
		seen    = make(map[*Locale]bool)
		tried   = make(map[string]bool)
	)
	add := func(l *Locale) {
		if l != nil && !seen[l] {
			seen[l] = true
			list = append(list, l)
		}
	}
	addFile := func(code string) {
		if src == nil || tried[code] {
			return
		}
		tried[code] = true
		l, err := src.LoadLocale(code)
		if err != nil {
			missing = append(missing, code)
			return
		}
		add(l)
	}

	inline := s.InlineLocales()
	for _, code := range codes {
		lang, err := baseLanguage(code)
		if err != nil {
			return err
		}

		for _, l := range inline {
			if strings.EqualFold(l.Lang(), code) {
				add(l)
			}
		}
		for _, l := range inline {
			if strings.EqualFold(l.Lang(), lang) {
				add(l)
			}
		}
		for _, l := range inline {
			if l.Lang() == "" {
				add(l)
			}
		}
		addFile(code)
		if dialect, ok := PrimaryDialect(lang); ok {
			addFile(dialect)
		}
	}
	addFile(DefaultLocale)

	s.codes = append([]string(nil), codes...)
	s.locales = list
	s.missing = missing
	return nil
}

// baseLanguage returns the language subtag of a locale code. Well-formed
// codes with unregistered subtags are accepted.
func baseLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		var verr language.ValueError
		if !errors.As(err, &verr) {
			return "", fmt.Errorf("invalid locale %q: %w", code, err)
		}
		lang, _, _ := strings.Cut(code, "-")
		return strings.ToLower(lang), nil
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// LocaleCodes returns the codes passed to the last SetLocaleList call.
func (s *Style) LocaleCodes() []string { return append([]string(nil), s.codes...) }

// Locales returns the resolved locale fallback order.
func (s *Style) Locales() []*Locale { return append([]*Locale(nil), s.locales...) }

// MissingLocales returns locale files of the fallback chain that could not
// be loaded.
func (s *Style) MissingLocales() []string { return append([]string(nil), s.missing...) }

// formFallback lists the forms tried, in order, for a requested term form.
var formFallback = map[string][]string{
	"long":       {"long"},
	"short":      {"short", "long"},
	"verb":       {"verb", "long"},
	"verb-short": {"verb-short", "verb", "long"},
	"symbol":     {"symbol", "short", "long"},
}

// LookupTerm finds a term along the locale fallback order. If the form is
// not defined anywhere, the CSL form fallback (verb-short -> verb -> long,
// symbol -> short -> long, short -> long) is applied.
func (s *Style) LookupTerm(name, form string) (*Term, bool) {
	if form == "" {
		form = "long"
	}
	forms, ok := formFallback[form]
	if !ok {
		forms = []string{form}
	}
	for _, f := range forms {
		for _, l := range s.locales {
			if t, ok := l.Term(name, f); ok {
				return t, true
			}
		}
	}
	return nil, false
}
