// Package i18n renders user-facing error messages from per-locale catalogs.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var catalogs = map[string]*Catalog{
	"en-US": enUSCatalog,
	"pt-BR": ptBRCatalog,
}

var (
	matcher     language.Matcher
	matcherTags []language.Tag
)

func init() {
	matcherTags = make([]language.Tag, 0, len(catalogs))
	// en-US first so it wins as the matcher default.
	matcherTags = append(matcherTags, language.MustParse(BaseLocale))
	for locale := range catalogs {
		if locale == BaseLocale {
			continue
		}
		matcherTags = append(matcherTags, language.MustParse(locale))
	}
	matcher = language.NewMatcher(matcherTags)
}

// GetCatalog returns the catalog for the given locale, using language
// matching to resolve regional variants. Falls back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		return catalogs[BaseLocale]
	}
	if c, ok := catalogs[requested]; ok {
		return c
	}

	tag, err := language.Parse(requested)
	if err != nil {
		return catalogs[BaseLocale]
	}
	_, index, _ := matcher.Match(tag)
	if c, ok := catalogs[matcherTags[index].String()]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
