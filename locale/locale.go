// Package locale holds the playground's user-facing strings. Korean is the
// default language; English is bundled as a second catalog.
package locale

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Message IDs.
const (
	StatusReady     = "StatusReady"
	StatusRunning   = "StatusRunning"
	StatusDone      = "StatusDone"
	StatusError     = "StatusError"
	StatusStopped   = "StatusStopped"
	Elapsed         = "Elapsed"
	RunComplete     = "RunComplete"
	RunStopped      = "RunStopped"
	NoCode          = "NoCode"
	Saved           = "Saved"
	Loaded          = "Loaded"
	NothingSaved    = "NothingSaved"
	Downloaded      = "Downloaded"
	ExampleLoaded   = "ExampleLoaded"
	CursorPosition  = "CursorPosition"
	InputPrompt     = "InputPrompt"
	ErrSyntax       = "ErrSyntax"
	ErrName         = "ErrName"
	ErrType         = "ErrType"
	ErrIndex        = "ErrIndex"
	ErrValue        = "ErrValue"
	ErrZeroDivision = "ErrZeroDivision"
	ErrIndentation  = "ErrIndentation"
	ErrTimeLimit    = "ErrTimeLimit"
	ErrGeneric      = "ErrGeneric"
	TabConsole      = "TabConsole"
	TabGraphics     = "TabGraphics"
	ExamplesMenu    = "ExamplesMenu"
)

// DefaultLanguage is used when no preference matches.
var DefaultLanguage = language.Korean

//go:embed messages/*.yaml
var messageFS embed.FS

// Catalog is a parsed set of message files.
type Catalog struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// NewCatalog parses the embedded message files.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := messageFS.ReadDir("messages")
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("messages", entry.Name())
		data, err := messageFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	return &Catalog{
		bundle:  bundle,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the shared catalog. The embedded files are part of the
// binary, so a parse failure is a build defect and panics.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Languages lists the bundled languages, default first.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// Match picks the best bundled language for the given preferences, which may
// be tags or Accept-Language header values. Anything short of a confident
// match falls back to DefaultLanguage.
func (c *Catalog) Match(prefs ...string) string {
	tags := make([]language.Tag, 0, len(prefs))
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return DefaultLanguage.String()
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf < language.High {
		return DefaultLanguage.String()
	}
	return c.bundle.LanguageTags()[idx].String()
}

// Localizer renders messages in one language.
type Localizer struct {
	lang string
	loc  *i18n.Localizer
}

// Localizer returns a renderer for lang, falling back to the default
// language for unknown tags.
func (c *Catalog) Localizer(lang string) *Localizer {
	matched := c.Match(lang)
	return &Localizer{
		lang: matched,
		loc:  i18n.NewLocalizer(c.bundle, matched),
	}
}

// Language returns the resolved language tag.
func (l *Localizer) Language() string {
	return l.lang
}

// T renders id with optional template data. Unknown ids render as the id
// itself so a missing string is visible rather than blank.
func (l *Localizer) T(id string, data ...map[string]any) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	msg, err := l.loc.Localize(cfg)
	if err != nil {
		return id
	}
	return msg
}
