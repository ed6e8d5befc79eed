// Package i18n implements the Translator port on top of embedded JSON
// locale bundles, mirroring the namespace:key.path addressing used by the
// prompt templates.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed locales/*/*.json locales/*/decks/*.json
var localeFS embed.FS

const fallbackLang = "en"

// Translator resolves "{namespace}:{path}" keys against one active locale,
// falling back to English and then to the key itself.
type Translator struct {
	once sync.Once
	err  error

	lang     string
	messages map[string]map[string]string // lang -> flat key -> template
}

func New(lang string) *Translator {
	if lang == "" {
		lang = fallbackLang
	}
	return &Translator{lang: lang}
}

func (t *Translator) init() {
	t.messages = make(map[string]map[string]string)

	err := fs.WalkDir(localeFS, "locales", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".json") {
			return err
		}
		// locales/<lang>/<ns>.json or locales/<lang>/decks/<deckId>.json
		parts := strings.Split(p, "/")
		lang := parts[1]
		ns := strings.TrimSuffix(parts[len(parts)-1], ".json")
		prefix := ns + ":"
		if len(parts) == 4 && parts[2] == "decks" {
			prefix = "decks:" + ns + "."
		}

		raw, err := localeFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read locale %s: %w", p, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return fmt.Errorf("parse locale %s: %w", p, err)
		}

		if t.messages[lang] == nil {
			t.messages[lang] = make(map[string]string)
		}
		flatten(prefix, tree, t.messages[lang])
		return nil
	})
	if err != nil {
		t.err = err
	}
}

// flatten turns a nested JSON object into dot-path keys under prefix.
func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		switch val := v.(type) {
		case string:
			out[prefix+k] = val
		case map[string]any:
			flatten(prefix+k+".", val, out)
		}
	}
}

func (t *Translator) lookup(key string) (string, bool) {
	t.once.Do(t.init)
	if t.err != nil {
		return "", false
	}
	if m := t.messages[t.lang]; m != nil {
		if s, ok := m[key]; ok {
			return s, true
		}
	}
	if m := t.messages[fallbackLang]; m != nil {
		if s, ok := m[key]; ok {
			return s, true
		}
	}
	return "", false
}

// T resolves key with params; missing keys resolve to the key itself.
func (t *Translator) T(key string, params map[string]string) string {
	return t.TDefault(key, key, params)
}

// TDefault resolves key with params, falling back to def when missing.
func (t *Translator) TDefault(key, def string, params map[string]string) string {
	tmpl, ok := t.lookup(key)
	if !ok {
		tmpl = def
	}
	return interpolate(tmpl, params)
}

// Language returns the active language code.
func (t *Translator) Language() string { return t.lang }

// interpolate substitutes {{name}} placeholders.
func interpolate(tmpl string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	out := tmpl
	for k, v := range params {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
