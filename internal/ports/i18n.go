package ports

// Translator resolves localized strings. Keys are addressed as
// "{namespace}:{path}" (e.g. "prompts:card_line",
// "decks:rider-waite.cards.maj_00.name") and templates interpolate
// {{param}} placeholders.
type Translator interface {
	// T resolves key with params. Missing keys resolve to the key itself.
	T(key string, params map[string]string) string
	// TDefault resolves key with params, falling back to def when missing.
	TDefault(key, def string, params map[string]string) string
	// Language returns the active BCP 47 language code.
	Language() string
}
