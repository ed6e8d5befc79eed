// Package prompt renders the chat-completion prompt for a reading using
// localized templates, so the generated interpretation matches the user's
// language and the bundled deck/spread wording.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/ports"
)

// Template keys consumed from the "prompts" namespace.
const (
	keySystem           = "prompts:system_instruction"
	keyContext          = "prompts:context_block"
	keyCardsHeader      = "prompts:cards_header"
	keyCardLine         = "prompts:card_line"
	keyFinalInstruction = "prompts:final_instruction"
	keyStatusUpright    = "prompts:status_upright"
	keyStatusReversed   = "prompts:status_reversed"
	keyQuestionFallback = "prompts:question_fallback"
)

// langNames maps common BCP 47 codes to human-readable language names for
// the system-prompt language directive.
var langNames = map[string]string{
	"en": "English",
	"it": "Italiano",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"zh": "Chinese",
}

// Builder renders two-message prompts from an injected translator.
type Builder struct {
	tr ports.Translator
}

func NewBuilder(tr ports.Translator) *Builder {
	return &Builder{tr: tr}
}

// Build renders the system and user messages for a reading. Drawn cards
// whose id cannot be resolved in the deck are silently omitted; an empty
// card list renders the header with an empty body. Input order of
// drawnCards is preserved (draw order, not slot order).
func (b *Builder) Build(deck domain.Deck, spread domain.Spread, drawnCards []domain.DrawnCard, userQuestion string) []domain.ChatMessage {
	language := languageName(b.tr.Language())

	system := b.tr.T(keySystem, map[string]string{"language": language})

	deckName := b.tr.TDefault("decks:"+deck.Info.ID+".name", deck.Info.ID, nil)
	spreadName := b.tr.TDefault("spreads:"+spread.ID+".name", spread.ID, nil)

	question := strings.TrimSpace(userQuestion)
	if question == "" {
		question = b.tr.T(keyQuestionFallback, nil)
	}

	contextBlock := b.tr.T(keyContext, map[string]string{
		"deckName":   deckName,
		"spreadName": spreadName,
		"question":   question,
	})

	var lines []string
	for idx, dc := range drawnCards {
		card, ok := deck.Card(dc.CardID)
		if !ok {
			continue
		}
		lines = append(lines, b.cardLine(deck, spread, dc, card, idx))
	}

	cardsSection := b.tr.T(keyCardsHeader, nil) + "\n" + strings.Join(lines, "\n")

	user := strings.TrimSpace(strings.Join([]string{
		contextBlock,
		cardsSection,
		b.tr.T(keyFinalInstruction, nil),
	}, "\n\n"))

	return []domain.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func (b *Builder) cardLine(deck domain.Deck, spread domain.Spread, dc domain.DrawnCard, card domain.Card, idx int) string {
	deckNS := "decks:" + deck.Info.ID
	spreadNS := "spreads:" + spread.ID

	cardName := b.tr.TDefault(deckNS+".cards."+card.ID+".name", card.ID, nil)
	keywords := b.tr.TDefault(deckNS+".cards."+card.ID+".keywords", "", nil)

	positionName := dc.PositionID
	positionMeaning := ""
	if pos, ok := spread.Slot(dc.PositionID); ok {
		positionName = b.tr.TDefault(spreadNS+".positions."+pos.ID+".label", pos.Label, nil)
		positionMeaning = b.tr.TDefault(spreadNS+".positions."+pos.ID+".description", "", nil)
	}

	status := b.tr.T(keyStatusUpright, nil)
	if dc.IsReversed {
		status = b.tr.T(keyStatusReversed, nil)
	}

	meta := string(card.Meta.Type)
	if card.Meta.Suit != "" && card.Meta.Suit != domain.SuitNone {
		meta = fmt.Sprintf("%s (%s)", card.Meta.Type, card.Meta.Suit)
	}

	return b.tr.T(keyCardLine, map[string]string{
		"index":           strconv.Itoa(idx + 1),
		"positionName":    positionName,
		"positionMeaning": positionMeaning,
		"cardName":        cardName,
		"status":          status,
		"keywords":        keywords,
		"meta":            meta,
	})
}

func languageName(code string) string {
	if name, ok := langNames[code]; ok {
		return name
	}
	if i := strings.IndexByte(code, '-'); i > 0 {
		if name, ok := langNames[code[:i]]; ok {
			return name
		}
	}
	if code == "" {
		return "English"
	}
	return code
}
