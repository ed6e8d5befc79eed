package domain

import "errors"

var (
	ErrEmptyDeck          = errors.New("deck has no cards after filtering")
	ErrNotEnoughCards     = errors.New("count exceeds number of cards in deck")
	ErrInvalidCount       = errors.New("count must be at least 1")
	ErrDeckNotFound       = errors.New("deck not found")
	ErrSpreadNotFound     = errors.New("spread not found")
	ErrReadingNotFound    = errors.New("reading not found")
	ErrIncompleteReading  = errors.New("drawn cards do not fill the spread")
	ErrMissingCredentials = errors.New("missing API key")
	ErrUpstreamLLM        = errors.New("upstream LLM failure")
	ErrLLMTransport       = errors.New("LLM endpoint unreachable")
)
