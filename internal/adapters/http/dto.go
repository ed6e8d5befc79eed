package http

import "github.com/lorenzomaiuri-dev/tarots-os/internal/domain"

// DrawRequest is the JSON body of POST /v1/draw.
type DrawRequest struct {
	Deck          string   `json:"deck"`
	Spread        string   `json:"spread,omitempty"`
	Positions     []string `json:"positions,omitempty"`
	Count         int      `json:"count,omitempty"`
	Seed          string   `json:"seed,omitempty"`
	AllowReversed bool     `json:"allowReversed"`
	OnlyMajor     bool     `json:"onlyMajorArcana,omitempty"`
	Exclude       []string `json:"exclude,omitempty"`
}

// DrawResponse wraps the drawn cards of one draw call.
type DrawResponse struct {
	Cards []domain.DrawnCard `json:"cards"`
	Seed  string             `json:"seed,omitempty"`
}

// DailyResponse is the JSON shape of GET /v1/daily.
type DailyResponse struct {
	Card         domain.DrawnCard `json:"card"`
	AlreadyDrawn bool             `json:"alreadyDrawn"`
}

// SaveReadingRequest is the JSON body of POST /v1/readings.
type SaveReadingRequest struct {
	Deck     string             `json:"deck"`
	Spread   string             `json:"spread"`
	Cards    []domain.DrawnCard `json:"cards"`
	Question string             `json:"question,omitempty"`
	Seed     string             `json:"seed,omitempty"`
}

// InterpretRequest optionally overrides the server's model defaults with
// the caller's own credentials.
type InterpretRequest struct {
	Model   string `json:"model,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// InterpretResponse is the JSON shape of POST /v1/readings/:id/interpret.
type InterpretResponse struct {
	Interpretation string `json:"interpretation"`
	Model          string `json:"model"`
}

// NotesRequest is the JSON body of PATCH /v1/readings/:id/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
