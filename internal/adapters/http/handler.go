package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/app"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

const maxQuestionLen = 500

// Handler exposes the journal service over REST. aiDefaults fills in the
// model configuration when an interpret request does not carry its own.
type Handler struct {
	svc        *app.JournalService
	aiDefaults domain.AIModelConfig
}

func NewHandler(svc *app.JournalService, aiDefaults domain.AIModelConfig) *Handler {
	return &Handler{svc: svc, aiDefaults: aiDefaults}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/v1/decks", h.ListDecks)
	e.GET("/v1/spreads", h.ListSpreads)
	e.POST("/v1/draw", h.Draw)
	e.GET("/v1/daily", h.DailyCard)
	e.POST("/v1/readings", h.SaveReading)
	e.GET("/v1/readings", h.ListReadings)
	e.GET("/v1/readings/:id", h.GetReading)
	e.DELETE("/v1/readings/:id", h.DeleteReading)
	e.PATCH("/v1/readings/:id/notes", h.UpdateNotes)
	e.POST("/v1/readings/:id/interpret", h.Interpret)
	e.GET("/v1/backup", h.ExportBackup)
	e.POST("/v1/backup", h.ImportBackup)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListDecks(c echo.Context) error {
	infos, err := h.svc.Decks(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, infos)
}

func (h *Handler) ListSpreads(c echo.Context) error {
	spreads, err := h.svc.Spreads(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, spreads)
}

func (h *Handler) Draw(c echo.Context) error {
	var req DrawRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Deck == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "deck is required"})
	}

	cards, err := h.svc.Draw(c.Request().Context(), app.DrawRequest{
		DeckID:          req.Deck,
		SpreadID:        req.Spread,
		Positions:       req.Positions,
		Count:           req.Count,
		Seed:            req.Seed,
		AllowReversed:   req.AllowReversed,
		OnlyMajorArcana: req.OnlyMajor,
		ExcludeCardIDs:  req.Exclude,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, DrawResponse{Cards: cards, Seed: req.Seed})
}

func (h *Handler) DailyCard(c echo.Context) error {
	deckID := c.QueryParam("deck")
	if deckID == "" {
		deckID = h.svc.DefaultDeckID()
	}

	card, already, err := h.svc.DailyCard(c.Request().Context(), app.DailyCardRequest{
		DeckID:          deckID,
		User:            c.QueryParam("user"),
		AllowReversed:   c.QueryParam("allowReversed") == "true",
		OnlyMajorArcana: c.QueryParam("onlyMajorArcana") == "true",
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, DailyResponse{Card: card, AlreadyDrawn: already})
}

func (h *Handler) SaveReading(c echo.Context) error {
	var req SaveReadingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Question) > maxQuestionLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question must be at most 500 characters"})
	}

	session, err := h.svc.SaveReading(c.Request().Context(), app.SaveReadingRequest{
		DeckID:   req.Deck,
		SpreadID: req.Spread,
		Cards:    req.Cards,
		Question: strings.TrimSpace(req.Question),
		Seed:     req.Seed,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) ListReadings(c echo.Context) error {
	readings, err := h.svc.Readings(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	if readings == nil {
		readings = []domain.ReadingSession{}
	}
	return c.JSON(http.StatusOK, readings)
}

func (h *Handler) GetReading(c echo.Context) error {
	session, err := h.svc.Reading(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) DeleteReading(c echo.Context) error {
	if err := h.svc.DeleteReading(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	var req NotesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.svc.UpdateUserNotes(c.Request().Context(), c.Param("id"), req.Notes); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Interpret(c echo.Context) error {
	var req InterpretRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	cfg := h.aiDefaults
	if req.Model != "" {
		cfg.ModelID = req.Model
	}
	if req.APIKey != "" {
		cfg.APIKey = req.APIKey
	}
	if req.BaseURL != "" {
		cfg.BaseURL = req.BaseURL
	}

	text, err := h.svc.InterpretReading(c.Request().Context(), c.Param("id"), cfg)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, InterpretResponse{Interpretation: text, Model: cfg.ModelID})
}

func (h *Handler) ExportBackup(c echo.Context) error {
	backup, err := h.svc.ExportBackup(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, backup)
}

func (h *Handler) ImportBackup(c echo.Context) error {
	var backup app.Backup
	if err := c.Bind(&backup); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid backup file"})
	}
	if err := h.svc.ImportBackup(c.Request().Context(), backup); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrDeckNotFound),
		errors.Is(err, domain.ErrSpreadNotFound),
		errors.Is(err, domain.ErrReadingNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmptyDeck),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrNotEnoughCards),
		errors.Is(err, domain.ErrIncompleteReading),
		errors.Is(err, domain.ErrMissingCredentials):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUpstreamLLM), errors.Is(err, domain.ErrLLMTransport):
		slog.Error("interpretation failed", "request_id", requestID, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
