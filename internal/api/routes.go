package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/internal/websocket"
	"github.com/satriahrh/lintas/usecase"
)

// Handler serves the translation backend
type Handler struct {
	service *usecase.TranslationService
	logger  *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, service *usecase.TranslationService, hub *websocket.Hub, staticDir string, logger *zap.Logger) {
	h := &Handler{service: service, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: "lintas",
		})
	})

	e.POST("/translate", h.Translate)
	e.POST("/speak", h.Speak)

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.GET("/translations", h.ListTranslations)

	// Streaming recognition
	e.GET("/ws/recognize", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})

	if staticDir != "" {
		e.Static("/static", staticDir)
		e.File("/", filepath.Join(staticDir, "index.html"))
	}
}

// Translate handles POST /translate
func (h *Handler) Translate(c echo.Context) error {
	var req domain.TranslateRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind translate request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid request format"})
	}

	translated, err := h.service.Translate(c.Request().Context(), req)
	switch {
	case errors.Is(err, usecase.ErrNoTranslationText):
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "No text provided for translation"})
	case errors.Is(err, usecase.ErrLanguageMissing):
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Source or target language missing"})
	case errors.Is(err, usecase.ErrEmptyTranslation):
		h.logger.Warn("Translation engine returned empty output")
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Translation failed, please try again."})
	case err != nil:
		h.logger.Error("Translation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Error during translation: " + err.Error()})
	}

	return c.JSON(http.StatusOK, domain.TranslateResponse{TranslatedText: translated})
}

// Speak handles POST /speak, streaming audio chunks as they are synthesized
func (h *Handler) Speak(c echo.Context) error {
	var req domain.SpeakRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind speak request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid request format"})
	}

	audio, contentType, err := h.service.Speak(c.Request().Context(), req.Text)
	switch {
	case errors.Is(err, usecase.ErrNoSpeechText):
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "No text provided for speech synthesis"})
	case err != nil:
		h.logger.Error("Speech synthesis failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Error with speech synthesis: " + err.Error()})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.WriteHeader(http.StatusOK)

	total := 0
	for chunk := range audio {
		if _, err := res.Write(chunk); err != nil {
			h.logger.Warn("Client went away during audio stream", zap.Error(err))
			// Drain so the producer can finish.
			for range audio {
			}
			return nil
		}
		res.Flush()
		total += len(chunk)
	}

	h.logger.Info("Streamed synthesized audio", zap.Int("bytes", total), zap.String("contentType", contentType))
	return nil
}

// ListTranslations handles GET /api/v1/translations
func (h *Handler) ListTranslations(c echo.Context) error {
	limit := defaultListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := h.service.RecentTranslations(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list translations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to list translations"})
	}

	return c.JSON(http.StatusOK, TranslationListResponse{
		Translations: records,
		Count:        len(records),
	})
}
