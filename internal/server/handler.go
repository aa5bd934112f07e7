package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/spamcheck/internal/cache"
	"github.com/crimson-sun/spamcheck/internal/model"
	"github.com/crimson-sun/spamcheck/internal/runner"
)

// maxBodyBytes caps the size of a POST /predict body.
const maxBodyBytes = 1 << 20

// Predictor is the part of the runner the HTTP layer needs.
type Predictor interface {
	Predict(text string) (model.Prediction, error)
	Fingerprint() string
}

// PredictRequest is the body of POST /predict. EmailContent is the field the
// web frontend sends; Text is accepted as an alias.
type PredictRequest struct {
	EmailContent string `json:"email_content"`
	Text         string `json:"text"`
}

type PredictResponse struct {
	Prediction int64 `json:"prediction"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Fingerprint string `json:"fingerprint"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PredictHandler struct {
	predictor Predictor
	cache     cache.Cache
}

// NewPredictHandler creates a handler. c may be nil to disable caching.
func NewPredictHandler(p Predictor, c cache.Cache) *PredictHandler {
	return &PredictHandler{predictor: p, cache: c}
}

func (h *PredictHandler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	text := req.EmailContent
	if text == "" {
		text = req.Text
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email_content is required"})
		return
	}

	ctx := c.Request.Context()
	fp := h.predictor.Fingerprint()
	if h.cache != nil {
		label, ok, err := h.cache.Get(ctx, fp, text)
		if err != nil {
			slog.Warn("cache lookup failed", "error", err, "request_id", c.GetString(requestIDKey))
		} else if ok {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, PredictResponse{Prediction: label})
			return
		}
	}

	pred, err := h.predictor.Predict(text)
	if err != nil {
		slog.Error("prediction failed", "error", err, "request_id", c.GetString(requestIDKey))
		if errors.Is(err, runner.ErrInference) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Inference error"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, fp, text, pred.Label); err != nil {
			slog.Warn("cache store failed", "error", err, "request_id", c.GetString(requestIDKey))
		}
		c.Header("X-Cache", "miss")
	}
	c.JSON(http.StatusOK, PredictResponse{Prediction: pred.Label})
}

func (h *PredictHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Fingerprint: h.predictor.Fingerprint()})
}
