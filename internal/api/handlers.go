package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/options"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc *dashboard.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type positionRequest struct {
	Code        string      `json:"codigo"`
	AvgPrice    priceString `json:"preco_medio"`
	TargetPrice priceString `json:"preco_teto"`
}

type optionRequest struct {
	Code        string      `json:"codigo"`
	Base        string      `json:"base"`
	PremiumPaid priceString `json:"preco_medio"`
	TargetPrice priceString `json:"preco_objetivo"`
}

// priceString accepts a JSON number or a locale formatted string
type priceString string

func (p *priceString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = priceString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = priceString(n.String())
	return nil
}

type decodeResponse struct {
	Code       string `json:"codigo"`
	Root       string `json:"raiz"`
	OptionType string `json:"tipo"`
	Month      int    `json:"mes"`
	Year       int    `json:"ano"`
	Expiry     string `json:"vencimento"`
	Strike     string `json:"strike"`
}

// GetDashboard handles GET /dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Cards(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

// GetAlertHistory handles GET /alerts?codigo=&limit=
func (h *Handler) GetAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.svc.AlertHistory(r.Context(), r.URL.Query().Get("codigo"), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// GetAllPositions handles GET /positions
func (h *Handler) GetAllPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.ListPositions(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}
	respondJSON(w, http.StatusOK, positions)
}

// AddPosition handles POST /positions
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.AddPosition(r.Context(), req.Code, string(req.AvgPrice), string(req.TargetPrice))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// UpdatePosition handles PUT /positions/{code}
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpdatePosition(r.Context(), code, string(req.AvgPrice), string(req.TargetPrice))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// RemovePosition handles DELETE /positions/{code}
func (h *Handler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemovePosition(r.Context(), mux.Vars(r)["code"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAllOptions handles GET /options
func (h *Handler) GetAllOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.ListOptions(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if opts == nil {
		opts = []models.OptionPosition{}
	}
	respondJSON(w, http.StatusOK, opts)
}

// AddOption handles POST /options
func (h *Handler) AddOption(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.svc.AddOption(r.Context(), req.Code, req.Base, string(req.PremiumPaid), string(req.TargetPrice))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// RemoveOption handles DELETE /options/{code}
func (h *Handler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveOption(r.Context(), mux.Vars(r)["code"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOptionsDashboard handles GET /options/dashboard
func (h *Handler) GetOptionsDashboard(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.OptionCards(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

// DecodeOption handles GET /options/decode/{code}
func (h *Handler) DecodeOption(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.DecodeOption(mux.Vars(r)["code"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, decodeResponse{
		Code:       c.Code,
		Root:       c.Root,
		OptionType: c.OptionType,
		Month:      int(c.Month),
		Year:       c.Year,
		Expiry:     c.Expiry.Format(models.DateLayout),
		Strike:     locale.Format(c.Strike),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidInput),
		errors.Is(err, locale.ErrInvalidNumber),
		errors.Is(err, options.ErrInvalidOptionCode):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPositionNotFound),
		errors.Is(err, models.ErrOptionNotFound),
		errors.Is(err, dashboard.ErrOptionsDisabled):
		return http.StatusNotFound
	case errors.Is(err, quotes.ErrNoRecentTrading):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
