package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/omniprompt/gateway/internal/database"
	"github.com/omniprompt/gateway/internal/dispatch"
	"github.com/omniprompt/gateway/internal/providers"
)

// Handlers carries the constructed dependencies for every endpoint.
type Handlers struct {
	db         *database.DB
	registry   *providers.Registry
	dispatcher *dispatch.Dispatcher
	log        *zap.SugaredLogger
}

func NewHandlers(db *database.DB, registry *providers.Registry, dispatcher *dispatch.Dispatcher, log *zap.SugaredLogger) *Handlers {
	return &Handlers{db: db, registry: registry, dispatcher: dispatcher, log: log}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, key, msg string) {
	writeJSON(w, code, map[string]string{"error": key, "message": msg})
}

// Health probes every registered adapter sequentially under one deadline and
// reports 200 when all are healthy, 503 otherwise.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	statuses := make(map[string]bool, len(h.registry.All()))
	allHealthy := true
	for name, adapter := range h.registry.All() {
		ok := adapter.CheckHealth(ctx)
		statuses[name] = ok
		if !ok {
			allHealthy = false
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !allHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"providers": statuses,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats serves the dashboard rollup.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats()
	if err != nil {
		h.log.Errorw("stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ProviderStatus is one row of the provider status listing.
type ProviderStatus struct {
	Provider         string   `json:"provider"`
	Status           string   `json:"status"`
	Models           []string `json:"models"`
	LastCheck        string   `json:"lastCheck"`
	FreeTierLimit    int      `json:"freeTierLimit"`
	PremiumTierLimit int      `json:"premiumTierLimit"`
}

// ProviderStatuses merges the provider configuration rows with each
// registered adapter's model list.
func (h *Handlers) ProviderStatuses(w http.ResponseWriter, r *http.Request) {
	configs, err := h.db.ProviderConfigs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "provider_status_failed", err.Error())
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	statuses := make([]ProviderStatus, 0, len(configs))
	for _, cfg := range configs {
		adapter, ok := h.registry.Get(cfg.Provider)
		if !ok {
			continue
		}
		status := "online"
		if !cfg.IsEnabled {
			status = "offline"
		}
		statuses = append(statuses, ProviderStatus{
			Provider:         cfg.Provider,
			Status:           status,
			Models:           adapter.Models(),
			LastCheck:        now,
			FreeTierLimit:    cfg.FreeTierLimit,
			PremiumTierLimit: cfg.PremiumTierLimit,
		})
	}
	writeJSON(w, http.StatusOK, statuses)
}

const maxRecentLimit = 100

// RecentRequests serves the latest request log entries, newest first.
func (h *Handlers) RecentRequests(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	entries, err := h.db.RecentRequests(limit, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recent_requests_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ProcessAI is the main dispatch endpoint.
func (h *Handlers) ProcessAI(w http.ResponseWriter, r *http.Request) {
	var req providers.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Provider == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "provider is required")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt is required")
		return
	}

	resp, err := h.dispatcher.Dispatch(r.Context(), &req, r.Header.Get(userIDHeader))
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AnalyzeImage dispatches a vision request to a vision-capable provider.
func (h *Handlers) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider    string `json:"provider"`
		Base64Image string `json:"base64Image"`
		Prompt      string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if body.Provider == "" || body.Base64Image == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "provider and base64Image are required")
		return
	}

	resp, err := h.dispatcher.AnalyzeImage(r.Context(), body.Provider, body.Base64Image, body.Prompt, r.Header.Get(userIDHeader))
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Voices lists the speech provider's voice catalog.
func (h *Handlers) Voices(w http.ResponseWriter, r *http.Request) {
	adapter, ok := h.registry.Get(providers.ElevenLabs)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "voices_unavailable", "Speech provider is not configured")
		return
	}
	catalog, ok := adapter.(providers.VoiceCatalog)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "voices_unavailable", "Speech provider has no voice catalog")
		return
	}

	voices, err := catalog.Voices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "voices_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

// UserStats serves the per-user usage rollup. Requires an identified user.
func (h *Handlers) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.UserStatsFor(userIDFrom(r.Context()))
	if err != nil {
		if database.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "user_stats_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpgradeUser switches the identified user to the premium plan.
func (h *Handlers) UpgradeUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.UpgradeUser(userIDFrom(r.Context()))
	if err != nil {
		if database.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "upgrade_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) writeDispatchError(w http.ResponseWriter, err error) {
	var provErr *providers.ProviderError
	switch {
	case errors.Is(err, dispatch.ErrUnsupportedProvider):
		writeError(w, http.StatusBadRequest, "unsupported_provider", "Unsupported provider")
	case errors.Is(err, dispatch.ErrNotVisionCapable):
		writeError(w, http.StatusBadRequest, "not_vision_capable", "Provider does not support image analysis")
	case errors.Is(err, dispatch.ErrRateLimitExceeded):
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
			"You have exceeded your rate limit. Please upgrade to premium for higher limits.")
	case errors.As(err, &provErr):
		writeError(w, http.StatusInternalServerError, "ai_processing_failed", provErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "ai_processing_failed", err.Error())
	}
}
