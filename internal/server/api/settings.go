// Package api provides the HTTP API handlers for the kiosk operator surface.
package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/config"
	"github.com/ayusman/touchless/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SettingsStore persists configuration overrides.
type SettingsStore interface {
	All() (map[string]string, error)
	SetAll(values map[string]string) error
	Delete(key string) error
}

// SettingsHandler serves /api/settings. Overrides are validated against the
// base configuration and take effect on the next start.
type SettingsHandler struct {
	store  SettingsStore
	base   config.Config
	logger *zap.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(s SettingsStore, base config.Config, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: s, base: base, logger: logger.Named("settings")}
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/settings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.delete(w, r, path)
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
	Keys     []string          `json:"keys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *SettingsHandler) respond(w http.ResponseWriter, status int) {
	settings, err := h.store.All()
	if err != nil {
		h.logger.Error("list settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}

	keys := append([]string(nil), config.OverrideKeys...)
	sort.Strings(keys)
	writeJSON(w, status, settingsResponse{Settings: settings, Keys: keys})
}

// list handles GET /api/settings.
func (h *SettingsHandler) list(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK)
}

// update handles PUT /api/settings with a JSON object of key/value strings.
// Either every value is accepted or nothing is stored.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "no settings given")
		return
	}

	current, err := h.store.All()
	if err != nil {
		h.logger.Error("list settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	merged := make(map[string]string, len(current)+len(values))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}

	cfg := h.base
	if err := cfg.ApplyOverrides(merged); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SetAll(values); err != nil {
		h.logger.Error("store settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store settings")
		return
	}
	h.logger.Info("settings updated", zap.Int("count", len(values)))
	h.respond(w, http.StatusOK)
}

// delete handles DELETE /api/settings/{key}.
func (h *SettingsHandler) delete(w http.ResponseWriter, _ *http.Request, key string) {
	if !config.IsOverrideKey(key) {
		writeError(w, http.StatusBadRequest, "unknown setting")
		return
	}

	if err := h.store.Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		h.logger.Error("delete setting", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
