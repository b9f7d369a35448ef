package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/store"
)

const (
	defaultContentLimit = 20
	maxContentLimit     = 200
)

// ContentLister reads the log of generated content.
type ContentLister interface {
	List(ctx context.Context, kind string, limit int) ([]*store.ContentEntry, error)
}

// ContentHandler serves GET /api/content?kind=quiz|maze&limit=N, newest
// entries first.
type ContentHandler struct {
	store  ContentLister
	logger *zap.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(s ContentLister, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{store: s, logger: logger.Named("content")}
}

type contentEntry struct {
	ID         string              `json:"id"`
	Kind       string              `json:"kind"`
	PromptHash string              `json:"prompt_hash"`
	Model      string              `json:"model"`
	Data       jsoniter.RawMessage `json:"data"`
	CreatedAt  time.Time           `json:"created_at"`
}

type contentResponse struct {
	Entries []contentEntry `json:"entries"`
}

func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", "quiz", "maze":
	default:
		writeError(w, http.StatusBadRequest, "kind must be quiz or maze")
		return
	}

	limit := defaultContentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxContentLimit)
	}

	entries, err := h.store.List(r.Context(), kind, limit)
	if err != nil {
		h.logger.Error("list content", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list content")
		return
	}

	resp := contentResponse{Entries: make([]contentEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, contentEntry{
			ID:         e.ID,
			Kind:       e.Kind,
			PromptHash: e.PromptHash,
			Model:      e.Model,
			Data:       jsoniter.RawMessage(e.Data),
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
