package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/store"
)

func seedContent(t *testing.T, repo *store.ContentRepository) {
	t.Helper()
	ctx := context.Background()
	seed := []struct{ id, kind, data string }{
		{"q-1", "quiz", `[{"text":"2+2?","options":["3","4","5","6"],"correct":"B"}]`},
		{"m-1", "maze", `["#####","#S E#","#####"]`},
		{"q-2", "quiz", `[]`},
	}
	for _, s := range seed {
		if err := repo.RecordContent(ctx, s.id, s.kind, "00000000000000aa", "gemini-2.5-flash", []byte(s.data)); err != nil {
			t.Fatalf("failed to seed %s: %v", s.id, err)
		}
	}
}

func TestContentHandler_List(t *testing.T) {
	repo := newTestStore(t).GeneratedContent()
	seedContent(t, repo)
	handler := NewContentHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/content?kind=maze", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Entries []struct {
			ID   string   `json:"id"`
			Kind string   `json:"kind"`
			Data []string `json:"data"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].ID != "m-1" {
		t.Fatalf("entries = %+v, want only m-1", resp.Entries)
	}
	if len(resp.Entries[0].Data) != 3 || resp.Entries[0].Data[1] != "#S E#" {
		t.Errorf("data = %v, want the recorded maze rows", resp.Entries[0].Data)
	}
}

func TestContentHandler_Limit(t *testing.T) {
	repo := newTestStore(t).GeneratedContent()
	seedContent(t, repo)
	handler := NewContentHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/content?limit=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp contentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(resp.Entries))
	}
}

func TestContentHandler_Empty(t *testing.T) {
	handler := NewContentHandler(newTestStore(t).GeneratedContent(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"entries":[]`) {
		t.Errorf("body = %q, want an empty entries array", got)
	}
}

func TestContentHandler_BadRequest(t *testing.T) {
	handler := NewContentHandler(newTestStore(t).GeneratedContent(), zap.NewNop())

	for _, url := range []string{"/api/content?kind=poem", "/api/content?limit=0", "/api/content?limit=x"} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", url, rec.Code, http.StatusBadRequest)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/content", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

type failingLister struct{}

func (failingLister) List(context.Context, string, int) ([]*store.ContentEntry, error) {
	return nil, errors.New("disk I/O error")
}

func TestContentHandler_StoreError(t *testing.T) {
	handler := NewContentHandler(failingLister{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
