package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/router"
	"github.com/hyperjump/kotae/internal/store"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, gen llm.Generator) *Server {
	t.Helper()
	dir := t.TempDir()
	kdir := filepath.Join(dir, "knowledge")
	if err := os.MkdirAll(kdir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(kdir, "faq.md"), []byte("some knowledge"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.KnowledgeDir = kdir
	cfg.Storage.ImagesDir = filepath.Join(dir, "images")
	cfg.Storage.TextIndexPath = filepath.Join(dir, "text_index.json")
	cfg.Storage.ImageIndexPath = filepath.Join(dir, "image_index.json")

	emb := llm.NewMockEmbedder(8)
	img := llm.NewMockImagePipeline(8)
	ts := store.NewTextStore(cfg.Storage.TextIndexPath)
	is := store.NewImageStore(cfg.Storage.ImageIndexPath)
	p := indexer.NewPipeline(emb, img, img, ts, is,
		cfg.Storage.KnowledgeDir, cfg.Storage.ImagesDir, cfg.OpenAI.FallbackCaption)
	r := router.NewRouter(emb, cfg.Retrieval.Greetings, cfg.Retrieval.TopK, cfg.Retrieval.SimThreshold)
	e := engine.NewEngine(r, gen, emb, p, ts, is, cfg.OpenAI.UnavailableReply)
	if err := e.EnsureTextIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	return NewServer(e, cfg, zap.NewNop())
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleQuery(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{Reply: "the answer"})
	h := srv.Routes()

	w := postJSON(t, h, "/api/v1/query", queryRequest{Query: "oi"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["reply"] != "the answer" {
		t.Errorf("reply=%q", out["reply"])
	}
	if out["route"] != "greeting" {
		t.Errorf("route=%q, want greeting", out["route"])
	}
}

func TestHandleQuery_Empty(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	w := postJSON(t, srv.Routes(), "/api/v1/query", queryRequest{Query: "   "})
	if w.Code != http.StatusNoContent {
		t.Errorf("empty query status=%d, want 204", w.Code)
	}
}

func TestHandleQuery_BadBody(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status=%d, want 400", w.Code)
	}
}

func TestHandleImageReceivedAndSearch(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", bytes.NewReader([]byte("image bytes")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("ingest status=%d body=%s", w.Code, w.Body.String())
	}
	var receipt struct {
		Caption    string `json:"caption"`
		StoredPath string `json:"stored_path"`
	}
	if err := json.NewDecoder(w.Body).Decode(&receipt); err != nil {
		t.Fatal(err)
	}
	if receipt.StoredPath == "" {
		t.Fatal("receipt missing stored path")
	}

	w = postJSON(t, h, "/api/v1/images/search", queryRequest{Query: "find a photo of something"})
	if w.Code != http.StatusOK {
		t.Fatalf("search status=%d body=%s", w.Code, w.Body.String())
	}
	var match struct {
		StoredPath string `json:"stored_path"`
		Caption    string `json:"caption"`
	}
	if err := json.NewDecoder(w.Body).Decode(&match); err != nil {
		t.Fatal(err)
	}
	if match.StoredPath != receipt.StoredPath {
		t.Errorf("match path=%s, want %s", match.StoredPath, receipt.StoredPath)
	}
}

func TestHandleImageSearch_NoMatch(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	w := postJSON(t, srv.Routes(), "/api/v1/images/search", queryRequest{Query: "anything"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status=%d, want 404", w.Code)
	}
}

func TestHandleImageReceived_EmptyBody(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status=%d, want 400", w.Code)
	}
}

func TestHandleReindexAndStatus(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reindex", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reindex status=%d", w.Code)
	}
	var re map[string]int
	if err := json.NewDecoder(w.Body).Decode(&re); err != nil {
		t.Fatal(err)
	}
	if re["chunks"] != 1 {
		t.Errorf("chunks=%d, want 1", re["chunks"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status status=%d", w.Code)
	}
	var st map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st["chunks"].(float64) != 1 {
		t.Errorf("status chunks=%v, want 1", st["chunks"])
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &llm.MockGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health status=%d", w.Code)
	}
}
