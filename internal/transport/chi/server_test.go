package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chanmyae99/sopqa/internal/domain"
	healthuc "github.com/chanmyae99/sopqa/internal/usecase/health"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

type stubRetriever struct {
	ev    retrieval.Evidence
	err   error
	textK int
}

func (s *stubRetriever) Retrieve(_ context.Context, q string, textK, _ int) (retrieval.Evidence, error) {
	if q == "" {
		return retrieval.Evidence{}, fmt.Errorf("empty question: %w", domain.ErrBadQuery)
	}
	s.textK = textK
	return s.ev, s.err
}

type stubAnswerer struct {
	ans domain.Answer
	err error
}

func (s *stubAnswerer) Answer(_ context.Context, _ string, _, _ int) (domain.Answer, error) {
	return s.ans, s.err
}

type okPinger struct{ err error }

func (p *okPinger) Ping(_ context.Context) error { return p.err }

func newTestServer(t *testing.T, ret Retriever, ans Answerer, pingErr error) *httptest.Server {
	t.Helper()

	srv := NewServer(ret, ans, healthuc.New(&okPinger{err: pingErr}, nil), zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.StatusCode, body
}

func TestSearch(t *testing.T) {
	ret := &stubRetriever{ev: retrieval.Evidence{
		Texts: []domain.RetrievedRecord{
			{
				Modality:   domain.ModalityText,
				SourceName: "lifting.pdf",
				Position:   domain.PagePosition(7),
				Content:    "Attach tag lines.",
				Score:      0.91,
			},
		},
		Images: []domain.RetrievedRecord{
			{
				Modality:      domain.ModalityImage,
				SourceName:    "lifting.pdf",
				Position:      domain.PagePosition(2),
				Caption:       "exclusion zone",
				ImageBlobPath: "images/lifting.pdf/page_2/x.png",
				Score:         0.8,
			},
		},
	}}
	ts := newTestServer(t, ret, &stubAnswerer{}, nil)

	status, body := get(t, ts.URL+"/search?q=how+to+rig")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	if body["query"] != "how to rig" {
		t.Errorf("query = %v", body["query"])
	}

	texts := body["text_results"].([]any)
	if len(texts) != 1 {
		t.Fatalf("text_results = %d, want 1", len(texts))
	}
	first := texts[0].(map[string]any)
	if first["source_file"] != "lifting.pdf" || first["page_number"] != float64(7) {
		t.Errorf("text item = %v", first)
	}
	if first["content"] != "Attach tag lines." {
		t.Errorf("content = %v", first["content"])
	}

	images := body["image_results"].([]any)
	if len(images) != 1 {
		t.Fatalf("image_results = %d, want 1", len(images))
	}
	img := images[0].(map[string]any)
	if img["caption"] != "exclusion zone" || img["image_path"] != "images/lifting.pdf/page_2/x.png" {
		t.Errorf("image item = %v", img)
	}
}

func TestSearch_TopKParam(t *testing.T) {
	ret := &stubRetriever{}
	ts := newTestServer(t, ret, &stubAnswerer{}, nil)

	if status, _ := get(t, ts.URL+"/search?q=x&top_k=7"); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if ret.textK != 7 {
		t.Errorf("textK = %d, want 7", ret.textK)
	}

	status, body := get(t, ts.URL+"/search?q=x&top_k=zero")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["detail"] == "" {
		t.Error("error body missing detail")
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	ts := newTestServer(t, &stubRetriever{}, &stubAnswerer{}, nil)

	status, body := get(t, ts.URL+"/search")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["detail"] != "query parameter q is required" {
		t.Errorf("detail = %v", body["detail"])
	}
}

func TestSearch_InternalError(t *testing.T) {
	ret := &stubRetriever{err: errors.New("index exploded")}
	ts := newTestServer(t, ret, &stubAnswerer{}, nil)

	status, body := get(t, ts.URL+"/search?q=x")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["detail"] != "internal error" {
		t.Errorf("detail = %v, internals must not leak", body["detail"])
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	ret := &stubRetriever{err: fmt.Errorf("vectorize question: %w", domain.ErrEmbeddingProvider)}
	ts := newTestServer(t, ret, &stubAnswerer{}, nil)

	status, body := get(t, ts.URL+"/search?q=x")
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if body["detail"] != domain.ErrEmbeddingProvider.Error() {
		t.Errorf("detail = %v", body["detail"])
	}
}

func TestAsk(t *testing.T) {
	page := 7
	ans := &stubAnswerer{ans: domain.Answer{
		Question: "how to rig",
		Answer:   "Attach tag lines [T1].",
		Sources: []domain.SourceRef{
			{SourceID: "T1", SourceFile: "lifting.pdf", PageNumber: &page},
		},
	}}
	ts := newTestServer(t, &stubRetriever{}, ans, nil)

	status, body := get(t, ts.URL+"/ask?q=how+to+rig")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["answer"] != "Attach tag lines [T1]." {
		t.Errorf("answer = %v", body["answer"])
	}

	sources := body["sources"].([]any)
	if len(sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(sources))
	}
	src := sources[0].(map[string]any)
	if src["source_id"] != "T1" || src["page_number"] != float64(7) {
		t.Errorf("source = %v", src)
	}
	if _, ok := src["section"]; ok {
		t.Error("absent positional fields must be omitted")
	}
}

func TestAsk_CompleterError(t *testing.T) {
	ans := &stubAnswerer{err: fmt.Errorf("synthesize answer: %w", domain.ErrCompletionProvider)}
	ts := newTestServer(t, &stubRetriever{}, ans, nil)

	status, _ := get(t, ts.URL+"/ask?q=x")
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubRetriever{}, &stubAnswerer{}, nil)

	status, body := get(t, ts.URL+"/healthz")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestHealthz_Degraded(t *testing.T) {
	ts := newTestServer(t, &stubRetriever{}, &stubAnswerer{}, errors.New("conn refused"))

	status, body := get(t, ts.URL+"/healthz")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", status)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v", body["status"])
	}
}
