package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jinlee/portfolio-server-go/internal/content"
	"github.com/jinlee/portfolio-server-go/internal/qna"
	apperrors "github.com/jinlee/portfolio-server-go/pkg/errors"
)

type fakeContent struct {
	entries []content.IndexEntry
	post    *content.CompiledPost
	postErr error
}

func (f *fakeContent) BuildIndex() []content.IndexEntry {
	return f.entries
}

func (f *fakeContent) GetPost(_ context.Context, slug string) (*content.CompiledPost, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	return f.post, nil
}

type fakeGateway struct {
	answer   string
	err      error
	calls    int
	messages []qna.Message
}

func (f *fakeGateway) Complete(_ context.Context, messages []qna.Message) (string, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func staticPersona() (*qna.PersonaProfile, error) {
	return &qna.PersonaProfile{
		Metadata: []qna.MetadataField{{Key: "name", Value: `"Jin Lee"`}},
		Notes:    "notes",
	}, nil
}

func newTestHandler(contentSvc ContentService, gateway CompletionGateway) *Handler {
	return NewHandler(contentSvc, gateway, staticPersona, 6, zap.NewNop())
}

func doRequest(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestListPostsEmptyDirectoryIsEmptyArray(t *testing.T) {
	h := newTestHandler(&fakeContent{}, &fakeGateway{})

	rec := doRequest(h, http.MethodGet, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %s", got)
	}
}

func TestListPostsReturnsIndex(t *testing.T) {
	h := newTestHandler(&fakeContent{
		entries: []content.IndexEntry{
			{Slug: "hello", TitleEN: "Hello", TitleKO: "안녕하세요", Tags: []string{"go"}},
		},
	}, &fakeGateway{})

	rec := doRequest(h, http.MethodGet, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []content.IndexEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(entries) != 1 || entries[0].Slug != "hello" || entries[0].TitleKO != "안녕하세요" {
		t.Errorf("unexpected index: %+v", entries)
	}
}

func TestGetPostNotFound(t *testing.T) {
	h := newTestHandler(&fakeContent{
		postErr: apperrors.NewNotFoundError("post not found", nil),
	}, &fakeGateway{})

	rec := doRequest(h, http.MethodGet, "/api/posts/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != apperrors.KindNotFound {
		t.Errorf("expected not_found kind, got %q", resp.Error)
	}
}

func TestGetPostReturnsCompiledDocument(t *testing.T) {
	h := newTestHandler(&fakeContent{
		post: &content.CompiledPost{
			IndexEntry: content.IndexEntry{Slug: "hello"},
			ContentEN:  "<h1>Hello</h1>",
			ContentKO:  "<h1>안녕</h1>",
		},
	}, &fakeGateway{})

	rec := doRequest(h, http.MethodGet, "/api/posts/hello", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var post content.CompiledPost
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if post.ContentEN == "" || post.ContentKO == "" {
		t.Errorf("expected both compiled bodies, got %+v", post)
	}
}

func TestQnARejectsMissingMessage(t *testing.T) {
	gateway := &fakeGateway{}
	h := newTestHandler(&fakeContent{}, gateway)

	rec := doRequest(h, http.MethodPost, "/api/qna", `{"history":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != apperrors.KindInvalidRequest {
		t.Errorf("expected invalid_request kind, got %q", resp.Error)
	}
	if gateway.calls != 0 {
		t.Errorf("no upstream call may happen on input errors, got %d", gateway.calls)
	}
}

func TestQnARejectsMalformedBody(t *testing.T) {
	gateway := &fakeGateway{}
	h := newTestHandler(&fakeContent{}, gateway)

	rec := doRequest(h, http.MethodPost, "/api/qna", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if gateway.calls != 0 {
		t.Errorf("no upstream call may happen on input errors, got %d", gateway.calls)
	}
}

func TestQnAReturnsAnswer(t *testing.T) {
	gateway := &fakeGateway{answer: "Jin is a software engineer."}
	h := newTestHandler(&fakeContent{}, gateway)

	rec := doRequest(h, http.MethodPost, "/api/qna", `{"message":"who is Jin?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp qnaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "Jin is a software engineer." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}

	if len(gateway.messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(gateway.messages))
	}
	if gateway.messages[0].Role != qna.RoleSystem {
		t.Errorf("expected system message first, got %q", gateway.messages[0].Role)
	}
	if gateway.messages[1].Content != "who is Jin?" {
		t.Errorf("expected user message last, got %+v", gateway.messages[1])
	}
}

func TestQnATruncatesHistory(t *testing.T) {
	gateway := &fakeGateway{answer: "ok"}
	h := newTestHandler(&fakeContent{}, gateway)

	history := make([]qna.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, qna.Message{Role: qna.RoleUser, Content: "turn"})
	}
	body, _ := json.Marshal(map[string]any{"message": "latest", "history": history})

	rec := doRequest(h, http.MethodPost, "/api/qna", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// system + last 6 turns + new message
	if len(gateway.messages) != 8 {
		t.Errorf("expected 8 messages after truncation, got %d", len(gateway.messages))
	}
}

func TestQnAConfigurationFailure(t *testing.T) {
	gateway := &fakeGateway{err: apperrors.NewConfigurationError("OPENAI_API_KEY is not configured")}
	h := newTestHandler(&fakeContent{}, gateway)

	rec := doRequest(h, http.MethodPost, "/api/qna", `{"message":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != apperrors.KindNotConfigured {
		t.Errorf("expected not_configured kind, got %q", resp.Error)
	}
}

func TestQnAUpstreamFailure(t *testing.T) {
	gateway := &fakeGateway{err: apperrors.NewUpstreamError("completion request failed", nil)}
	h := newTestHandler(&fakeContent{}, gateway)

	rec := doRequest(h, http.MethodPost, "/api/qna", `{"message":"hi"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	resp := decodeError(t, rec)
	if resp.Error != apperrors.KindUpstream {
		t.Errorf("expected upstream_error kind, got %q", resp.Error)
	}
	if resp.Detail != "completion request failed" {
		t.Errorf("client detail must stay generic, got %q", resp.Detail)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&fakeContent{}, &fakeGateway{})

	rec := doRequest(h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
