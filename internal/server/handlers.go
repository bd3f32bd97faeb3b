package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jinlee/portfolio-server-go/internal/content"
	"github.com/jinlee/portfolio-server-go/internal/qna"
	apperrors "github.com/jinlee/portfolio-server-go/pkg/errors"
)

// ContentService is the read side of the content pipeline.
type ContentService interface {
	BuildIndex() []content.IndexEntry
	GetPost(ctx context.Context, slug string) (*content.CompiledPost, error)
}

// CompletionGateway forwards an assembled prompt to the completion provider.
type CompletionGateway interface {
	Complete(ctx context.Context, messages []qna.Message) (string, error)
}

// PersonaLoader loads the grounding profile. Called once per chat request.
type PersonaLoader func() (*qna.PersonaProfile, error)

type Handler struct {
	content      ContentService
	gateway      CompletionGateway
	loadPersona  PersonaLoader
	historyLimit int
	logger       *zap.Logger
}

func NewHandler(contentSvc ContentService, gateway CompletionGateway, loadPersona PersonaLoader, historyLimit int, logger *zap.Logger) *Handler {
	return &Handler{
		content:      contentSvc,
		gateway:      gateway,
		loadPersona:  loadPersona,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", h.handleListPosts)
	mux.HandleFunc("GET /api/posts/{slug}", h.handleGetPost)
	mux.HandleFunc("POST /api/qna", h.handleQnA)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return mux
}

type qnaRequest struct {
	Message string        `json:"message"`
	History []qna.Message `json:"history"`
}

type qnaResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	entries := h.content.BuildIndex()
	if entries == nil {
		entries = []content.IndexEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	post, err := h.content.GetPost(r.Context(), slug)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleQnA(w http.ResponseWriter, r *http.Request) {
	var req qnaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewInputError("request body must be valid JSON", nil).WithCause(err))
		return
	}
	if req.Message == "" {
		h.writeError(w, apperrors.NewInputError("message is required", nil))
		return
	}

	profile, err := h.loadPersona()
	if err != nil {
		h.logger.Error("Failed to load persona profile", zap.Error(err))
		h.writeError(w, apperrors.New("persona profile unavailable", apperrors.KindInternal, 500, nil).WithCause(err))
		return
	}

	history := qna.TruncateHistory(req.History, h.historyLimit)
	messages := qna.BuildPrompt(profile, history, req.Message)

	answer, err := h.gateway.Complete(r.Context(), messages)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, qnaResponse{Answer: answer})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps an error to the wire format. Clients get the kind and a
// generic human-readable detail; causes and upstream bodies stay in logs.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.New("internal error", apperrors.KindInternal, 500, nil).WithCause(err)
	}

	if appErr.StatusCode >= 500 {
		h.logger.Error("Request failed",
			zap.String("kind", appErr.Kind),
			zap.Error(appErr),
		)
	}

	h.writeJSON(w, appErr.StatusCode, errorResponse{
		Error:  appErr.Kind,
		Detail: appErr.Message,
	})
}
