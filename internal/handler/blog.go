package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jcrawley/miniblog/internal/apperror"
	"github.com/jcrawley/miniblog/internal/service"
)

// BlogHandler exposes blog posts and their embedded comments over HTTP.
type BlogHandler struct {
	service *service.BlogService
	logger  *slog.Logger
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(service *service.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{service: service, logger: logger}
}

type createBlogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	URL     string `json:"url"`
}

type addCommentRequest struct {
	UserID  string `json:"userID"`
	Content string `json:"content"`
}

// HandleList returns all blog posts.
//
// HTTP: GET /blogs
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

// HandleGetByID returns a single blog post.
//
// HTTP: GET /blogs/{id}
func (h *BlogHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	blog, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

// HandleCreate creates a new blog post.
//
// HTTP: POST /blogs
// BODY: {"title": "Hi", "content": "World", "author": "<user id>"}
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid blog JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	blog, err := h.service.Create(r.Context(), req.Title, req.Content, req.Author, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, blog)
}

// HandleLike increments a post's like counter.
//
// HTTP: PUT /blogs/like/{id}
func (h *BlogHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	blog, err := h.service.Like(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

// HandleAddComment appends a comment to a post.
//
// HTTP: POST /blogs/{id}/comment
// BODY: {"userID": "<user id>", "content": "nice"}
func (h *BlogHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	blog, err := h.service.AddComment(r.Context(), r.PathValue("id"), req.UserID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// HandleLikeComment increments a comment's like counter, addressing the
// comment by its position in the post's sequence.
//
// HTTP: PUT /blogs/{id}/comment/like/{commentIndex}
//
// A non-numeric index is treated the same as an out-of-range one: 404,
// post untouched. Malformed addresses never crash a request.
func (h *BlogHandler) HandleLikeComment(w http.ResponseWriter, r *http.Request) {
	blogID := r.PathValue("id")

	index, err := strconv.Atoi(r.PathValue("commentIndex"))
	if err != nil {
		writeError(w, apperror.NotFound("comment", blogID+"["+r.PathValue("commentIndex")+"]"))
		return
	}

	blog, err := h.service.LikeComment(r.Context(), blogID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

// HandleDelete removes a post and returns its prior state.
//
// HTTP: DELETE /blogs/{id}
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	blog, err := h.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}
