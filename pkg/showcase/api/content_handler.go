package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

const maxThumbnailBytes = 5 << 20 // 5 MiB upload limit

// SubmitContentRequest is the request body for submitting a showcase item
type SubmitContentRequest struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Author       string `json:"author"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// UpdateContentRequest is the request body for editing a showcase item
type UpdateContentRequest struct {
	Title        string `json:"title,omitempty"`
	Category     string `json:"category,omitempty"`
	Author       string `json:"author,omitempty"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// UpdateStatusRequest is the request body for changing moderation status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RejectRequest optionally carries a reason for rejection
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ContentHandler handles HTTP requests for showcase items
type ContentHandler struct {
	service showcase.Service
	blobs   showcase.BlobStore
}

// NewContentHandler creates a new content handler
func NewContentHandler(service showcase.Service, blobs showcase.BlobStore) *ContentHandler {
	return &ContentHandler{
		service: service,
		blobs:   blobs,
	}
}

// SubmitContent accepts a new showcase submission. The body can be JSON,
// or multipart/form-data with an optional "thumbnail" file part.
func (h *ContentHandler) SubmitContent(w http.ResponseWriter, r *http.Request) {
	var req showcase.SubmitContentRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxThumbnailBytes); err != nil {
			slog.Error("Invalid multipart form", "error", err)
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		req.Title = r.FormValue("title")
		req.Category = r.FormValue("category")
		req.Author = r.FormValue("author")
		req.URL = r.FormValue("url")

		file, header, err := r.FormFile("thumbnail")
		switch {
		case err == nil:
			thumbnailURL, uploadErr := h.storeThumbnail(r, file, header)
			file.Close()
			if uploadErr != nil {
				slog.Error("Failed to store thumbnail", "error", uploadErr)
				http.Error(w, "Failed to store thumbnail", http.StatusInternalServerError)
				return
			}
			req.ThumbnailURL = thumbnailURL
		case errors.Is(err, http.ErrMissingFile):
			// No thumbnail uploaded; the service fills in the placeholder.
		default:
			slog.Error("Invalid thumbnail upload", "error", err)
			http.Error(w, "Invalid thumbnail upload", http.StatusBadRequest)
			return
		}
	} else {
		var body SubmitContentRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req = showcase.SubmitContentRequest{
			Title:        body.Title,
			Category:     body.Category,
			Author:       body.Author,
			URL:          body.URL,
			ThumbnailURL: body.ThumbnailURL,
		}
	}

	item, err := h.service.SubmitContent(r.Context(), req)
	if err != nil {
		var verr *showcase.ValidationError
		if errors.As(err, &verr) {
			slog.Warn("Invalid submission", "field", verr.Field, "reason", verr.Reason)
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to submit content", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Content submitted", "item_id", item.ID.String(), "title", item.Title)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// storeThumbnail uploads a thumbnail to the blob store and returns the
// public URL path it will be served from.
func (h *ContentHandler) storeThumbnail(r *http.Request, file multipart.File, header *multipart.FileHeader) (string, error) {
	if h.blobs == nil {
		return "", errors.New("thumbnail storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := uuid.New().String() + ext
	if err := h.blobs.Upload(r.Context(), key, file); err != nil {
		return "", err
	}
	return "/uploads/" + key, nil
}

// ListApproved lists approved items, newest first
func (h *ContentHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, showcase.StatusApproved)
}

// ListPending lists items awaiting moderation
func (h *ContentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, showcase.StatusPending)
}

// ListRejected lists rejected items
func (h *ContentHandler) ListRejected(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, showcase.StatusRejected)
}

func (h *ContentHandler) listByStatus(w http.ResponseWriter, r *http.Request, status showcase.SubmissionStatus) {
	items, err := h.service.ListByStatus(r.Context(), &status)
	if err != nil {
		slog.Error("Failed to list content", "status", status, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*showcase.ContentItem{}
	}
	render.JSON(w, r, items)
}

// ListAll lists every item regardless of status
func (h *ContentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByStatus(r.Context(), nil)
	if err != nil {
		slog.Error("Failed to list content", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*showcase.ContentItem{}
	}
	render.JSON(w, r, items)
}

// UpdateContent edits the submitted fields of an item
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var body UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), showcase.UpdateItemRequest{
		ID:           id,
		Title:        body.Title,
		Category:     body.Category,
		Author:       body.Author,
		URL:          body.URL,
		ThumbnailURL: body.ThumbnailURL,
	})
	if err != nil {
		h.renderItemError(w, r, id, "update", err)
		return
	}

	slog.Info("Content updated", "item_id", id.String())
	render.JSON(w, r, item)
}

// UpdateStatus sets the moderation status of an item
func (h *ContentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var body UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.UpdateStatus(r.Context(), id, showcase.SubmissionStatus(body.Status))
	if err != nil {
		h.renderItemError(w, r, id, "update status", err)
		return
	}

	slog.Info("Content status updated", "item_id", id.String(), "status", item.Status)
	render.JSON(w, r, item)
}

// ApproveContent marks an item as approved
func (h *ContentHandler) ApproveContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Approve(r.Context(), id)
	if err != nil {
		h.renderItemError(w, r, id, "approve", err)
		return
	}

	slog.Info("Content approved", "item_id", id.String())
	render.JSON(w, r, item)
}

// RejectContent marks an item as rejected
func (h *ContentHandler) RejectContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var body RejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	item, err := h.service.Reject(r.Context(), id, body.Reason)
	if err != nil {
		h.renderItemError(w, r, id, "reject", err)
		return
	}

	slog.Info("Content rejected", "item_id", id.String())
	render.JSON(w, r, item)
}

// DeleteContent removes an item permanently
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.renderItemError(w, r, id, "delete", err)
		return
	}

	slog.Info("Content deleted", "item_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ServeUpload streams a stored thumbnail back to the client.
// Route: GET /uploads/{key}
func (h *ContentHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	// Reject traversal attempts before touching storage.
	if key == "" || key != path.Base(key) {
		http.Error(w, "Invalid upload key", http.StatusBadRequest)
		return
	}
	if h.blobs == nil {
		http.Error(w, "Uploads are not configured", http.StatusNotFound)
		return
	}

	meta, err := h.blobs.GetObjectMeta(r.Context(), key)
	if err != nil {
		slog.Warn("Upload not found", "key", key)
		http.Error(w, "Upload not found", http.StatusNotFound)
		return
	}

	body, err := h.blobs.Download(r.Context(), key)
	if err != nil {
		slog.Error("Failed to read upload", "key", key, "error", err)
		http.Error(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Failed to stream upload", "key", key, "error", err)
	}
}

func (h *ContentHandler) renderItemError(w http.ResponseWriter, r *http.Request, id uuid.UUID, op string, err error) {
	switch {
	case errors.Is(err, showcase.ErrItemNotFound):
		slog.Warn("Content not found", "item_id", id.String(), "op", op)
		http.Error(w, "Content not found", http.StatusNotFound)
	case errors.Is(err, showcase.ErrInvalidStatus):
		slog.Warn("Invalid status", "item_id", id.String(), "op", op)
		http.Error(w, "Invalid status", http.StatusBadRequest)
	default:
		slog.Error("Content operation failed", "item_id", id.String(), "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseItemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid content ID", "content_id", idStr, "error", err)
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
