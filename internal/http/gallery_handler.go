package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/blastmusic247/blast-gear-full/internal/gallery"
	"github.com/go-chi/chi/v5"
)

type GalleryHandler struct {
	images  gallery.Repository
	timeout time.Duration
}

func NewGalleryHandler(images gallery.Repository, timeout time.Duration) *GalleryHandler {
	return &GalleryHandler{
		images:  images,
		timeout: timeout,
	}
}

type GalleryImageRequestDTO struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type ReorderRequestDTO struct {
	ImageIDs []string `json:"imageIds"`
}

func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	images, err := h.images.List(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list gallery images")
		return
	}

	respondJSON(w, http.StatusOK, images)
}

func (h *GalleryHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req GalleryImageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}

	image := &domain.GalleryImage{URL: req.URL, Alt: req.Alt}
	if err := h.images.Create(ctx, image); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add gallery image")
		return
	}

	respondJSON(w, http.StatusCreated, image)
}

func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "imageId")
	if err := h.images.Delete(ctx, id); err != nil {
		if errors.Is(err, gallery.ErrImageNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Gallery image not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete gallery image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Gallery image deleted",
	})
}

func (h *GalleryHandler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReorderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.ImageIDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "imageIds is required")
		return
	}

	if err := h.images.Reorder(ctx, req.ImageIDs); err != nil {
		if errors.Is(err, gallery.ErrImageNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Gallery image not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reorder gallery images")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Gallery order updated",
	})
}
