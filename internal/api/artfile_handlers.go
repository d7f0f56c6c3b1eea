package api

import (
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/insert-planner/internal/cache"
)

// maxArtFileBytes caps uploads at 100 MB; press-ready TIFFs run large.
const maxArtFileBytes = 100 << 20

func (s *Server) handleUploadArt(w http.ResponseWriter, r *http.Request) {
	if s.art == nil {
		respondError(w, http.StatusServiceUnavailable, "art storage not configured")
		return
	}
	id := chi.URLParam(r, "id")

	if _, err := s.campaigns.Get(r.Context(), orgID(r), id); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxArtFileBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxArtFileBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	art, err := s.art.Upload(r.Context(), id, header.Filename, data)
	if err != nil {
		log.Printf("[api] art upload for %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "art storage unavailable")
		return
	}

	if s.store != nil {
		_ = s.store.Invalidate(r.Context(), id)
	}
	respondJSON(w, http.StatusCreated, art)
}

func (s *Server) handleListArt(w http.ResponseWriter, r *http.Request) {
	if s.art == nil {
		respondError(w, http.StatusServiceUnavailable, "art storage not configured")
		return
	}
	id := chi.URLParam(r, "id")

	files, err := s.art.List(r.Context(), id)
	if err != nil {
		log.Printf("[api] art list for %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "art storage unavailable")
		return
	}
	if s.store != nil {
		_ = s.store.Set(r.Context(), id, cache.SectionArtFiles, files)
	}
	respondJSON(w, http.StatusOK, files)
}

func (s *Server) handleDeleteArt(w http.ResponseWriter, r *http.Request) {
	if s.art == nil {
		respondError(w, http.StatusServiceUnavailable, "art storage not configured")
		return
	}
	id := chi.URLParam(r, "id")

	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid key")
		return
	}
	if err := s.art.Delete(r.Context(), id, key); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.store != nil {
		_ = s.store.Invalidate(r.Context(), id)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
