package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aTrapDeer/utworld/internal/media"
	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/store"
)

const multipartMemory = 32 << 20

func formValue(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items, total, err := s.store.ListAssets(r.Context(), store.AssetQuery{
		ProjectID: r.URL.Query().Get("project_id"),
		FileType:  r.URL.Query().Get("file_type"),
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.AssetList{Items: items, Total: total})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request, files int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, files*media.DefaultMaxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return media.ErrTooLarge
		}
		return errDetail(http.StatusBadRequest, "Invalid multipart form")
	}
	return nil
}

// checkProject verifies an optional project_id.
func (s *Server) checkProject(r *http.Request, projectID *string) error {
	if projectID == nil {
		return nil
	}
	_, err := s.store.GetProject(r.Context(), *projectID)
	return err
}

func (s *Server) saveUpload(fh *multipart.FileHeader) (*media.Stored, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.media.Save(f, fh.Filename, fh.Header.Get("Content-Type"))
}

func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "file: cannot be blank.")
		return
	}
	if !media.IsAllowed(fh.Header.Get("Content-Type")) {
		respondDetail(w, http.StatusBadRequest, "File type not allowed. Allowed types: "+strings.Join(media.AllowedTypes(), ", "))
		return
	}
	projectID := formValue(r, "project_id")
	if err := s.checkProject(r, projectID); err != nil {
		s.respondError(w, r, err)
		return
	}

	stored, err := s.saveUpload(fh)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			s.respondError(w, r, err)
			return
		}
		s.logger.Error("saving upload", "filename", fh.Filename, "error", err)
		respondDetail(w, http.StatusInternalServerError, "Failed to upload file: "+err.Error())
		return
	}
	a := stored.Asset(projectID, formValue(r, "alt_text"), formValue(r, "caption"))
	if err := s.store.CreateAsset(r.Context(), a); err != nil {
		_ = s.media.Delete(stored.Key)
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// handleUploadMultiple stores up to MaxBatchFiles files. Files that fail to
// save are skipped.
func (s *Server) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r, media.MaxBatchFiles); err != nil {
		s.respondError(w, r, err)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondDetail(w, http.StatusUnprocessableEntity, "files: cannot be blank.")
		return
	}
	if len(files) > media.MaxBatchFiles {
		respondDetail(w, http.StatusBadRequest, "Maximum 10 files allowed per request")
		return
	}
	for _, fh := range files {
		if !media.IsAllowed(fh.Header.Get("Content-Type")) {
			respondDetail(w, http.StatusBadRequest, "File type not allowed for "+fh.Filename)
			return
		}
	}
	projectID := formValue(r, "project_id")
	if err := s.checkProject(r, projectID); err != nil {
		s.respondError(w, r, err)
		return
	}

	assets := []model.Asset{}
	for _, fh := range files {
		stored, err := s.saveUpload(fh)
		if err != nil {
			s.logger.Warn("skipping upload", "filename", fh.Filename, "error", err)
			continue
		}
		a := stored.Asset(projectID, nil, nil)
		if err := s.store.CreateAsset(r.Context(), a); err != nil {
			s.logger.Warn("skipping upload", "filename", fh.Filename, "error", err)
			_ = s.media.Delete(stored.Key)
			continue
		}
		assets = append(assets, *a)
	}
	respondJSON(w, http.StatusCreated, assets)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var in model.AssetUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	a, err := s.store.UpdateAsset(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.DeleteAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.media.Delete(a.StorageKey); err != nil {
		s.logger.Warn("removing stored file", "key", a.StorageKey, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
