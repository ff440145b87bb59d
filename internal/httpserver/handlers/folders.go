package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/sources/apps"
)

func folderStatus(err error) int {
	switch {
	case errors.Is(err, apps.ErrFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, apps.ErrSystemFolder):
		return http.StatusConflict
	case errors.Is(err, apps.ErrInvalidFolder):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// foldersChanged republishes the command list so folder rows follow.
func foldersChanged(r *http.Request, d deps.Deps) {
	if d.FoldersChanged != nil {
		d.FoldersChanged(r.Context())
	}
}

type foldersResponse struct {
	Folders []domain.FolderConfig `json:"folders"`
	System  []domain.FolderConfig `json:"system"`
}

// ListFolders returns the visible folders and every detected system one,
// so the folder manager can offer to show hidden ones again.
func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders, err := d.Folders.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if folders == nil {
			folders = []domain.FolderConfig{}
		}
		system := d.Folders.System()
		if system == nil {
			system = []domain.FolderConfig{}
		}
		writeJSON(w, http.StatusOK, foldersResponse{Folders: folders, System: system})
	}
}

type folderRequest struct {
	Name string      `json:"name"`
	Path string      `json:"path"`
	Icon domain.Icon `json:"icon"`
}

func AddFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		f, err := d.Folders.Add(r.Context(), req.Name, req.Path, req.Icon)
		if err != nil {
			writeError(w, folderStatus(err), err)
			return
		}
		foldersChanged(r, d)
		writeJSON(w, http.StatusCreated, f)
	}
}

func RemoveFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Folders.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, folderStatus(err), err)
			return
		}
		foldersChanged(r, d)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetFolderHidden hides or shows a system folder.
func SetFolderHidden(d deps.Deps, hidden bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Folders.SetHidden(r.Context(), chi.URLParam(r, "id"), hidden); err != nil {
			writeError(w, folderStatus(err), err)
			return
		}
		foldersChanged(r, d)
		w.WriteHeader(http.StatusNoContent)
	}
}
