package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/bookmarks"
	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

var (
	errBookmarksDisabled = errors.New("bookmark database is disabled")
	errBadBookmarkID     = errors.New("bookmark id must be a positive integer")
	errTagName           = errors.New("tag name is required")
)

func bookmarkStatus(err error) int {
	switch {
	case errors.Is(err, bookmarks.ErrBookmarkNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookmarks.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, bookmarks.ErrEmptyURL):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// withBookmarks answers 503 when no bookmark database is configured.
func withBookmarks(d deps.Deps, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Bookmarks == nil {
			writeError(w, http.StatusServiceUnavailable, errBookmarksDisabled)
			return
		}
		h(w, r)
	}
}

// bookmarksChanged reloads the palette's bookmark rows after an edit.
func bookmarksChanged(d deps.Deps) {
	if d.Session != nil {
		d.Session.Refresh()
	}
}

func bookmarkID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errBadBookmarkID
	}
	return id, nil
}

// ListBookmarks searches with the launcher query syntax ("term #tag").
// Without q it lists everything, newest first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		q := domain.ParseQuery(r.URL.Query().Get("q"))
		found, err := d.Bookmarks.SearchBookmarks(r.Context(), q)
		if err != nil {
			d.Logger.Error("failed to search bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if found == nil {
			found = []domain.Bookmark{}
		}
		writeJSON(w, http.StatusOK, found)
	})
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		b, err := d.Bookmarks.Get(r.Context(), id)
		if err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	})
}

func AddBookmark(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		var in bookmarks.Input
		if err := decode(r, &in); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		id, err := d.Bookmarks.Add(r.Context(), in)
		if err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		b, err := d.Bookmarks.Get(r.Context(), id)
		if err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		d.Logger.Info("bookmark added", logger.Int("id", id))
		bookmarksChanged(d)
		writeJSON(w, http.StatusCreated, b)
	})
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var p bookmarks.Patch
		if err := decode(r, &p); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if err := d.Bookmarks.Update(r.Context(), id, p); err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		bookmarksChanged(d)
		b, err := d.Bookmarks.Get(r.Context(), id)
		if err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	})
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		id, err := bookmarkID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := d.Bookmarks.Delete(r.Context(), id); err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		d.Logger.Info("bookmark deleted", logger.Int("id", id))
		bookmarksChanged(d)
		w.WriteHeader(http.StatusNoContent)
	})
}

func ListTags(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Bookmarks.ListTags(r.Context())
		if err != nil {
			d.Logger.Error("failed to list tags", logger.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if tags == nil {
			tags = []domain.Tag{}
		}
		writeJSON(w, http.StatusOK, tags)
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

func RenameTag(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if req.Name == "" {
			badRequest(w, d.Logger, errTagName)
			return
		}
		if err := d.Bookmarks.RenameTag(r.Context(), chi.URLParam(r, "tag"), req.Name); err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		bookmarksChanged(d)
		w.WriteHeader(http.StatusNoContent)
	})
}

func DeleteTag(d deps.Deps) http.HandlerFunc {
	return withBookmarks(d, func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bookmarks.DeleteTag(r.Context(), chi.URLParam(r, "tag")); err != nil {
			writeError(w, bookmarkStatus(err), err)
			return
		}
		bookmarksChanged(d)
		w.WriteHeader(http.StatusNoContent)
	})
}
