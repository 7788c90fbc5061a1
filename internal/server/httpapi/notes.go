package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	c, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, common.ErrorUnauthorized)
	}
	return c, ok
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	notes, err := h.notes.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"notes": notes, "count": len(notes)})
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"note": note})
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	form, err := decodeNoteForm(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	note, err := h.notes.Create(r.Context(), caller, services.CreateNoteInput{
		Metadata: form.Metadata,
		File:     form.File,
		Link:     form.Link,
		Uploader: form.Uploader,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{"note": note})
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	form, err := decodeNoteForm(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	note, err := h.notes.Update(r.Context(), caller, chi.URLParam(r, "id"), services.UpdateNoteInput{
		Metadata: form.Metadata,
		File:     form.File,
		Link:     form.Link,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"note": note})
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	res, err := h.notes.Delete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	body := envelope{"message": "note deleted"}
	if res.BlobError != nil {
		body["blobError"] = res.BlobError.Error()
	}
	writeOK(w, http.StatusOK, body)
}
