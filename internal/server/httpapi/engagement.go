package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	state, err := h.engagement.ToggleLike(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"liked": state.Liked, "likes": state.Likes})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.engagement.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"comments": comments})
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	text, err := decodeText(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.engagement.AddComment(r.Context(), caller, chi.URLParam(r, "id"), text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{"comment": c})
}

func (h *Handler) editComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	text, err := decodeText(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.engagement.EditComment(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "commentID"), text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"comment": c})
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	err := h.engagement.DeleteComment(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "comment deleted"})
}

func (h *Handler) incrementDownload(w http.ResponseWriter, r *http.Request) {
	n, err := h.engagement.IncrementDownload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"downloadCount": n})
}
