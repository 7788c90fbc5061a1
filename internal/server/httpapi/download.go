package httpapi

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/go-chi/chi/v5"
)

// downloadFile relays the note's file to the client without buffering it.
// Once headers are out, a failed copy can no longer become an error
// envelope, so the connection is aborted instead of ending cleanly.
func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.downloads.Open(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer d.Body.Close()

	name := d.FileName
	if name == "" {
		name = "download"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	if d.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, d.Body)
	if err != nil {
		logging.FromContext(ctx, h.logger).Error(ctx, "download aborted",
			"note_id", d.NoteID, "source", d.Source, "bytes", n, "error", err)
		h.metrics.RecordDownloadAbort(n)
		panic(http.ErrAbortHandler)
	}

	h.metrics.RecordDownload(d.Source, n)
}
