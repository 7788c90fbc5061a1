// Package httpapi is the public HTTP surface: a chi router that decodes
// requests, calls the services and writes JSON envelopes.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/metrics"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type NoteService interface {
	Create(ctx context.Context, caller models.Caller, in services.CreateNoteInput) (*models.Note, error)
	Update(ctx context.Context, caller models.Caller, id string, in services.UpdateNoteInput) (*models.Note, error)
	Delete(ctx context.Context, caller models.Caller, id string) (*services.DeleteResult, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, f models.NoteFilter) ([]*models.Note, error)
}

type EngagementService interface {
	ToggleLike(ctx context.Context, caller models.Caller, noteID string) (*services.LikeState, error)
	AddComment(ctx context.Context, caller models.Caller, noteID, text string) (*models.Comment, error)
	EditComment(ctx context.Context, caller models.Caller, noteID, commentID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, caller models.Caller, noteID, commentID string) error
	Comments(ctx context.Context, noteID string) ([]models.Comment, error)
	IncrementDownload(ctx context.Context, noteID string) (int64, error)
}

type ArchiveService interface {
	Archive(ctx context.Context, caller models.Caller, noteID string) (bool, error)
	Unarchive(ctx context.Context, caller models.Caller, noteID string) (bool, error)
	List(ctx context.Context, caller models.Caller) ([]*models.Note, error)
}

type DownloadService interface {
	Open(ctx context.Context, noteID string) (*services.Download, error)
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Notes      NoteService
	Engagement EngagementService
	Archives   ArchiveService
	Downloads  DownloadService

	SecretKey []byte
	Logger    logging.Logger
	Metrics   *metrics.Metrics
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

type Handler struct {
	notes      NoteService
	engagement EngagementService
	archives   ArchiveService
	downloads  DownloadService
	metrics    *metrics.Metrics
	logger     logging.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(deps *Deps) http.Handler {
	h := &Handler{
		notes:      deps.Notes,
		engagement: deps.Engagement,
		archives:   deps.Archives,
		downloads:  deps.Downloads,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("module", "http"),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger, deps.Metrics))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/notes", h.listNotes)
		r.Get("/notes/{id}", h.getNote)
		r.Get("/notes/{id}/file", h.downloadFile)
		r.Get("/notes/{id}/comments", h.listComments)
		r.Put("/notes/{id}/download", h.incrementDownload)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(deps.SecretKey))

			r.Post("/notes", h.createNote)
			r.Put("/notes/{id}", h.updateNote)
			r.Delete("/notes/{id}", h.deleteNote)

			r.Put("/notes/{id}/like", h.toggleLike)
			r.Post("/notes/{id}/comments", h.addComment)
			r.Put("/notes/{id}/comments/{commentID}", h.editComment)
			r.Delete("/notes/{id}/comments/{commentID}", h.deleteComment)

			r.Post("/notes/{id}/archive", h.archive)
			r.Delete("/notes/{id}/archive", h.unarchive)
			r.Get("/archives", h.listArchives)
		})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, h.logger, errRouteNotFound)
	})

	return r
}
