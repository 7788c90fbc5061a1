package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/blob"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/archives"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/likes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// events is a shared, ordered log of side effects across the fake store
// and the fake repositories.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.log)
}

// memDB is an in-memory stand-in for the Postgres tables.
type memDB struct {
	mu       sync.Mutex
	ev       *events
	notes    map[string]*models.Note
	comments map[string][]models.Comment
	likes    map[string][]string
	archives map[string][]string // user -> note ids, oldest first
	clock    time.Time

	createErr error
	updateErr error
}

func newMemDB(ev *events) *memDB {
	return &memDB{
		ev:       ev,
		notes:    map[string]*models.Note{},
		comments: map[string][]models.Comment{},
		likes:    map[string][]string{},
		archives: map[string][]string{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) snapshot(n *models.Note) *models.Note {
	cp := *n
	cp.Likes, cp.Comments = nil, nil
	cp.LikeCount = int64(len(m.likes[n.ID]))
	cp.CommentCount = int64(len(m.comments[n.ID]))
	return &cp
}

type memNotes struct{ m *memDB }

func (r memNotes) Create(ctx context.Context, n *models.Note) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createErr != nil {
		return r.m.createErr
	}
	n.CreatedAt = r.m.tick()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.m.notes[n.ID] = &cp
	r.m.ev.add("db:create %s", n.ID)
	return nil
}

func (r memNotes) GetByID(ctx context.Context, id string) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.m.snapshot(n), nil
}

func (r memNotes) GetByIDForUpdate(ctx context.Context, id string) (*models.Note, error) {
	r.m.ev.add("db:lock %s", id)
	return r.GetByID(ctx, id)
}

func (r memNotes) Update(ctx context.Context, id string, upd *models.NoteUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.updateErr != nil {
		return r.m.updateErr
	}
	n, ok := r.m.notes[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&n.Title, upd.Metadata.Title}, {&n.Description, upd.Metadata.Description},
		{&n.CollegeName, upd.Metadata.CollegeName}, {&n.CourseName, upd.Metadata.CourseName},
		{&n.Batch, upd.Metadata.Batch}, {&n.SubjectName, upd.Metadata.SubjectName},
		{&n.Semester, upd.Metadata.Semester},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if b := upd.Blob; b != nil {
		n.FileURL, n.FileName, n.FileType, n.BlobID = b.URL, b.Name, b.ContentType, b.BlobID
	}
	n.UpdatedAt = r.m.tick()
	r.m.ev.add("db:update %s", id)
	return nil
}

func (r memNotes) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.notes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.notes, id)
	delete(r.m.comments, id)
	delete(r.m.likes, id)
	for u, ids := range r.m.archives {
		r.m.archives[u] = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	}
	r.m.ev.add("db:delete %s", id)
	return nil
}

func (r memNotes) List(ctx context.Context, f models.NoteFilter) ([]*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Note, 0)
	for _, n := range r.m.notes {
		if f.Subject != "" && !strings.Contains(strings.ToLower(n.SubjectName), strings.ToLower(f.Subject)) {
			continue
		}
		if f.Uploader != "" && n.UploaderID != f.Uploader {
			continue
		}
		out = append(out, r.m.snapshot(n))
	}
	slices.SortFunc(out, func(a, b *models.Note) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memNotes) ListArchivedBy(ctx context.Context, userID string) ([]*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Note, 0)
	ids := r.m.archives[userID]
	for i := len(ids) - 1; i >= 0; i-- {
		if n, ok := r.m.notes[ids[i]]; ok {
			out = append(out, r.m.snapshot(n))
		}
	}
	return out, nil
}

func (r memNotes) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	n.DownloadCount++
	return n.DownloadCount, nil
}

func (r memNotes) RefreshArchived(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	n.Archived = false
	for _, ids := range r.m.archives {
		if slices.Contains(ids, id) {
			n.Archived = true
		}
	}
	return n.Archived, nil
}

type memComments struct{ m *memDB }

func (r memComments) Add(ctx context.Context, c *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.CommentedAt = r.m.tick()
	r.m.comments[c.NoteID] = append(r.m.comments[c.NoteID], *c)
	return nil
}

func (r memComments) ListByNote(ctx context.Context, noteID string) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append(make([]models.Comment, 0), r.m.comments[noteID]...), nil
}

func (r memComments) Get(ctx context.Context, noteID, commentID string) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.comments[noteID] {
		if c.ID == commentID {
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memComments) UpdateText(ctx context.Context, noteID, commentID, text string) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cs := r.m.comments[noteID]
	for i := range cs {
		if cs[i].ID == commentID {
			cs[i].Text = text
			cs[i].CommentedAt = r.m.tick()
			c := cs[i]
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memComments) Delete(ctx context.Context, noteID, commentID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	before := len(r.m.comments[noteID])
	r.m.comments[noteID] = slices.DeleteFunc(r.m.comments[noteID], func(c models.Comment) bool { return c.ID == commentID })
	return len(r.m.comments[noteID]) < before, nil
}

type memLikes struct{ m *memDB }

func (r memLikes) Remove(ctx context.Context, noteID, userID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.Index(r.m.likes[noteID], userID)
	if i < 0 {
		return false, nil
	}
	r.m.likes[noteID] = slices.Delete(r.m.likes[noteID], i, i+1)
	return true, nil
}

func (r memLikes) Add(ctx context.Context, noteID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !slices.Contains(r.m.likes[noteID], userID) {
		r.m.likes[noteID] = append(r.m.likes[noteID], userID)
	}
	return nil
}

func (r memLikes) ListByNote(ctx context.Context, noteID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append(make([]string, 0), r.m.likes[noteID]...), nil
}

type memArchives struct{ m *memDB }

func (r memArchives) Add(ctx context.Context, userID, noteID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if slices.Contains(r.m.archives[userID], noteID) {
		return false, nil
	}
	r.m.archives[userID] = append(r.m.archives[userID], noteID)
	return true, nil
}

func (r memArchives) Remove(ctx context.Context, userID, noteID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.Index(r.m.archives[userID], noteID)
	if i < 0 {
		return false, nil
	}
	r.m.archives[userID] = slices.Delete(r.m.archives[userID], i, i+1)
	return true, nil
}

type memRepoManager struct{ m *memDB }

func (rm *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (rm *memRepoManager) Notes(dbx.DBTX) notes.Repository              { return memNotes{rm.m} }
func (rm *memRepoManager) Comments(dbx.DBTX) comments.Repository        { return memComments{rm.m} }
func (rm *memRepoManager) Likes(dbx.DBTX) likes.Repository              { return memLikes{rm.m} }
func (rm *memRepoManager) Archives(dbx.DBTX) archives.Repository        { return memArchives{rm.m} }

// fakeStore is an in-memory blob.Store that logs every call.
type fakeStore struct {
	mu      sync.Mutex
	ev      *events
	objects map[string][]byte
	seq     int

	putErr    error
	removeErr error
	openErr   error
}

func newFakeStore(ev *events) *fakeStore {
	return &fakeStore{ev: ev, objects: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, name, contentType string, data []byte) (*blob.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ev.add("blob:put %s", name)
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.seq++
	id := fmt.Sprintf("notes/k%d-%s", s.seq, name)
	s.objects[id] = data
	return &blob.Object{ID: id, URL: "http://s3/" + id}, nil
}

func (s *fakeStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ev.add("blob:remove %s", id)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, id)
	return nil
}

func (s *fakeStore) Open(ctx context.Context, id string) (*blob.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	data, ok := s.objects[id]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &blob.Reader{Body: io.NopCloser(strings.NewReader(string(data))), Size: int64(len(data)), ContentType: "binary/octet-stream"}, nil
}

func (s *fakeStore) count(prefix string) int {
	n := 0
	for _, e := range s.ev.all() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

type fakeFetcher struct {
	url  string
	body string
	ct   string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*blob.Reader, error) {
	f.url = url
	if f.err != nil {
		return nil, f.err
	}
	return &blob.Reader{Body: io.NopCloser(strings.NewReader(f.body)), Size: -1, ContentType: f.ct}, nil
}

// env bundles the fakes every service test needs.
type env struct {
	ev    *events
	mem   *memDB
	rm    *memRepoManager
	store *fakeStore
	db    *sql.DB
	mock  sqlmock.Sqlmock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ev := &events{}
	mem := newMemDB(ev)
	return &env{ev: ev, mem: mem, rm: &memRepoManager{m: mem}, store: newFakeStore(ev), db: db, mock: mock}
}

// expectTx queues n committed transactions on the sqlmock.
func (e *env) expectTx(n int) {
	for range n {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e *env) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

func (e *env) notes() *NoteService {
	return NewNoteService(e.db, e.rm, e.store, nil, logging.Discard())
}

func (e *env) engagement() *EngagementService {
	return NewEngagementService(e.db, e.rm, logging.Discard())
}

func (e *env) archive() *ArchiveService {
	return NewArchiveService(e.db, e.rm, logging.Discard())
}

var (
	alice = models.Caller{ID: "u-alice", Username: "alice"}
	bob   = models.Caller{ID: "u-bob", Username: "bob"}
)

func fullMetadata() models.NoteMetadata {
	return models.NoteMetadata{
		Title:       "Eigenvalues",
		Description: "Lecture 4 notes",
		CollegeName: "MIT",
		CourseName:  "Mathematics",
		Batch:       "2024",
		SubjectName: "Linear Algebra",
		Semester:    "3",
	}
}

func pdf(name string) *FileUpload {
	return &FileUpload{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.7 " + name)}
}

// seedNote creates a note owned by alice with a managed PDF.
func (e *env) seedNote(t *testing.T) *models.Note {
	t.Helper()
	n, err := e.notes().Create(context.Background(), alice, CreateNoteInput{Metadata: fullMetadata(), File: pdf("a.pdf")})
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return n
}
