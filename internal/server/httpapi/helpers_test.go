package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeNotes struct {
	createIn     services.CreateNoteInput
	createCaller models.Caller
	createErr    error

	updateID  string
	updateIn  services.UpdateNoteInput
	updateErr error

	deleteRes *services.DeleteResult
	deleteErr error

	getErr error

	listFilter models.NoteFilter
	listOut    []*models.Note
}

func (f *fakeNotes) Create(ctx context.Context, c models.Caller, in services.CreateNoteInput) (*models.Note, error) {
	f.createCaller, f.createIn = c, in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Note{ID: "n1", NoteMetadata: in.Metadata, UploaderID: c.ID}, nil
}

func (f *fakeNotes) Update(ctx context.Context, c models.Caller, id string, in services.UpdateNoteInput) (*models.Note, error) {
	f.updateID, f.updateIn = id, in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Note{ID: id, NoteMetadata: in.Metadata}, nil
}

func (f *fakeNotes) Delete(ctx context.Context, c models.Caller, id string) (*services.DeleteResult, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteRes == nil {
		return &services.DeleteResult{}, nil
	}
	return f.deleteRes, nil
}

func (f *fakeNotes) Get(ctx context.Context, id string) (*models.Note, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Note{ID: id, Likes: []string{"u2"}}, nil
}

func (f *fakeNotes) List(ctx context.Context, flt models.NoteFilter) ([]*models.Note, error) {
	f.listFilter = flt
	return f.listOut, nil
}

type fakeEngagement struct {
	caller    models.Caller
	noteID    string
	commentID string
	text      string
	err       error
}

func (f *fakeEngagement) ToggleLike(ctx context.Context, c models.Caller, noteID string) (*services.LikeState, error) {
	f.caller, f.noteID = c, noteID
	if f.err != nil {
		return nil, f.err
	}
	return &services.LikeState{Liked: true, Likes: []string{c.ID}}, nil
}

func (f *fakeEngagement) AddComment(ctx context.Context, c models.Caller, noteID, text string) (*models.Comment, error) {
	f.caller, f.noteID, f.text = c, noteID, text
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: "c1", NoteID: noteID, UserID: c.ID, Username: c.Username, Text: text}, nil
}

func (f *fakeEngagement) EditComment(ctx context.Context, c models.Caller, noteID, commentID, text string) (*models.Comment, error) {
	f.caller, f.noteID, f.commentID, f.text = c, noteID, commentID, text
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: commentID, Text: text}, nil
}

func (f *fakeEngagement) DeleteComment(ctx context.Context, c models.Caller, noteID, commentID string) error {
	f.caller, f.noteID, f.commentID = c, noteID, commentID
	return f.err
}

func (f *fakeEngagement) Comments(ctx context.Context, noteID string) ([]models.Comment, error) {
	f.noteID = noteID
	return []models.Comment{{ID: "c1", Text: "hi"}}, f.err
}

func (f *fakeEngagement) IncrementDownload(ctx context.Context, noteID string) (int64, error) {
	f.noteID = noteID
	return 7, f.err
}

type fakeArchives struct {
	added bool
	err   error
}

func (f *fakeArchives) Archive(ctx context.Context, c models.Caller, noteID string) (bool, error) {
	return f.added, f.err
}

func (f *fakeArchives) Unarchive(ctx context.Context, c models.Caller, noteID string) (bool, error) {
	return false, f.err
}

func (f *fakeArchives) List(ctx context.Context, c models.Caller) ([]*models.Note, error) {
	return []*models.Note{{ID: "n9", UploaderID: "other"}}, f.err
}

type fakeDownloads struct {
	d   *services.Download
	err error
}

func (f *fakeDownloads) Open(ctx context.Context, noteID string) (*services.Download, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.d, nil
}

type testAPI struct {
	notes      *fakeNotes
	engagement *fakeEngagement
	archives   *fakeArchives
	downloads  *fakeDownloads
	handler    http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{
		notes:      &fakeNotes{},
		engagement: &fakeEngagement{},
		archives:   &fakeArchives{},
		downloads:  &fakeDownloads{},
	}
	a.handler = NewRouter(&Deps{
		Notes:      a.notes,
		Engagement: a.engagement,
		Archives:   a.archives,
		Downloads:  a.downloads,
		SecretKey:  testSecret,
		Logger:     logging.Discard(),
	})
	return a
}

func token(t *testing.T, c models.Caller) string {
	t.Helper()
	tok, err := auth.GenerateToken(c, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, req *http.Request, caller *models.Caller) *httptest.ResponseRecorder {
	t.Helper()
	if caller != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *caller))
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type part struct {
	name, filename, contentType string
	data                        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

var (
	alice = models.Caller{ID: "u-alice", Username: "alice"}
	bob   = models.Caller{ID: "u-bob", Username: "bob"}
)
