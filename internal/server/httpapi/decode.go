package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
)

const (
	multipartOverhead = 1 << 20
	maxBodySize       = common.MaxFileSize + multipartOverhead
	maxMemory         = 8 << 20
)

// noteForm is the decoded body of create and update requests.
type noteForm struct {
	Metadata models.NoteMetadata
	File     *services.FileUpload
	Link     *services.FileLink
	Uploader string
}

type noteJSON struct {
	models.NoteMetadata
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Uploader string `json:"uploader"`
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.NewValidationError("request body exceeds the 25 MiB file limit", "file")
	}
	return common.NewValidationError(fmt.Sprintf("malformed request body: %v", err))
}

func mediaType(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt
}

// decodeNoteForm accepts multipart/form-data (with an optional "file" part),
// JSON, or url-encoded forms.
func decodeNoteForm(w http.ResponseWriter, r *http.Request) (*noteForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if mediaType(r) == "application/json" {
		var body noteJSON
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, bodyError(err)
		}
		f := &noteForm{Metadata: body.NoteMetadata, Uploader: body.Uploader}
		if body.FileURL != "" {
			f.Link = &services.FileLink{URL: body.FileURL, Name: body.FileName, ContentType: body.FileType}
		}
		return f, nil
	}

	if mediaType(r) == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, bodyError(err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, bodyError(err)
	}

	f := &noteForm{
		Metadata: models.NoteMetadata{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			CollegeName: r.FormValue("collegeName"),
			CourseName:  r.FormValue("courseName"),
			Batch:       r.FormValue("batch"),
			SubjectName: r.FormValue("subjectName"),
			Semester:    r.FormValue("semester"),
		},
		Uploader: r.FormValue("uploader"),
	}

	if u := r.FormValue("fileUrl"); u != "" {
		f.Link = &services.FileLink{URL: u, Name: r.FormValue("fileName"), ContentType: r.FormValue("fileType")}
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return nil, bodyError(err)
		default:
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, common.MaxFileSize+1))
			if err != nil {
				return nil, bodyError(err)
			}
			ct := header.Header.Get("Content-Type")
			if ct == "" || ct == "application/octet-stream" {
				if guessed := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); guessed != "" {
					ct = guessed
				}
			}
			f.File = &services.FileUpload{Name: header.Filename, ContentType: ct, Data: data}
		}
	}

	return f, nil
}

// decodeText reads {"text": "..."} or a "text" form field.
func decodeText(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)

	if mediaType(r) == "application/json" {
		var body struct {
			Text *string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", bodyError(err)
		}
		if body.Text == nil {
			return "", common.MissingFieldsError([]string{"text"})
		}
		return *body.Text, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", bodyError(err)
	}
	if !r.Form.Has("text") {
		return "", common.MissingFieldsError([]string{"text"})
	}
	return r.Form.Get("text"), nil
}

func decodeFilter(r *http.Request) (models.NoteFilter, error) {
	q := r.URL.Query()
	f := models.NoteFilter{
		Search:   q.Get("search"),
		Subject:  q.Get("subject"),
		College:  q.Get("college"),
		Course:   q.Get("course"),
		Semester: q.Get("semester"),
		Batch:    q.Get("batch"),
		Uploader: q.Get("uploader"),
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, common.NewValidationError(p.name+" must be a non-negative integer", p.name)
		}
		*p.dst = n
	}
	return f, nil
}
