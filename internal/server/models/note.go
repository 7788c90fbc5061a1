// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// Note is the metadata record for one uploaded or linked document.
type Note struct {
	ID string `json:"id"`

	NoteMetadata

	// FileURL, FileName and FileType are always written together.
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	// BlobID is the object-store key of a managed blob; empty when FileURL
	// points at an external resource.
	BlobID string `json:"-"`

	UploaderID    string `json:"uploader"`
	Archived      bool   `json:"archived"`
	DownloadCount int64  `json:"downloadCount"`

	// Likes and Comments are populated on single-note reads only.
	Likes    []string  `json:"likes,omitempty"`
	Comments []Comment `json:"comments,omitempty"`

	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Managed reports whether the note's blob lives in our object store.
func (n *Note) Managed() bool {
	return n.BlobID != ""
}

// NoteMetadata holds the free-text descriptive fields of a note.
type NoteMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CollegeName string `json:"collegeName"`
	CourseName  string `json:"courseName"`
	Batch       string `json:"batch"`
	SubjectName string `json:"subjectName"`
	Semester    string `json:"semester"`
}

// Missing returns the JSON names of empty or whitespace-only fields, in
// declaration order.
func (m NoteMetadata) Missing() []string {
	var missing []string
	for _, f := range m.fields() {
		if strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Empty reports whether no field is set.
func (m NoteMetadata) Empty() bool {
	return len(m.Columns()) == 0
}

type metadataField struct {
	name   string
	column string
	value  *string
}

func (m *NoteMetadata) fields() []metadataField {
	return []metadataField{
		{"title", "title", &m.Title},
		{"description", "description", &m.Description},
		{"collegeName", "college_name", &m.CollegeName},
		{"courseName", "course_name", &m.CourseName},
		{"batch", "batch", &m.Batch},
		{"subjectName", "subject_name", &m.SubjectName},
		{"semester", "semester", &m.Semester},
	}
}

// Columns maps the non-empty fields to their column names. It is the
// partial-update set: empty strings mean "leave untouched".
func (m NoteMetadata) Columns() map[string]string {
	out := make(map[string]string)
	for _, f := range m.fields() {
		if *f.value != "" {
			out[f.column] = *f.value
		}
	}
	return out
}

// BlobRef is the file reference of a note. The three public fields and the
// managed blob id are replaced as a unit.
type BlobRef struct {
	URL         string
	Name        string
	ContentType string
	BlobID      string
}

// NoteUpdate is a partial update: only non-empty metadata fields and a
// non-nil Blob are written.
type NoteUpdate struct {
	Metadata NoteMetadata
	Blob     *BlobRef
}

// Empty reports whether the update would change nothing.
func (u *NoteUpdate) Empty() bool {
	return u.Blob == nil && u.Metadata.Empty()
}

// NoteFilter narrows list queries. String filters are case-insensitive
// substring matches; Uploader is exact.
type NoteFilter struct {
	Search   string
	Subject  string
	College  string
	Course   string
	Semester string
	Batch    string
	Uploader string
	Limit    int
	Offset   int
}
