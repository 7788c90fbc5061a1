package services

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
)

const (
	defaultUploadName = "Uploaded File"
	defaultLinkName   = "File from URL"
	defaultLinkType   = "application/octet-stream"
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
	"image/png":  {},
}

// FileUpload is a file received with the request, to be stored as a
// managed blob.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileLink points a note at an externally hosted file.
type FileLink struct {
	URL         string
	Name        string
	ContentType string
}

// AllowedContentType reports whether ct (parameters ignored) may be uploaded.
func AllowedContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	_, ok := allowedContentTypes[mt]
	return ok
}

func validateUpload(f *FileUpload) error {
	if !AllowedContentType(f.ContentType) {
		return common.NewValidationError(
			fmt.Sprintf("file type %q is not allowed; use PDF, DOC, DOCX, JPEG or PNG", f.ContentType), "file")
	}
	switch {
	case len(f.Data) == 0:
		return common.NewValidationError("file is empty", "file")
	case len(f.Data) > common.MaxFileSize:
		return common.NewValidationError("file exceeds the 25 MiB limit", "file")
	}
	return nil
}

// linkRef validates l and fills in the display defaults.
func linkRef(l *FileLink, defaultName string) (*models.BlobRef, error) {
	u, err := url.Parse(strings.TrimSpace(l.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, common.NewValidationError("fileUrl must be an absolute http(s) URL", "fileUrl")
	}

	ref := &models.BlobRef{URL: u.String(), Name: l.Name, ContentType: l.ContentType}
	if ref.Name == "" {
		ref.Name = defaultName
	}
	if ref.ContentType == "" {
		ref.ContentType = defaultLinkType
	}
	return ref, nil
}

// checkSource enforces that at most one of file and link is given, and
// exactly one when required is set.
func checkSource(file *FileUpload, link *FileLink, required bool) error {
	switch {
	case file != nil && link != nil:
		return common.NewValidationError("provide either a file or a fileUrl, not both", "file", "fileUrl")
	case required && file == nil && link == nil:
		return common.NewValidationError("a file or a fileUrl is required", "file", "fileUrl")
	}
	return nil
}
