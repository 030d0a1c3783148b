package domain

import (
	"encoding/json"
	"path"
	"strings"
)

// FileType classifies an attachment by extension.
type FileType string

// Attachment file types.
const (
	FileTypePDF       FileType = "pdf"
	FileTypeExcel     FileType = "excel"
	FileTypeImage     FileType = "image"
	FileTypeVideo     FileType = "video"
	FileTypeDocxOther FileType = "docx_other"
	FileTypeZipChild  FileType = "zip_child"
	FileTypeOther     FileType = "other"
)

// FileTypes lists every attachment type.
var FileTypes = []FileType{
	FileTypePDF, FileTypeExcel, FileTypeImage, FileTypeVideo,
	FileTypeDocxOther, FileTypeZipChild, FileTypeOther,
}

// ClassifyFile maps a file name to its attachment type.
func ClassifyFile(name string) FileType {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return FileTypePDF
	case ".xlsx", ".xls":
		return FileTypeExcel
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return FileTypeImage
	case ".mp4", ".mov", ".avi", ".wmv":
		return FileTypeVideo
	case ".docx":
		return FileTypeDocxOther
	case ".zip":
		return FileTypeZipChild
	default:
		return FileTypeOther
	}
}

// Attachment is any archive entry other than the main document, including
// entries of nested ZIPs expanded one level deep.
type Attachment struct {
	// ID is stable: the hex SHA-256 of archive|depth|container|path.
	ID        string
	ArchiveID string

	// DisplayName is the decoded path; nested entries read "[parent]/name".
	DisplayName string
	FileType    FileType

	// Depth is 0 for top-level entries and 1 for entries of a nested ZIP.
	Depth int

	// ContainerPath is the nested ZIP's path inside the archive, nil at depth 0.
	ContainerPath *string

	// VirtualPath is the raw entry name within its container.
	VirtualPath string

	// CachedPath is set once the attachment has been extracted to disk.
	CachedPath *string

	SizeBytes int64
}

// Annotation is a user note attached to an archive.
type Annotation struct {
	ID         string
	ArchiveID  string
	TargetKind string
	TargetRef  string
	Locator    json.RawMessage
	Content    string
	CreatedAt  int64
	UpdatedAt  int64
}
