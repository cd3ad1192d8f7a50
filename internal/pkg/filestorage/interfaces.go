package filestorage

import (
	"mime/multipart"
)

// ImageStorage stores uploaded student images and hands back the reference
// that is saved on the student record.
type ImageStorage interface {
	// SaveFile saves a file and returns its public reference
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath lets you specify a subdirectory for storing the file
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously saved file given its reference
	DeleteFile(ref string) error

	// GetFullPath returns the filesystem path behind a reference
	GetFullPath(ref string) string
}
