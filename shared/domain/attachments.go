package domain

import "io"

// PendingFile is an uploaded file that has passed validation but is not
// stored yet.
type PendingFile struct {
	Filename    string
	SizeBytes   int64
	MimeType    string
	ImageWidth  *int
	ImageHeight *int
	Data        io.Reader
}
