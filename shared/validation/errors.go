package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body or a file exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an uploaded file has a disallowed or unreadable type
var ErrInvalidMimeType = errors.New("invalid attachment type")

// ErrNoAttachment is returned when a multipart form carries no file
var ErrNoAttachment = errors.New("no attachment provided")
