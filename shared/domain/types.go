package domain

type (
	Email    = string
	Username = string
	Password = string

	// Opaque ids. Storage keeps them as uuid; nothing above storage should
	// care about the representation.
	UserId string
	PostId string

	AttachmentRef = string
	PostType      = string
)

func (id UserId) String() string { return string(id) }
func (id PostId) String() string { return string(id) }
