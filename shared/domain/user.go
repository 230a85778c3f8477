package domain

import "time"

type User struct {
	Id        UserId
	Email     Email
	Username  Username
	PassHash  string
	PostIds   []PostId // ordered by creation
	CreatedAt time.Time
}

// Identity is the authenticated caller. It is derived from a verified
// session token and handed to services as an explicit argument.
type Identity struct {
	UserId   UserId
	Username Username
}
