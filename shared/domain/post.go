package domain

import "time"

type Post struct {
	Id            PostId
	Title         string
	Content       string
	AttachmentRef AttachmentRef
	PostType      PostType
	CreatorId     UserId
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// to iterate thru layers: handler -> service -> storage
type PostCreationData struct {
	Title         string
	Content       string
	PostType      PostType
	AttachmentRef AttachmentRef
}

// PostUpdateData replaces title, content and type. AttachmentRef is empty
// when the caller keeps the current attachment.
type PostUpdateData struct {
	Title         string
	Content       string
	PostType      PostType
	AttachmentRef AttachmentRef
}

// PostSummary is the creator-facing projection without ids and bookkeeping.
type PostSummary struct {
	Title         string
	AttachmentRef AttachmentRef
	Content       string
	PostType      PostType
}

// GroupedPost is a post inside a TypeGroup: creator and timestamps are left out.
type GroupedPost struct {
	Id            PostId
	Title         string
	Content       string
	AttachmentRef AttachmentRef
	PostType      PostType
}

type TypeGroup struct {
	Type  PostType
	Posts []GroupedPost
}

// Page is a 1-indexed pagination window.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p *Post) Summary() PostSummary {
	return PostSummary{Title: p.Title, AttachmentRef: p.AttachmentRef, Content: p.Content, PostType: p.PostType}
}
