package domain

import (
	"fmt"
	"time"
)

// for debug
func (p *Post) String() string {
	return fmt.Sprintf("[id:%s, title:%s, type:%s, creator:%s, attachment:%s, created:%s]",
		p.Id, p.Title, p.PostType, p.CreatorId, p.AttachmentRef, p.CreatedAt.Format(time.StampMilli))
}

// OwnedBy reports whether the post was created by the given user.
func (p *Post) OwnedBy(id UserId) bool {
	return p.CreatorId == id
}

func (u *User) HasPost(id PostId) bool {
	for _, pid := range u.PostIds {
		if pid == id {
			return true
		}
	}
	return false
}
