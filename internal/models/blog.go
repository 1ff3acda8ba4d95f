package models

import (
	"time"
)

// Blog status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Author is a value snapshot of the owning user taken at creation time.
// Later profile edits do not retroactively change the displayed author
// info on already-published blogs.
type Author struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Blog struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"not null" json:"description"`
	Thumbnail   string   `gorm:"not null" json:"thumbnail"` // media host URL
	Category    string   `gorm:"index;not null" json:"category"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	Content     string   `gorm:"type:text;not null" json:"content"` // sanitized editor HTML

	Author Author `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Status string `gorm:"size:20;default:'draft';index" json:"status"`

	Views      int  `gorm:"default:0" json:"views"`
	Likes      int  `gorm:"default:0" json:"likes"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibleTo decides read access: published blogs are public, drafts are
// author-only. caller may be nil for anonymous requests.
func (b *Blog) VisibleTo(caller *User) bool {
	if b.Status == StatusPublished {
		return true
	}
	return caller != nil && caller.ID == b.Author.ID
}

// OwnedBy guards mutations. There is no moderator or admin override.
func (b *Blog) OwnedBy(caller *User) bool {
	return caller != nil && caller.ID == b.Author.ID
}
