package models

import "time"

// Post is a board entry. AuthorID is nil once the author has withdrawn.
// CommentCount is only filled in by listings.
type Post struct {
	ID             int64
	BoardID        string
	Title          string
	Content        string
	AuthorID       *int64
	AuthorNickname string
	Views          int
	IsNotice       bool
	CommentCount   int
	CreatedAt      time.Time
}

// Comment belongs to a post. AuthorID is nil once the author has withdrawn.
type Comment struct {
	ID             int64
	PostID         int64
	Content        string
	AuthorID       *int64
	AuthorNickname string
	CreatedAt      time.Time
}
