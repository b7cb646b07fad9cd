package models

import "time"

// Post - represents a post as returned by the store
// @ID - ID assigned by the store
// @Title - title
// @Content - content
// @CreatedAt - creation time assigned by the store
type Post struct {
	ID        PostID    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPost - represents a post that is not stored yet. Values are kept exactly as typed
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePostRequest - represents post creation request of rest api
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
