package domain

import "time"

// Author is the aggregate owning posts and the durable notification log.
// The store is the source of truth for identity; the email is the stable
// key readers reconnect with.
type Author struct {
	Name          string         `json:"authorname"`
	Email         string         `json:"email"`
	Profile       string         `json:"profile"`
	Posts         []Post         `json:"posts"`
	Notifications []Notification `json:"notification"`
}

// Post is one blog post with its attached message log.
type Post struct {
	ID          PostID        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Messages    []ChatMessage `json:"messages"`
	Timestamp   time.Time     `json:"timestamp"`
}

// OwnedPost is the projection returned when resolving a post by ID:
// the matching post entry plus the owning author's email.
type OwnedPost struct {
	AuthorEmail string
	Post        Post
}
