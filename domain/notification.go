package domain

import "time"

// Notification tells a post's author that a reader left a message.
// It lives through exactly one channel: pushed to the author's live
// connection, or appended to the author's durable log — never both.
type Notification struct {
	PostID      PostID    `json:"postId"`
	User        string    `json:"user"`
	Message     string    `json:"message"`
	Profile     string    `json:"profile"`
	AuthorEmail string    `json:"authorEmail"`
	URL         string    `json:"url"`
	Timestamp   time.Time `json:"timestamp"`
}
