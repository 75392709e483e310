// Package domain contains core concepts of the blog relay.
// This file defines chat messages appended to a post's log.
// Messages are immutable once created and never edited or removed.
package domain

import "time"

// PostID identifies one blog post and the live chat room attached to it.
type PostID string

// ChatMessage is a single reader message on a post's live chat.
// Profile is the sender's profile image reference, "" when unknown.
type ChatMessage struct {
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Profile   string    `json:"profile"`
	Timestamp time.Time `json:"timestamp"`
}
