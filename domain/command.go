package domain

// NewMessageCommand is the inbound intent carried by a newMessage event.
// Email identifies the sender (for the profile lookup), not the author.
type NewMessageCommand struct {
	PostID  PostID `json:"postId"`
	User    string `json:"user"`
	Email   string `json:"email"`
	URL     string `json:"url"`
	Message string `json:"message"`
}
