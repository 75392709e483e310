package repositories

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/YUGESHKARAN/web-socket.io/domain"
	"github.com/YUGESHKARAN/web-socket.io/errors"
)

func newTestRepository(t *testing.T) *AuthorRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthorRepository(db)
}

func seedAuthor(t *testing.T, repo *AuthorRepository) (string, domain.PostID) {
	t.Helper()
	author := domain.Author{
		Name:    "Yugesh",
		Email:   "author@x.com",
		Profile: "author.png",
	}
	require.NoError(t, repo.CreateAuthor(author))
	postID, err := repo.CreatePost(author.Email, domain.Post{
		Title:       "Going live",
		Description: "Presence-aware relays",
		Category:    "golang",
	})
	require.NoError(t, err)
	return author.Email, postID
}

func Test_FindPostByID_ProjectsOwnerAndPost(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	email, postID := seedAuthor(t, repo)

	owned, err := repo.FindPostByID(postID)
	req.NoError(err)
	req.Equal(email, owned.AuthorEmail)
	req.Equal(postID, owned.Post.ID)
	req.Equal("Going live", owned.Post.Title)
	req.Empty(owned.Post.Messages)
}

func Test_FindPostByID_Unknown(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.FindPostByID("no-such-post")
	req.ErrorIs(err, errors.ErrPostNotFound)
}

func Test_AppendMessage_PersistsInOrder(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	_, postID := seedAuthor(t, repo)

	at := time.Now().UTC().Truncate(time.Millisecond)
	messages := []domain.ChatMessage{
		{User: "Alice", Message: "first", Profile: "alice.png", Timestamp: at},
		{User: "Bob", Message: "second", Timestamp: at.Add(time.Minute)},
	}
	for _, msg := range messages {
		req.NoError(repo.AppendMessage(postID, msg))
	}

	owned, err := repo.FindPostByID(postID)
	req.NoError(err)
	req.Equal(messages, owned.Post.Messages)
}

func Test_AppendMessage_UnknownPost(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	seedAuthor(t, repo)

	err := repo.AppendMessage("no-such-post", domain.ChatMessage{User: "Bob", Message: "hi"})
	req.ErrorIs(err, errors.ErrPostNotFound)
}

func Test_AppendNotification_Persists(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	email, postID := seedAuthor(t, repo)

	notification := domain.Notification{
		PostID:      postID,
		User:        "Bob",
		Message:     "hi",
		AuthorEmail: email,
		URL:         "/p/1",
		Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
	}
	req.NoError(repo.AppendNotification(email, notification))

	author, err := repo.FindAuthorByEmail(email)
	req.NoError(err)
	req.Len(author.Notifications, 1)
	req.Equal(notification, author.Notifications[0])
}

func Test_AppendNotification_UnknownAuthor(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	err := repo.AppendNotification("ghost@x.com", domain.Notification{})
	req.ErrorIs(err, errors.ErrAuthorNotFound)
}

func Test_CreateAuthor_Twice(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	email, _ := seedAuthor(t, repo)

	err := repo.CreateAuthor(domain.Author{Email: email})
	req.ErrorIs(err, errors.ErrAuthorAlreadyExists)
}

func Test_CreatePost_GeneratesID(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	email, first := seedAuthor(t, repo)

	second, err := repo.CreatePost(email, domain.Post{Title: "Another one"})
	req.NoError(err)
	req.NotEmpty(second)
	req.NotEqual(first, second)

	author, err := repo.FindAuthorByEmail(email)
	req.NoError(err)
	req.Len(author.Posts, 2)
}
