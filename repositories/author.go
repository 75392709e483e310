package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/YUGESHKARAN/web-socket.io/domain"
	"github.com/YUGESHKARAN/web-socket.io/errors"
)

const (
	authorKeyPrefix = "author:"
	postKeyPrefix   = "post:"
)

// AuthorRepository persists the Author aggregate in BadgerDB.
//
// Layout:
//   - "author:{email}" -> JSON Author document (posts, messages, notifications)
//   - "post:{post_id}" -> owning author's email (secondary index)
//
// The index makes find-post-by-id a two-step point lookup instead of a
// full scan over author documents. Both keys are written in the same
// transaction, so the index never references a missing document.
type AuthorRepository struct {
	db *badger.DB
}

func NewAuthorRepository(db *badger.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// CreateAuthor persists a new author document. Seeding only: account
// management itself lives in the blog's CRUD service, not here.
func (r *AuthorRepository) CreateAuthor(author domain.Author) error {
	data, err := json.Marshal(author)
	if err != nil {
		return fmt.Errorf("marshal author: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := authorKey(author.Email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrAuthorAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		for _, post := range author.Posts {
			if err := txn.Set(postKey(post.ID), []byte(author.Email)); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreatePost appends a post to an author's document and writes the
// post index entry in the same transaction. A missing ID is generated.
func (r *AuthorRepository) CreatePost(email string, post domain.Post) (domain.PostID, error) {
	if post.ID == "" {
		post.ID = domain.PostID(uuid.NewString())
	}
	if post.Timestamp.IsZero() {
		post.Timestamp = time.Now().UTC()
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		author, err := getAuthor(txn, email)
		if err != nil {
			return err
		}
		author.Posts = append(author.Posts, post)
		if err := setAuthor(txn, author); err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), []byte(email))
	})
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

// FindPostByID resolves the owning author of a post, projecting the
// author's email and the matching post entry only.
func (r *AuthorRepository) FindPostByID(postID domain.PostID) (domain.OwnedPost, error) {
	var owned domain.OwnedPost
	err := r.db.View(func(txn *badger.Txn) error {
		email, err := getPostOwner(txn, postID)
		if err != nil {
			return err
		}
		author, err := getAuthor(txn, email)
		if err != nil {
			return err
		}
		post, found := lo.Find(author.Posts, func(p domain.Post) bool {
			return p.ID == postID
		})
		if !found {
			return errors.ErrPostNotFound
		}
		owned = domain.OwnedPost{AuthorEmail: author.Email, Post: post}
		return nil
	})
	return owned, err
}

// FindAuthorByEmail retrieves the full author document.
func (r *AuthorRepository) FindAuthorByEmail(email string) (domain.Author, error) {
	var author domain.Author
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		author, err = getAuthor(txn, email)
		return err
	})
	return author, err
}

// AppendMessage atomically appends a chat message to a post's log.
// This append is the durability point of a dispatch: once it returns
// nil, the message is sent.
func (r *AuthorRepository) AppendMessage(postID domain.PostID, msg domain.ChatMessage) error {
	return r.db.Update(func(txn *badger.Txn) error {
		email, err := getPostOwner(txn, postID)
		if err != nil {
			return err
		}
		author, err := getAuthor(txn, email)
		if err != nil {
			return err
		}
		i := lo.IndexOf(lo.Map(author.Posts, func(p domain.Post, _ int) domain.PostID {
			return p.ID
		}), postID)
		if i < 0 {
			return errors.ErrPostNotFound
		}
		author.Posts[i].Messages = append(author.Posts[i].Messages, msg)
		return setAuthor(txn, author)
	})
}

// AppendNotification atomically appends a notification to an author's
// durable log, for retrieval on the author's next session.
func (r *AuthorRepository) AppendNotification(email string, n domain.Notification) error {
	return r.db.Update(func(txn *badger.Txn) error {
		author, err := getAuthor(txn, email)
		if err != nil {
			return err
		}
		author.Notifications = append(author.Notifications, n)
		return setAuthor(txn, author)
	})
}

func authorKey(email string) []byte { return []byte(authorKeyPrefix + email) }

func postKey(id domain.PostID) []byte { return []byte(postKeyPrefix + string(id)) }

func getPostOwner(txn *badger.Txn, postID domain.PostID) (string, error) {
	item, err := txn.Get(postKey(postID))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return "", errors.ErrPostNotFound
	}
	if err != nil {
		return "", err
	}
	var email string
	err = item.Value(func(v []byte) error {
		email = string(v)
		return nil
	})
	return email, err
}

func getAuthor(txn *badger.Txn, email string) (domain.Author, error) {
	var author domain.Author
	item, err := txn.Get(authorKey(email))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return author, errors.ErrAuthorNotFound
	}
	if err != nil {
		return author, err
	}
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &author)
	})
	return author, err
}

func setAuthor(txn *badger.Txn, author domain.Author) error {
	data, err := json.Marshal(author)
	if err != nil {
		return fmt.Errorf("marshal author: %w", err)
	}
	return txn.Set(authorKey(author.Email), data)
}
