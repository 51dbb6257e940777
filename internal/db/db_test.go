package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn         string
		wantDialect Dialect
		wantSource  string
	}{
		{"postgres://u:p@localhost/blog?sslmode=disable", Postgres, "postgres://u:p@localhost/blog?sslmode=disable"},
		{"postgresql://localhost/blog", Postgres, "postgresql://localhost/blog"},
		{"sqlite:///data/blog.db", SQLite, "data/blog.db"},
		{"sqlite:////var/lib/blog.db", SQLite, "/var/lib/blog.db"},
		{"sqlite://", SQLite, ":memory:"},
		{"./blog.db", SQLite, "./blog.db"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, src := ParseDSN(tt.dsn)
			assert.Equal(t, tt.wantDialect, d)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestRebind(t *testing.T) {
	q := `UPDATE blog_posts SET title=?, body=? WHERE id=?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `UPDATE blog_posts SET title=$1, body=$2 WHERE id=$3`, Postgres.rebind(q))
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ada := models.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "h1"}
	require.NoError(t, s.CreateUser(ctx, &ada))
	assert.Equal(t, int64(1), ada.ID)

	bob := models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "h2"}
	require.NoError(t, s.CreateUser(ctx, &bob))

	got, err := s.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada, got)

	got, err = s.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := models.User{Email: "ada@example.com", Name: "Other", PasswordHash: "h3"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), ErrDuplicate)

	users, err := s.UsersByID(ctx, ada.ID, bob.ID, ada.ID, 99)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Bob", users[bob.ID].Name)

	users, err = s.UsersByID(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func seedUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	admin := seedUser(t, s, "admin@example.com")
	other := seedUser(t, s, "other@example.com")

	first := models.Post{AuthorID: admin.ID, Title: "First", Subtitle: "s", Date: "March 01, 2024", Body: "b", ImgURL: "https://x/1.png"}
	second := models.Post{AuthorID: admin.ID, Title: "Second", Subtitle: "s", Date: "March 02, 2024", Body: "b", ImgURL: "https://x/2.png"}
	require.NoError(t, s.CreatePost(ctx, &first))
	require.NoError(t, s.CreatePost(ctx, &second))

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "Second", posts[1].Title)

	dup := first
	dup.ID = 0
	assert.ErrorIs(t, s.CreatePost(ctx, &dup), ErrDuplicate)

	first.Title = "First, revised"
	first.AuthorID = other.ID
	first.Date = "ignored"
	require.NoError(t, s.UpdatePost(ctx, first))

	got, err := s.PostByTitle(ctx, "First, revised")
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.AuthorID)
	assert.Equal(t, "March 01, 2024", got.Date)

	assert.ErrorIs(t, s.UpdatePost(ctx, models.Post{ID: 99, AuthorID: admin.ID, Title: "x"}), ErrNotFound)

	_, err = s.PostByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRequiresExistingAuthor(t *testing.T) {
	s := newTestStore(t)
	p := models.Post{AuthorID: 42, Title: "Orphan", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u"}
	assert.Error(t, s.CreatePost(context.Background(), &p))
}

func TestCommentsAndCascadingDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com")

	keep := models.Post{AuthorID: u.ID, Title: "Keep", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u"}
	drop := models.Post{AuthorID: u.ID, Title: "Drop", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u"}
	require.NoError(t, s.CreatePost(ctx, &keep))
	require.NoError(t, s.CreatePost(ctx, &drop))

	for _, c := range []models.Comment{
		{Text: "one", AuthorID: u.ID, PostID: drop.ID},
		{Text: "two", AuthorID: u.ID, PostID: drop.ID},
		{Text: "kept", AuthorID: u.ID, PostID: keep.ID},
	} {
		require.NoError(t, s.CreateComment(ctx, &c))
	}

	comments, err := s.CommentsForPost(ctx, drop.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Text)

	require.NoError(t, s.DeletePost(ctx, drop.ID))
	comments, err = s.CommentsForPost(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = s.CommentsForPost(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.ErrorIs(t, s.DeletePost(ctx, drop.ID), ErrNotFound)

	bad := models.Comment{Text: "ghost", AuthorID: u.ID, PostID: drop.ID}
	assert.Error(t, s.CreateComment(ctx, &bad))
}

func TestTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.Tx(ctx, func(tx *Store) error {
		u := models.User{Email: "tx@example.com", Name: "Tx", PasswordHash: "x"}
		if err := tx.CreateUser(ctx, &u); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.UserByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com")
	now := time.Now()

	require.NoError(t, s.CreateSession(ctx, "live", u.ID, now.Add(time.Hour)))
	require.NoError(t, s.CreateSession(ctx, "stale", u.ID, now.Add(-time.Hour)))

	uid, exp, err := s.SessionUser(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	n, err := s.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.DeleteUserSessions(ctx, u.ID))
	_, _, err = s.SessionUser(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)
}
