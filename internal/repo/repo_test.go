package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneps/internal/domain"
	"oneps/internal/repo"
	"oneps/internal/testutil"
	"oneps/pkg/utils"
)

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	return repo.NewStore(testutil.NewDB(t))
}

func seedUser(t *testing.T, s *repo.Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: utils.NewID(), Email: email, Name: email[:1], Phone: "010", PasswordHash: "x", Role: "user"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, s *repo.Store, userID string) *domain.Post {
	t.Helper()
	p := &domain.Post{ID: utils.NewID(), UserID: userID, ImageURL: "https://cdn/x.jpg", PublicID: "1PS_uploads/x", PostText: "hi"}
	require.NoError(t, s.Posts().Create(context.Background(), p))
	return p
}

func countLikes(t *testing.T, s *repo.Store, postID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(&domain.Like{}).Where("ps_post_id = ?", postID).Count(&n).Error)
	return n
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice@example.com")

	err := s.Users().Create(ctx, &domain.User{ID: utils.NewID(), Email: "alice@example.com", Name: "a2", Phone: "1", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepo_FindAndList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "alice@example.com")
	seedUser(t, s, "bob@example.com")

	got, err := s.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.Users().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, total, err := s.Users().List(ctx, domain.UserFilter{Q: "bob", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].Email)
}

func TestUserRepo_SetRole(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedUser(t, s, "Admin@Example.com")

	n, err := s.Users().SetRole(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// already admin: nothing to change
	n, err = s.Users().SetRole(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLikeRepo_Toggle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")
	p := seedPost(t, s, u.ID)

	for i := 1; i <= 5; i++ {
		liked, count, err := s.Likes().Toggle(ctx, u.ID, p.ID)
		require.NoError(t, err)
		wantLiked := i%2 == 1
		assert.Equal(t, wantLiked, liked, "call %d", i)
		assert.Equal(t, countLikes(t, s, p.ID), count, "call %d", i)
		assert.LessOrEqual(t, countLikes(t, s, p.ID), int64(1))
	}
}

func TestLikeRepo_ToggleMissingPost(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")

	_, _, err := s.Likes().Toggle(ctx, u.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := s.Likes().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeRepo_ToggleFloorsCounter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")
	p := seedPost(t, s, u.ID)

	_, _, err := s.Likes().Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)
	// simulate a drifted counter
	require.NoError(t, s.DB().Model(&domain.Post{}).Where("id = ?", p.ID).UpdateColumn("likes", 0).Error)

	liked, count, err := s.Likes().Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)
}

func TestLikeRepo_DuplicateInsertIsRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")
	p := seedPost(t, s, u.ID)

	_, _, err := s.Likes().Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)
	err = s.DB().Create(&domain.Like{ID: utils.NewID(), UserID: u.ID, PsPostID: p.ID}).Error
	assert.Error(t, err)
	assert.Equal(t, int64(1), countLikes(t, s, p.ID))
}

func TestPostRepo_RecountAndCascade(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	p1 := seedPost(t, s, alice.ID)
	p2 := seedPost(t, s, alice.ID)

	for _, uid := range []string{alice.ID, bob.ID} {
		_, _, err := s.Likes().Toggle(ctx, uid, p1.ID)
		require.NoError(t, err)
	}
	require.NoError(t, s.Likes().DeleteByUser(ctx, bob.ID))
	require.NoError(t, s.Posts().RecountLikes(ctx, []string{p1.ID}))

	got, err := s.Posts().FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Likes)

	deleted, err := s.Posts().DeleteByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)
	_, err = s.Posts().FindByID(ctx, p2.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLikeRepo_ListJoinsNames(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")
	p := seedPost(t, s, u.ID)
	_, _, err := s.Likes().Toggle(ctx, u.ID, p.ID)
	require.NoError(t, err)

	rows, total, err := s.Likes().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].UserName)
	assert.Equal(t, "hi", rows[0].PostText)
	assert.Equal(t, p.ID, rows[0].PsPostID)
}

func TestStore_TxRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")

	err := s.Tx(ctx, func(tx domain.Store) error {
		if err := tx.Users().Delete(ctx, u.ID); err != nil {
			return err
		}
		return domain.ErrNotFound
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Users().FindByID(ctx, u.ID)
	assert.NoError(t, err)
}

func TestWrites_RejectMissingUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice@example.com")
	p := seedPost(t, s, u.ID)

	_, _, err := s.Likes().Toggle(ctx, "ghost", p.ID)
	assert.ErrorIs(t, err, domain.ErrUserGone)
	assert.Zero(t, countLikes(t, s, p.ID))

	err = s.Posts().Create(ctx, &domain.Post{ID: utils.NewID(), UserID: "ghost", ImageURL: "https://cdn/y.jpg", PublicID: "1PS_uploads/y", PostText: "x"})
	assert.ErrorIs(t, err, domain.ErrUserGone)
	n, err := s.Posts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
