package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	rows   map[int64]*Notification
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[int64]*Notification), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, n Notification) (int64, error) {
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	m.rows[n.ID] = &n
	return n.ID, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Notification, error) {
	n, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *mockRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]Notification, error) {
	var out []Notification
	for _, n := range m.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, id, userID int64) error {
	n, ok := m.rows[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

var _ Repository = (*mockRepository)(nil)

func TestNotifyDefaultsAndTrims(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	n, err := svc.Notify(context.Background(), Notification{
		UserID:  7,
		Title:   "  Exam tomorrow  ",
		Message: " Bring your ID. ",
		Type:    Type("bogus"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Exam tomorrow", n.Title)
	assert.Equal(t, "Bring your ID.", n.Message)
	assert.Equal(t, TypeGeneral, n.Type)
	assert.False(t, n.IsRead)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	n, err := svc.Notify(ctx, Notification{UserID: 7, Title: "T", Message: "M", Type: TypeGeneral})
	require.NoError(t, err)

	// Another user cannot mark it.
	assert.ErrorIs(t, svc.MarkRead(ctx, n.ID, 8), ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, n.ID, 7))
	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, Notification{UserID: 7, Title: "T", Message: "M", Type: TypeClassReminder})
		require.NoError(t, err)
	}
	_, err := svc.Notify(ctx, Notification{UserID: 8, Title: "T", Message: "M", Type: TypeClassReminder})
	require.NoError(t, err)

	count, err := svc.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	marked, err := svc.MarkAllRead(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 3, marked)

	count, err = svc.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The other user's rows are untouched.
	count, err = svc.CountUnread(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListForUserUnreadOnly(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	first, err := svc.Notify(ctx, Notification{UserID: 7, Title: "A", Message: "M", Type: TypeGeneral})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, Notification{UserID: 7, Title: "B", Message: "M", Type: TypeGeneral})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, first.ID, 7))

	list, err := svc.ListForUser(ctx, 7, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Title)
}
