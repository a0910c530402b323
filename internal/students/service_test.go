package students

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	students map[int64]*Student
	nextID   int64
	lastList ListStudentsRequest
}

func newMockRepository() *mockRepository {
	return &mockRepository{students: make(map[int64]*Student), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, student Student) (int64, error) {
	if student.RollNumber != nil {
		for _, s := range m.students {
			if s.RollNumber != nil && *s.RollNumber == *student.RollNumber {
				return 0, ErrAlreadyExists
			}
		}
	}
	student.ID = m.nextID
	m.nextID++
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	m.students[student.ID] = &student
	return student.ID, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockRepository) GetByUser(ctx context.Context, userID int64) (*Student, error) {
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListStudentsRequest) ([]Student, int, error) {
	m.lastList = req
	var out []Student
	for _, s := range m.students {
		if req.BatchID != nil && (s.BatchID == nil || *s.BatchID != *req.BatchID) {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	s, ok := m.students[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["full_name"]; ok {
		s.FullName = v.(string)
	}
	if v, ok := updates["email"]; ok {
		email := v.(string)
		s.Email = &email
	}
	if v, ok := updates["batch_id"]; ok {
		batch := v.(int64)
		s.BatchID = &batch
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return ErrNotFound
	}
	delete(m.students, id)
	return nil
}

var _ Repository = (*mockRepository)(nil)

func TestCreateNormalizes(t *testing.T) {
	svc := NewService(newMockRepository())
	email := "  Ravi.K@Edudemy.LOCAL "

	created, err := svc.Create(context.Background(), Student{FullName: "  ravi kumar ", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", created.FullName)
	require.NotNil(t, created.Email)
	assert.Equal(t, "ravi.k@edudemy.local", *created.Email)
}

func TestCreateDuplicateRollNumber(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	roll := "B1-042"

	_, err := svc.Create(ctx, Student{FullName: "Ravi", RollNumber: &roll})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Student{FullName: "Asha", RollNumber: &roll})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestListDefaultLimit(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), ListStudentsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastList.Limit)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Ravi Kumar"})
	require.NoError(t, err)

	name := "ravi k"
	updated, err := svc.Update(ctx, created.ID, updateStudentRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", updated.FullName)

	_, err = svc.Update(ctx, 999, updateStudentRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Student{FullName: "Ravi"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
