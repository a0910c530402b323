package students

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Service wraps student record business rules.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, title: cases.Title(language.English)}
}

// Create registers a new student record.
func (s *Service) Create(ctx context.Context, student Student) (*Student, error) {
	student.FullName = s.title.String(strings.TrimSpace(student.FullName))
	if student.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*student.Email))
		student.Email = &normalized
	}
	id, err := s.repo.Create(ctx, student)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get fetches a student by id.
func (s *Service) Get(ctx context.Context, id int64) (*Student, error) {
	return s.repo.Get(ctx, id)
}

// GetByUser fetches the student record linked to an account.
func (s *Service) GetByUser(ctx context.Context, userID int64) (*Student, error) {
	return s.repo.GetByUser(ctx, userID)
}

// List returns student records matching the filters.
func (s *Service) List(ctx context.Context, req ListStudentsRequest) ([]Student, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req updateStudentRequest) (*Student, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = s.title.String(strings.TrimSpace(*req.FullName))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.BatchID != nil {
		updates["batch_id"] = *req.BatchID
	}
	if req.RollNumber != nil {
		updates["roll_number"] = *req.RollNumber
	}
	if req.DateOfBirth != nil {
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ParentName != nil {
		updates["parent_name"] = *req.ParentName
	}
	if req.ParentPhone != nil {
		updates["parent_phone"] = *req.ParentPhone
	}
	if req.AdmissionDate != nil {
		updates["admission_date"] = *req.AdmissionDate
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a student record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
