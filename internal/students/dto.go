package students

import "time"

// ListStudentsRequest captures list filters.
type ListStudentsRequest struct {
	BatchID *int64
	Search  *string
	Limit   int
	Offset  int
}

type createStudentRequest struct {
	FullName      string     `json:"full_name" validate:"required"`
	Phone         *string    `json:"phone"`
	Email         *string    `json:"email" validate:"omitempty,email"`
	BatchID       *int64     `json:"batch_id"`
	RollNumber    *string    `json:"roll_number"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Address       *string    `json:"address"`
	ParentName    *string    `json:"parent_name"`
	ParentPhone   *string    `json:"parent_phone"`
	AdmissionDate *time.Time `json:"admission_date"`
	UserID        *int64     `json:"user_id"`
}

type updateStudentRequest struct {
	FullName      *string    `json:"full_name"`
	Phone         *string    `json:"phone"`
	Email         *string    `json:"email" validate:"omitempty,email"`
	BatchID       *int64     `json:"batch_id"`
	RollNumber    *string    `json:"roll_number"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Address       *string    `json:"address"`
	ParentName    *string    `json:"parent_name"`
	ParentPhone   *string    `json:"parent_phone"`
	AdmissionDate *time.Time `json:"admission_date"`
}

type studentResponse struct {
	ID            int64      `json:"id"`
	UserID        *int64     `json:"user_id,omitempty"`
	FullName      string     `json:"full_name"`
	Phone         *string    `json:"phone,omitempty"`
	Email         *string    `json:"email,omitempty"`
	BatchID       *int64     `json:"batch_id,omitempty"`
	RollNumber    *string    `json:"roll_number,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Address       *string    `json:"address,omitempty"`
	ParentName    *string    `json:"parent_name,omitempty"`
	ParentPhone   *string    `json:"parent_phone,omitempty"`
	AdmissionDate *time.Time `json:"admission_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type listStudentsResponse struct {
	Students []studentResponse `json:"students"`
	Total    int               `json:"total"`
}

func toStudentResponse(s Student) studentResponse {
	return studentResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		FullName:      s.FullName,
		Phone:         s.Phone,
		Email:         s.Email,
		BatchID:       s.BatchID,
		RollNumber:    s.RollNumber,
		DateOfBirth:   s.DateOfBirth,
		Address:       s.Address,
		ParentName:    s.ParentName,
		ParentPhone:   s.ParentPhone,
		AdmissionDate: s.AdmissionDate,
		CreatedAt:     s.CreatedAt,
	}
}
