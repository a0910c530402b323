package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for student records.
type Repository interface {
	Create(ctx context.Context, student Student) (int64, error)
	Get(ctx context.Context, id int64) (*Student, error)
	GetByUser(ctx context.Context, userID int64) (*Student, error)
	List(ctx context.Context, req ListStudentsRequest) ([]Student, int, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const studentColumns = `id, user_id, full_name, phone, email, batch_id, roll_number, date_of_birth, address, parent_name, parent_phone, admission_date, created_at, updated_at`

func (r *repository) Create(ctx context.Context, student Student) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO students (user_id, full_name, phone, email, batch_id, roll_number, date_of_birth, address, parent_name, parent_phone, admission_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, student.UserID, student.FullName, student.Phone, student.Email, student.BatchID,
		student.RollNumber, student.DateOfBirth, student.Address, student.ParentName,
		student.ParentPhone, student.AdmissionDate).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Student, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns), id)
	return scanStudent(row)
}

func (r *repository) GetByUser(ctx context.Context, userID int64) (*Student, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM students WHERE user_id = $1`, studentColumns), userID)
	return scanStudent(row)
}

func (r *repository) List(ctx context.Context, req ListStudentsRequest) ([]Student, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.BatchID != nil {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", argPos))
		args = append(args, *req.BatchID)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR roll_number ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		studentColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Student
	for rows.Next() {
		student, err := scanStudentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *student)
	}
	return list, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE students SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"full_name", "phone", "email", "batch_id", "roll_number", "date_of_birth", "address", "parent_name", "parent_phone", "admission_date"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (*Student, error) {
	student, err := scanStudentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

func scanStudentRow(row pgx.Row) (*Student, error) {
	var s Student
	var userID, batchID pgtype.Int8
	var phone, email, rollNumber, address, parentName, parentPhone pgtype.Text
	var dateOfBirth, admissionDate pgtype.Timestamptz
	var createdAt, updatedAt pgtype.Timestamptz

	if err := row.Scan(&s.ID, &userID, &s.FullName, &phone, &email, &batchID, &rollNumber,
		&dateOfBirth, &address, &parentName, &parentPhone, &admissionDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if userID.Valid {
		v := userID.Int64
		s.UserID = &v
	}
	if batchID.Valid {
		v := batchID.Int64
		s.BatchID = &v
	}
	if phone.Valid {
		s.Phone = &phone.String
	}
	if email.Valid {
		s.Email = &email.String
	}
	if rollNumber.Valid {
		s.RollNumber = &rollNumber.String
	}
	if address.Valid {
		s.Address = &address.String
	}
	if parentName.Valid {
		s.ParentName = &parentName.String
	}
	if parentPhone.Valid {
		s.ParentPhone = &parentPhone.String
	}
	if dateOfBirth.Valid {
		t := dateOfBirth.Time
		s.DateOfBirth = &t
	}
	if admissionDate.Valid {
		t := admissionDate.Time
		s.AdmissionDate = &t
	}
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return &s, nil
}

var _ Repository = (*repository)(nil)
