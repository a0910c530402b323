package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the permission catalog and both grant tables. Grant writes
// are single-row upserts keyed by (role, permission) or (user, permission),
// so the resolver never sees more than one verdict per pair.
type Store interface {
	CreatePermission(ctx context.Context, p Permission) (Permission, error)
	GetPermissionByName(ctx context.Context, name string) (Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	FindPermissions(ctx context.Context, resource, action string) ([]Permission, error)

	UpsertRoleGrant(ctx context.Context, role Role, permissionID int64, granted bool) error
	GrantsForRole(ctx context.Context, role Role) (map[string]bool, error)

	UpsertUserGrant(ctx context.Context, userID, permissionID int64, granted bool, grantedBy int64) error
	GrantsForUser(ctx context.Context, userID int64) (map[string]bool, error)
	ListUserGrants(ctx context.Context, userID int64) ([]UserGrant, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type pgStore struct {
	db dbtx
}

// NewStore constructs a PostgreSQL-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool}
}

const uniqueViolation = "23505"

func (s *pgStore) CreatePermission(ctx context.Context, p Permission) (Permission, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO permissions (name, description, resource, action)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.Name, p.Description, p.Resource, p.Action)

	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Permission{}, ErrDuplicateName
		}
		return Permission{}, err
	}
	return p, nil
}

func (s *pgStore) GetPermissionByName(ctx context.Context, name string) (Permission, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, resource, action, created_at
		FROM permissions
		WHERE name = $1
	`, name)

	var p Permission
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

func (s *pgStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, resource, action, created_at
		FROM permissions
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPermissions(rows)
}

func (s *pgStore) FindPermissions(ctx context.Context, resource, action string) ([]Permission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, resource, action, created_at
		FROM permissions
		WHERE resource = $1 AND action = $2
		ORDER BY name
	`, resource, action)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPermissions(rows)
}

func (s *pgStore) UpsertRoleGrant(ctx context.Context, role Role, permissionID int64, granted bool) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO role_grants (role, permission_id, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (role, permission_id)
		DO UPDATE SET granted = EXCLUDED.granted, updated_at = NOW()
	`, string(role), permissionID, granted)
	return err
}

func (s *pgStore) GrantsForRole(ctx context.Context, role Role) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.name, rg.granted
		FROM role_grants rg
		JOIN permissions p ON p.id = rg.permission_id
		WHERE rg.role = $1
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGrantMap(rows)
}

func (s *pgStore) UpsertUserGrant(ctx context.Context, userID, permissionID int64, granted bool, grantedBy int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_grants (user_id, permission_id, granted, granted_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, permission_id)
		DO UPDATE SET granted = EXCLUDED.granted, granted_by = EXCLUDED.granted_by, updated_at = NOW()
	`, userID, permissionID, granted, grantedBy)
	return err
}

func (s *pgStore) GrantsForUser(ctx context.Context, userID int64) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.name, ug.granted
		FROM user_grants ug
		JOIN permissions p ON p.id = ug.permission_id
		WHERE ug.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGrantMap(rows)
}

func (s *pgStore) ListUserGrants(ctx context.Context, userID int64) ([]UserGrant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, permission_id, granted, granted_by, created_at, updated_at
		FROM user_grants
		WHERE user_id = $1
		ORDER BY permission_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []UserGrant
	for rows.Next() {
		var g UserGrant
		if err := rows.Scan(&g.UserID, &g.PermissionID, &g.Granted, &g.GrantedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func scanGrantMap(rows pgx.Rows) (map[string]bool, error) {
	grants := make(map[string]bool)
	for rows.Next() {
		var name string
		var granted bool
		if err := rows.Scan(&name, &granted); err != nil {
			return nil, err
		}
		grants[name] = granted
	}
	return grants, rows.Err()
}

var _ Store = (*pgStore)(nil)
