package authz

import "time"

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
	Description string `json:"description"`
}

type setRoleGrantRequest struct {
	Role           string `json:"role" validate:"required"`
	PermissionName string `json:"permission_name" validate:"required"`
	Granted        *bool  `json:"granted" validate:"required"`
}

type setUserGrantRequest struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	PermissionName string `json:"permission_name" validate:"required"`
	Granted        *bool  `json:"granted" validate:"required"`
}

type permissionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type userGrantResponse struct {
	UserID       int64     `json:"user_id"`
	PermissionID int64     `json:"permission_id"`
	Granted      bool      `json:"granted"`
	GrantedBy    int64     `json:"granted_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPermissionResponse(p Permission) permissionResponse {
	return permissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Resource:    p.Resource,
		Action:      p.Action,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}
