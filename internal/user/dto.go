package user

import "encoding/json"

type UsersResponse struct {
	Users  []*User `json:"users"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,max=50"`
}

// CreateRoleRequest keeps permissions raw so unknown capability keys can be rejected explicitly.
type CreateRoleRequest struct {
	Name        string          `json:"name" validate:"required,max=50"`
	Description string          `json:"description" validate:"max=255"`
	Permissions json.RawMessage `json:"permissions"`
}
