package entities

import (
	"repair-system/pkg/types"
)

type User struct {
	ID           uint64 `json:"id"`
	Fio          string `json:"fio"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	BranchID     uint64 `json:"branch_id"`
	IsAdmin      bool   `json:"is_admin"`

	RoleIDs []uint64 `json:"role_ids,omitempty"`

	types.BaseEntity
}
