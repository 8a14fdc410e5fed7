package dto

import (
	"repair-system/internal/entities"
)

// BulkAssignPermissionsDTO - массовое назначение привилегий:
// кросс-произведение statusIds × roleIds с единым набором флагов.
// Отсутствующий флаг - это false, а не "оставить как было".
type BulkAssignPermissionsDTO struct {
	BranchID     uint64                 `json:"branch_id" validate:"required,min=1"`
	StatusIDs    []uint64               `json:"status_ids" validate:"required,min=1,dive,min=1"`
	RoleIDs      []uint64               `json:"role_ids" validate:"required,min=1,dive,min=1"`
	Capabilities entities.CapabilitySet `json:"capabilities"`
}

type BulkAssignResultDTO struct {
	Count int `json:"count"`
}

type CheckPermissionsDTO struct {
	RoleIDs  []uint64 `json:"role_ids" validate:"omitempty,min=1,dive,min=1"`
	BranchID uint64   `json:"branch_id" validate:"required,min=1"`
	StatusID uint64   `json:"status_id" validate:"required,min=1"`
	Required []string `json:"required" validate:"required,min=1,dive,required"`
	Location string   `json:"location" validate:"omitempty,max=100"`
}

type StatusPermissionDTO struct {
	RoleID   uint64 `json:"role_id"`
	StatusID uint64 `json:"status_id"`
	BranchID uint64 `json:"branch_id"`

	entities.CapabilitySet

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func NewStatusPermissionDTO(p entities.StatusPermission) StatusPermissionDTO {
	res := StatusPermissionDTO{
		RoleID:        p.RoleID,
		StatusID:      p.StatusID,
		BranchID:      p.BranchID,
		CapabilitySet: p.CapabilitySet,
	}
	if p.CreatedAt != nil {
		res.CreatedAt = p.CreatedAt.Format("2006-01-02 15:04:05")
	}
	if p.UpdatedAt != nil {
		res.UpdatedAt = p.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	return res
}
