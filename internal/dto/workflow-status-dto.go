package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateWorkflowStatusDTO struct {
	// BranchID можно не указывать: тогда статус попадёт в защищённый филиал.
	BranchID *uint64 `json:"branch_id" validate:"omitempty,min=1"`
	NameUz   string  `json:"name_uz" validate:"required,max=100,status_name"`
	NameRu   string  `json:"name_ru" validate:"required,max=100,status_name"`
	NameEn   string  `json:"name_en" validate:"required,max=100,status_name"`
	IsActive *bool   `json:"is_active" validate:"omitempty"`
}

type UpdateWorkflowStatusDTO struct {
	NameUz   null.String `json:"name_uz" validate:"omitempty"`
	NameRu   null.String `json:"name_ru" validate:"omitempty"`
	NameEn   null.String `json:"name_en" validate:"omitempty"`
	IsActive null.Bool   `json:"is_active" validate:"omitempty"`
}

type UpdateStatusSortDTO struct {
	Sort int `json:"sort" validate:"required,min=1"`
}

type WorkflowStatusDTO struct {
	ID           uint64 `json:"id"`
	BranchID     uint64 `json:"branch_id"`
	NameUz       string `json:"name_uz"`
	NameRu       string `json:"name_ru"`
	NameEn       string `json:"name_en"`
	Sort         int    `json:"sort"`
	IsActive     bool   `json:"is_active"`
	RecordStatus string `json:"record_status"`
	CreatedBy    uint64 `json:"created_by"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
