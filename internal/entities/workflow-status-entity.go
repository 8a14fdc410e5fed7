package entities

import (
	"repair-system/pkg/types"
)

// WorkflowStatus - состояние заказа на ремонт в рамках одного филиала.
// sort - плотная последовательность 1..n среди Open-статусов филиала.
type WorkflowStatus struct {
	ID           uint64 `json:"id"`
	BranchID     uint64 `json:"branch_id"`
	NameUz       string `json:"name_uz"`
	NameRu       string `json:"name_ru"`
	NameEn       string `json:"name_en"`
	Sort         int    `json:"sort"`
	IsActive     bool   `json:"is_active"`
	RecordStatus string `json:"record_status"`
	CreatedBy    uint64 `json:"created_by"`

	types.BaseEntity
}
