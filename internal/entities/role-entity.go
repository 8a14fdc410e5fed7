package entities

import (
	"repair-system/pkg/types"
)

type Role struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	CanManageWorkflow bool   `json:"can_manage_workflow"`

	types.BaseEntity
}
