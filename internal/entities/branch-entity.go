package entities

import (
	"repair-system/pkg/types"
)

type Branch struct {
	ID          uint64
	Name        string
	ShortName   string
	IsProtected bool
	IsActive    bool

	types.BaseEntity
}
