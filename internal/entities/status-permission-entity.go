package entities

import (
	"repair-system/pkg/types"
)

// CapabilitySet - закрытый набор привилегий роли для одного статуса.
// Именно struct, а не map: добавление привилегии - изменение, которое
// компилятор проверит во всех местах использования.
type CapabilitySet struct {
	CanView                  bool `json:"can_view"`
	CanAdd                   bool `json:"can_add"`
	CanUpdate                bool `json:"can_update"`
	CanDelete                bool `json:"can_delete"`
	CanPaymentAdd            bool `json:"can_payment_add"`
	CanPaymentCancel         bool `json:"can_payment_cancel"`
	CanAssignAdmin           bool `json:"can_assign_admin"`
	CanNotify                bool `json:"can_notify"`
	CanNotifyBot             bool `json:"can_notify_bot"`
	CanChangeActive          bool `json:"can_change_active"`
	CanChangeStatus          bool `json:"can_change_status"`
	CanViewInitialProblems   bool `json:"can_view_initial_problems"`
	CanChangeInitialProblems bool `json:"can_change_initial_problems"`
	CanViewFinalProblems     bool `json:"can_view_final_problems"`
	CanChangeFinalProblems   bool `json:"can_change_final_problems"`
	CanComment               bool `json:"can_comment"`
	CanPickupManage          bool `json:"can_pickup_manage"`
	CanDeliveryManage        bool `json:"can_delivery_manage"`
	CanViewPayments          bool `json:"can_view_payments"`
	CanViewHistory           bool `json:"can_view_history"`
}

// CapabilityNames - канонический порядок колонок привилегий
// (таблица БД, XLSX-экспорт, проверки по имени).
var CapabilityNames = []string{
	"can_view",
	"can_add",
	"can_update",
	"can_delete",
	"can_payment_add",
	"can_payment_cancel",
	"can_assign_admin",
	"can_notify",
	"can_notify_bot",
	"can_change_active",
	"can_change_status",
	"can_view_initial_problems",
	"can_change_initial_problems",
	"can_view_final_problems",
	"can_change_final_problems",
	"can_comment",
	"can_pickup_manage",
	"can_delivery_manage",
	"can_view_payments",
	"can_view_history",
}

// Has возвращает значение привилегии по имени.
// Второй результат - известно ли такое имя вообще.
func (c CapabilitySet) Has(name string) (value bool, known bool) {
	switch name {
	case "can_view":
		return c.CanView, true
	case "can_add":
		return c.CanAdd, true
	case "can_update":
		return c.CanUpdate, true
	case "can_delete":
		return c.CanDelete, true
	case "can_payment_add":
		return c.CanPaymentAdd, true
	case "can_payment_cancel":
		return c.CanPaymentCancel, true
	case "can_assign_admin":
		return c.CanAssignAdmin, true
	case "can_notify":
		return c.CanNotify, true
	case "can_notify_bot":
		return c.CanNotifyBot, true
	case "can_change_active":
		return c.CanChangeActive, true
	case "can_change_status":
		return c.CanChangeStatus, true
	case "can_view_initial_problems":
		return c.CanViewInitialProblems, true
	case "can_change_initial_problems":
		return c.CanChangeInitialProblems, true
	case "can_view_final_problems":
		return c.CanViewFinalProblems, true
	case "can_change_final_problems":
		return c.CanChangeFinalProblems, true
	case "can_comment":
		return c.CanComment, true
	case "can_pickup_manage":
		return c.CanPickupManage, true
	case "can_delivery_manage":
		return c.CanDeliveryManage, true
	case "can_view_payments":
		return c.CanViewPayments, true
	case "can_view_history":
		return c.CanViewHistory, true
	default:
		return false, false
	}
}

// Values возвращает значения привилегий в порядке CapabilityNames.
func (c CapabilitySet) Values() []bool {
	values := make([]bool, 0, len(CapabilityNames))
	for _, name := range CapabilityNames {
		v, _ := c.Has(name)
		values = append(values, v)
	}
	return values
}

// StatusPermission - привилегии одной роли для одного статуса одного филиала.
type StatusPermission struct {
	RoleID   uint64 `json:"role_id"`
	StatusID uint64 `json:"status_id"`
	BranchID uint64 `json:"branch_id"`

	CapabilitySet

	types.BaseEntity
}
