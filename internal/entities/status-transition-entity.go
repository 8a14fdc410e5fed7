package entities

import "time"

// StatusTransition - разрешённый переход между статусами одного филиала.
// Составной естественный ключ (from_status_id, to_status_id).
type StatusTransition struct {
	FromStatusID uint64     `json:"from_status_id"`
	ToStatusID   uint64     `json:"to_status_id"`
	CreatedAt    *time.Time `json:"created_at"`
}
