package dto

// ReplaceTransitionsDTO - полный новый набор исходящих переходов.
// Пустой список легален: статус становится терминальным.
type ReplaceTransitionsDTO struct {
	ToStatusIDs []uint64 `json:"to_status_ids" validate:"omitempty,dive,min=1"`
}

type StatusTransitionDTO struct {
	FromStatusID uint64 `json:"from_status_id"`
	ToStatusID   uint64 `json:"to_status_id"`
	CreatedAt    string `json:"created_at"`
}
