package repositories

import (
	"context"
	"errors"
	"fmt"

	"repair-system/internal/entities"
	apperrors "repair-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	branchTable  = "branches"
	branchFields = "id, name, short_name, is_protected, is_active, created_at, updated_at"
)

type BranchRepositoryInterface interface {
	FindBranch(ctx context.Context, id uint64) (*entities.Branch, error)
	// FindProtectedBranch возвращает единственный защищённый (дефолтный) филиал.
	FindProtectedBranch(ctx context.Context) (*entities.Branch, error)
}

type BranchRepository struct {
	storage *pgxpool.Pool
}

func NewBranchRepository(storage *pgxpool.Pool) BranchRepositoryInterface {
	return &BranchRepository{storage: storage}
}

func scanBranch(row pgx.Row) (*entities.Branch, error) {
	var b entities.Branch
	err := row.Scan(&b.ID, &b.Name, &b.ShortName, &b.IsProtected, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования branch: %w", err)
	}
	return &b, nil
}

func (r *BranchRepository) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", branchFields, branchTable)
	return scanBranch(r.storage.QueryRow(ctx, query, id))
}

func (r *BranchRepository) FindProtectedBranch(ctx context.Context) (*entities.Branch, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_protected = TRUE LIMIT 1", branchFields, branchTable)
	return scanBranch(r.storage.QueryRow(ctx, query))
}
