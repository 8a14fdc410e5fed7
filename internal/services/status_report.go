package services

import (
	"context"
	"fmt"

	"repair-system/internal/repositories"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"repair-system/internal/entities"
)

type StatusReportServiceInterface interface {
	ExportPermissionMatrix(ctx context.Context, branchID uint64) (*excelize.File, error)
}

type StatusReportService struct {
	statusRepo     repositories.WorkflowStatusRepositoryInterface
	roleRepo       repositories.RoleRepositoryInterface
	permissionRepo repositories.StatusPermissionRepositoryInterface
	logger         *zap.Logger
}

func NewStatusReportService(
	statusRepo repositories.WorkflowStatusRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	permissionRepo repositories.StatusPermissionRepositoryInterface,
	logger *zap.Logger,
) StatusReportServiceInterface {
	return &StatusReportService{
		statusRepo:     statusRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		logger:         logger,
	}
}

// ExportPermissionMatrix выгружает матрицу привилегий филиала:
// строка - пара (роль, статус), колонки - все привилегии.
func (s *StatusReportService) ExportPermissionMatrix(ctx context.Context, branchID uint64) (*excelize.File, error) {
	statuses, err := s.statusRepo.GetStatuses(ctx, branchID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.GetRoles(ctx)
	if err != nil {
		return nil, err
	}

	roleIDs := make([]uint64, 0, len(roles))
	roleNames := make(map[uint64]string, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
		roleNames[role.ID] = role.Name
	}
	statusNames := make(map[uint64]string, len(statuses))
	for _, st := range statuses {
		statusNames[st.ID] = st.NameRu
	}

	permissions, err := s.permissionRepo.FindByRolesAndBranch(ctx, roleIDs, branchID)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	header := []interface{}{"Роль", "Статус"}
	for _, name := range entities.CapabilityNames {
		header = append(header, name)
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовка отчёта: %w", err)
	}

	rowNum := 2
	for i := range permissions {
		p := permissions[i]
		row := []interface{}{roleNames[p.RoleID], statusNames[p.StatusID]}
		for _, v := range p.Values() {
			if v {
				row = append(row, "да")
			} else {
				row = append(row, "нет")
			}
		}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки отчёта: %w", err)
		}
		rowNum++
	}

	s.logger.Debug("StatusReportService: Матрица привилегий выгружена",
		zap.Uint64("branchID", branchID), zap.Int("rows", rowNum-2))
	return file, nil
}
