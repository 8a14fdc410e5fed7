package services

import (
	"context"
	"testing"

	"repair-system/internal/dto"
	"repair-system/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Сквозной сценарий настройки рабочего процесса филиала:
// цепочка статусов, граф переходов, привилегии, видимость, удаление.
func TestWorkflowLifecycle(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	// 1. Руководитель собирает цепочку; sort назначается по порядку создания
	names := []string{"Новая", "Диагностика", "В ремонте", "Готово", "Выдано"}
	statusIDs := make([]uint64, 0, len(names))
	for _, name := range names {
		created, err := f.statusSvc.CreateStatus(ctx, 100, dto.CreateWorkflowStatusDTO{
			BranchID: ptrUint64(1),
			NameUz:   name, NameRu: name, NameEn: name,
		})
		require.NoError(t, err)
		statusIDs = append(statusIDs, created.ID)
	}
	for i, id := range statusIDs {
		assert.Equal(t, i+1, f.sortsByBranch(1)[id])
	}

	// 2. Граф переходов: линейная цепочка плюс отмена из диагностики
	for i := 0; i < len(statusIDs)-1; i++ {
		_, err := f.transitionSvc.ReplaceOutgoing(ctx, statusIDs[i], dto.ReplaceTransitionsDTO{
			ToStatusIDs: []uint64{statusIDs[i+1]},
		})
		require.NoError(t, err)
	}
	_, err := f.transitionSvc.ReplaceOutgoing(ctx, statusIDs[1], dto.ReplaceTransitionsDTO{
		ToStatusIDs: []uint64{statusIDs[2], statusIDs[0]},
	})
	require.NoError(t, err)

	toIDs, err := f.transitionSvc.ListOutgoing(ctx, statusIDs[1])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{statusIDs[2], statusIDs[0]}, toIDs)

	// Последний статус терминальный
	toIDs, err = f.transitionSvc.ListOutgoing(ctx, statusIDs[4])
	require.NoError(t, err)
	assert.Empty(t, toIDs)

	// 3. Мастеру (роль 7) открываем три рабочих статуса
	_, err = f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID:     1,
		StatusIDs:    statusIDs[:3],
		RoleIDs:      []uint64{7},
		Capabilities: entities.CapabilitySet{CanView: true, CanUpdate: true, CanComment: true},
	})
	require.NoError(t, err)

	viewable, err := f.statusSvc.FindViewable(ctx, []uint64{7}, 1)
	require.NoError(t, err)
	require.Len(t, viewable, 3)
	// Порядок видимых статусов следует sort
	assert.Equal(t, statusIDs[0], viewable[0].ID)
	assert.Equal(t, statusIDs[2], viewable[2].ID)

	// 4. Проверка ворот авторизации на рабочем статусе
	err = f.permissionSvc.CheckPermissions(ctx, []uint64{7}, 1, statusIDs[1], []string{"can_update", "can_comment"}, "ремонт", nil)
	assert.NoError(t, err)
	err = f.permissionSvc.CheckPermissions(ctx, []uint64{7}, 1, statusIDs[3], []string{"can_view"}, "ремонт", nil)
	assert.Error(t, err)

	// 5. Удаление среднего статуса уплотняет цепочку и сбрасывает видимость
	require.NoError(t, f.statusSvc.SoftDeleteStatus(ctx, statusIDs[2]))

	sorts := f.sortsByBranch(1)
	assert.Equal(t, map[uint64]int{
		statusIDs[0]: 1, statusIDs[1]: 2, statusIDs[3]: 3, statusIDs[4]: 4,
	}, sorts)

	viewable, err = f.statusSvc.FindViewable(ctx, []uint64{7}, 1)
	require.NoError(t, err)
	assert.Len(t, viewable, 2)
}
