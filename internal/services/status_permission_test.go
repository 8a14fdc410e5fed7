package services

import (
	"context"
	"net/http"
	"testing"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkAssign_CrossProduct(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая", "Диагностика", "Готово")

	res, err := f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID:     1,
		StatusIDs:    []uint64{ids[0], ids[1]},
		RoleIDs:      []uint64{5, 6},
		Capabilities: entities.CapabilitySet{CanView: true, CanComment: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	assert.Len(t, f.permissionRepo.records, 4)
	for _, p := range f.permissionRepo.records {
		assert.True(t, p.CanView)
		assert.True(t, p.CanComment)
		assert.False(t, p.CanDelete)
	}
}

func TestBulkAssign_ReplacesNotMerges(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	_, err := f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID:     1,
		StatusIDs:    []uint64{ids[0]},
		RoleIDs:      []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true, CanUpdate: true, CanDelete: true},
	})
	require.NoError(t, err)

	// Повторное назначение тех же пар с меньшим набором: старые флаги
	// не сохраняются, непереданный - запрещён.
	_, err = f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID:     1,
		StatusIDs:    []uint64{ids[0]},
		RoleIDs:      []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true},
	})
	require.NoError(t, err)

	require.Len(t, f.permissionRepo.records, 1)
	p := f.permissionRepo.records[0]
	assert.True(t, p.CanView)
	assert.False(t, p.CanUpdate)
	assert.False(t, p.CanDelete)
}

func TestBulkAssign_UntouchedPairsSurvive(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая", "Диагностика")

	_, err := f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID: 1, StatusIDs: []uint64{ids[0], ids[1]}, RoleIDs: []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true},
	})
	require.NoError(t, err)

	// Переназначаем только первый статус: запись второго остаётся нетронутой
	_, err = f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID: 1, StatusIDs: []uint64{ids[0]}, RoleIDs: []uint64{5},
		Capabilities: entities.CapabilitySet{CanUpdate: true},
	})
	require.NoError(t, err)

	require.Len(t, f.permissionRepo.records, 2)
	byStatus := make(map[uint64]entities.StatusPermission)
	for _, p := range f.permissionRepo.records {
		byStatus[p.StatusID] = p
	}
	assert.False(t, byStatus[ids[0]].CanView)
	assert.True(t, byStatus[ids[0]].CanUpdate)
	assert.True(t, byStatus[ids[1]].CanView)
}

func TestBulkAssign_ForeignStatusRejected(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	seedChain(f, 1, "Новая")
	foreign := seedChain(f, 2, "Чужой")

	_, err := f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID: 1, StatusIDs: []uint64{foreign[0]}, RoleIDs: []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true},
	})
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
	// Ничего не записано
	assert.Empty(t, f.permissionRepo.records)
}

func TestBulkAssign_DeletedStatusRejected(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая", "Диагностика")
	require.NoError(t, f.statusSvc.SoftDeleteStatus(ctx, ids[1]))

	_, err := f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID: 1, StatusIDs: []uint64{ids[1]}, RoleIDs: []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
}

func TestCheckPermissions_AllRequiredPresent(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 5, StatusID: ids[0], BranchID: 1,
			CapabilitySet: entities.CapabilitySet{CanView: true, CanComment: true}},
	}

	err := f.permissionSvc.CheckPermissions(ctx, []uint64{5}, 1, ids[0], []string{"can_view", "can_comment"}, "заказ", nil)
	assert.NoError(t, err)
}

func TestCheckPermissions_NoRecordForbidden(t *testing.T) {
	f := newWorkflowFixture(t)
	ids := seedChain(f, 1, "Новая")

	err := f.permissionSvc.CheckPermissions(context.Background(), []uint64{5}, 1, ids[0], []string{"can_view"}, "", nil)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestCheckPermissions_FlagsNotMergedAcrossRoles(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	// Роль 5 умеет смотреть, роль 6 - комментировать. Требование обоих флагов
	// разом не выполняется: проверка идёт по одной найденной записи, флаги
	// разных ролей не объединяются.
	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
		{RoleID: 6, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanComment: true}},
	}

	err := f.permissionSvc.CheckPermissions(ctx, []uint64{5, 6}, 1, ids[0], []string{"can_view", "can_comment"}, "", nil)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// Та же пара ролей, но требуется только can_view - проходит по записи роли 5
	err = f.permissionSvc.CheckPermissions(ctx, []uint64{5, 6}, 1, ids[0], []string{"can_view"}, "", nil)
	assert.NoError(t, err)
}

func TestCheckPermissions_UnknownCapability(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")
	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
	}

	err := f.permissionSvc.CheckPermissions(ctx, []uint64{5}, 1, ids[0], []string{"can_fly"}, "", nil)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCheckPermissions_UsesPreloadedRecords(t *testing.T) {
	f := newWorkflowFixture(t)
	ids := seedChain(f, 1, "Новая")

	preloaded := []entities.StatusPermission{
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
	}
	err := f.permissionSvc.CheckPermissions(context.Background(), []uint64{5}, 1, ids[0], []string{"can_view"}, "", preloaded)
	assert.NoError(t, err)
	// В БД не ходили
	assert.Zero(t, f.permissionRepo.findByRolesCalls)
}

func TestLookupByRoleAndStatus_NegativeCaching(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	p, err := f.permissionSvc.LookupByRoleAndStatus(ctx, 5, 77)
	require.NoError(t, err)
	assert.Nil(t, p)

	// Отсутствие записи закешировано: повторный промах в БД не идёт
	p, err = f.permissionSvc.LookupByRoleAndStatus(ctx, 5, 77)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, f.permissionRepo.findByRoleStatusCalls)

	val, errGet := f.redis.Get(constants.CacheKeyPermRoleStatus(5, 77))
	require.NoError(t, errGet)
	assert.Equal(t, constants.CacheNullMarker, val)
}

func TestLookupByRolesAndBranch_CachesPerRole(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
	}

	first, err := f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{5, 6}, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Обе роли закешированы, в том числе роль 6 с пустым срезом
	second, err := f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{5, 6}, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.permissionRepo.findByRolesCalls)
}

func TestLookupByRolesAndBranch_OrderedByRole(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	// В хранилище запись роли 6 лежит первой, на входе роли тоже перепутаны -
	// результат всё равно отсортирован по role_id
	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 6, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanComment: true}},
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
	}

	recs, err := f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{6, 5}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(5), recs[0].RoleID)
	assert.Equal(t, uint64(6), recs[1].RoleID)

	// Частично прогретый кеш порядок не меняет: роль 6 уже в кеше, роль 5 нет
	f.redis.FlushAll()
	_, err = f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{6}, 1)
	require.NoError(t, err)
	recs, err = f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{6, 5}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(5), recs[0].RoleID)
	assert.Equal(t, uint64(6), recs[1].RoleID)
}

func TestCheckPermissions_StableWinnerAcrossRoles(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	// Роль 5 может смотреть, роль 6 - нет. Выигрывать всегда должна запись
	// с наименьшим role_id, а не та, что первой пришла из кеша или БД.
	f.permissionRepo.records = []entities.StatusPermission{
		{RoleID: 6, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{}},
		{RoleID: 5, StatusID: ids[0], BranchID: 1, CapabilitySet: entities.CapabilitySet{CanView: true}},
	}

	for i := 0; i < 40; i++ {
		f.redis.FlushAll()
		err := f.permissionSvc.CheckPermissions(ctx, []uint64{6, 5}, 1, ids[0], []string{"can_view"}, "", nil)
		require.NoError(t, err, "холодный кеш, итерация %d", i)
	}

	// Прогретый кеш роли 6 ответ не меняет
	f.redis.FlushAll()
	_, err := f.permissionSvc.LookupByRolesAndBranch(ctx, []uint64{6}, 1)
	require.NoError(t, err)
	err = f.permissionSvc.CheckPermissions(ctx, []uint64{5, 6}, 1, ids[0], []string{"can_view"}, "", nil)
	assert.NoError(t, err)

	// Флаг, которого нет у победившей роли 5, стабильно запрещён
	err = f.permissionSvc.CheckPermissions(ctx, []uint64{5, 6}, 1, ids[0], []string{"can_comment"}, "", nil)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestBulkAssign_RefreshesPointCacheEntries(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	ids := seedChain(f, 1, "Новая")

	// Прогреваем отрицательный кеш
	_, err := f.permissionSvc.LookupByRoleAndStatus(ctx, 5, ids[0])
	require.NoError(t, err)

	_, err = f.permissionSvc.BulkAssign(ctx, dto.BulkAssignPermissionsDTO{
		BranchID: 1, StatusIDs: []uint64{ids[0]}, RoleIDs: []uint64{5},
		Capabilities: entities.CapabilitySet{CanView: true},
	})
	require.NoError(t, err)

	// Точечный ключ перезаписан свежей записью, маркер "null" ушёл
	p, err := f.permissionSvc.LookupByRoleAndStatus(ctx, 5, ids[0])
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.CanView)
	assert.Equal(t, 1, f.permissionRepo.findByRoleStatusCalls)
}
