package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/config"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Фейки репозиториев держат состояние в памяти. Кеш - настоящий
// RedisCacheRepository поверх miniredis, чтобы проверять и префиксную
// инвалидацию через SCAN.

type fakeTxManager struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeBranchRepo struct {
	branches map[uint64]entities.Branch
}

func (r *fakeBranchRepo) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBranchRepo) FindProtectedBranch(ctx context.Context) (*entities.Branch, error) {
	for _, b := range r.branches {
		if b.IsProtected {
			out := b
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeUserRepo struct {
	adminRoles map[uint64][]uint64
}

func (r *fakeUserRepo) GetAdminRoleIDsByBranch(ctx context.Context, branchID uint64) ([]uint64, error) {
	return r.adminRoles[branchID], nil
}

type fakeStatusRepo struct {
	statuses map[uint64]entities.WorkflowStatus
	nextID   uint64

	getCalls int
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{statuses: make(map[uint64]entities.WorkflowStatus), nextID: 1}
}

func (r *fakeStatusRepo) add(branchID uint64, nameRu string, sortPos int) uint64 {
	id := r.nextID
	r.nextID++
	r.statuses[id] = entities.WorkflowStatus{
		ID:           id,
		BranchID:     branchID,
		NameUz:       nameRu,
		NameRu:       nameRu,
		NameEn:       nameRu,
		Sort:         sortPos,
		IsActive:     true,
		RecordStatus: constants.RecordStatusOpen,
	}
	return id
}

func (r *fakeStatusRepo) openByBranch(branchID uint64) []entities.WorkflowStatus {
	var list []entities.WorkflowStatus
	for _, st := range r.statuses {
		if st.BranchID == branchID && st.RecordStatus == constants.RecordStatusOpen {
			list = append(list, st)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Sort < list[j].Sort })
	return list
}

func (r *fakeStatusRepo) GetStatuses(ctx context.Context, branchID uint64) ([]entities.WorkflowStatus, error) {
	r.getCalls++
	return r.openByBranch(branchID), nil
}

func (r *fakeStatusRepo) GetStatusesFiltered(ctx context.Context, filter types.Filter) ([]entities.WorkflowStatus, uint64, error) {
	var list []entities.WorkflowStatus
	for _, st := range r.statuses {
		if st.RecordStatus == constants.RecordStatusOpen {
			list = append(list, st)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, uint64(len(list)), nil
}

func (r *fakeStatusRepo) FindStatus(ctx context.Context, id uint64) (*entities.WorkflowStatus, error) {
	st, ok := r.statuses[id]
	if !ok || st.RecordStatus != constants.RecordStatusOpen {
		return nil, apperrors.ErrNotFound
	}
	return &st, nil
}

func (r *fakeStatusRepo) GetOpenStatusIDs(ctx context.Context, branchID uint64) ([]uint64, error) {
	var ids []uint64
	for _, st := range r.openByBranch(branchID) {
		ids = append(ids, st.ID)
	}
	return ids, nil
}

func (r *fakeStatusRepo) GetMaxSort(ctx context.Context, tx pgx.Tx, branchID uint64) (int, error) {
	max := 0
	for _, st := range r.openByBranch(branchID) {
		if st.Sort > max {
			max = st.Sort
		}
	}
	return max, nil
}

func (r *fakeStatusRepo) CreateStatus(ctx context.Context, tx pgx.Tx, status entities.WorkflowStatus) (*entities.WorkflowStatus, error) {
	status.ID = r.nextID
	r.nextID++
	status.RecordStatus = constants.RecordStatusOpen
	r.statuses[status.ID] = status
	return &status, nil
}

func (r *fakeStatusRepo) UpdateStatus(ctx context.Context, id uint64, in dto.UpdateWorkflowStatusDTO) (*entities.WorkflowStatus, error) {
	st, ok := r.statuses[id]
	if !ok || st.RecordStatus != constants.RecordStatusOpen {
		return nil, apperrors.ErrNotFound
	}
	if in.NameUz.Valid {
		st.NameUz = in.NameUz.String
	}
	if in.NameRu.Valid {
		st.NameRu = in.NameRu.String
	}
	if in.NameEn.Valid {
		st.NameEn = in.NameEn.String
	}
	if in.IsActive.Valid {
		st.IsActive = in.IsActive.Bool
	}
	r.statuses[id] = st
	return &st, nil
}

func (r *fakeStatusRepo) ShiftSortRange(ctx context.Context, tx pgx.Tx, branchID uint64, lo, hi, delta int) error {
	for id, st := range r.statuses {
		if st.BranchID == branchID && st.RecordStatus == constants.RecordStatusOpen && st.Sort >= lo && st.Sort <= hi {
			st.Sort += delta
			r.statuses[id] = st
		}
	}
	return nil
}

func (r *fakeStatusRepo) SetSort(ctx context.Context, tx pgx.Tx, id uint64, sortPos int) error {
	st, ok := r.statuses[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	st.Sort = sortPos
	r.statuses[id] = st
	return nil
}

func (r *fakeStatusRepo) SoftDeleteStatus(ctx context.Context, tx pgx.Tx, id uint64) error {
	st, ok := r.statuses[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	st.RecordStatus = constants.RecordStatusDeleted
	r.statuses[id] = st
	return nil
}

type fakePermissionRepo struct {
	records []entities.StatusPermission

	findByRolesCalls      int
	findByRoleStatusCalls int
}

func (r *fakePermissionRepo) FindByRoleAndStatus(ctx context.Context, roleID, statusID uint64) (*entities.StatusPermission, error) {
	r.findByRoleStatusCalls++
	for i := range r.records {
		if r.records[i].RoleID == roleID && r.records[i].StatusID == statusID {
			out := r.records[i]
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakePermissionRepo) FindByRolesAndBranch(ctx context.Context, roleIDs []uint64, branchID uint64) ([]entities.StatusPermission, error) {
	r.findByRolesCalls++
	wanted := make(map[uint64]bool, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = true
	}
	var out []entities.StatusPermission
	for i := range r.records {
		if wanted[r.records[i].RoleID] && r.records[i].BranchID == branchID {
			out = append(out, r.records[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoleID != out[j].RoleID {
			return out[i].RoleID < out[j].RoleID
		}
		return out[i].StatusID < out[j].StatusID
	})
	return out, nil
}

func (r *fakePermissionRepo) DeleteForAssignment(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64) error {
	roles := make(map[uint64]bool, len(roleIDs))
	for _, id := range roleIDs {
		roles[id] = true
	}
	statuses := make(map[uint64]bool, len(statusIDs))
	for _, id := range statusIDs {
		statuses[id] = true
	}
	kept := r.records[:0]
	for _, p := range r.records {
		if p.BranchID == branchID && roles[p.RoleID] && statuses[p.StatusID] {
			continue
		}
		kept = append(kept, p)
	}
	r.records = kept
	return nil
}

func (r *fakePermissionRepo) BulkInsert(ctx context.Context, tx pgx.Tx, branchID uint64, roleIDs, statusIDs []uint64, caps entities.CapabilitySet) ([]entities.StatusPermission, error) {
	var inserted []entities.StatusPermission
	for _, roleID := range roleIDs {
		for _, statusID := range statusIDs {
			p := entities.StatusPermission{
				RoleID:        roleID,
				StatusID:      statusID,
				BranchID:      branchID,
				CapabilitySet: caps,
			}
			r.records = append(r.records, p)
			inserted = append(inserted, p)
		}
	}
	return inserted, nil
}

type fakeTransitionRepo struct {
	edges map[uint64][]uint64
}

func newFakeTransitionRepo() *fakeTransitionRepo {
	return &fakeTransitionRepo{edges: make(map[uint64][]uint64)}
}

func (r *fakeTransitionRepo) ListOutgoing(ctx context.Context, fromStatusID uint64) ([]uint64, error) {
	return append([]uint64{}, r.edges[fromStatusID]...), nil
}

func (r *fakeTransitionRepo) ListAll(ctx context.Context) ([]entities.StatusTransition, error) {
	var out []entities.StatusTransition
	var froms []uint64
	for from := range r.edges {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		for _, to := range r.edges[from] {
			out = append(out, entities.StatusTransition{FromStatusID: from, ToStatusID: to})
		}
	}
	return out, nil
}

func (r *fakeTransitionRepo) DeleteOutgoing(ctx context.Context, tx pgx.Tx, fromStatusID uint64) error {
	delete(r.edges, fromStatusID)
	return nil
}

func (r *fakeTransitionRepo) BulkInsert(ctx context.Context, tx pgx.Tx, fromStatusID uint64, toStatusIDs []uint64) ([]entities.StatusTransition, error) {
	r.edges[fromStatusID] = append([]uint64{}, toStatusIDs...)
	out := make([]entities.StatusTransition, 0, len(toStatusIDs))
	for _, to := range toStatusIDs {
		out = append(out, entities.StatusTransition{FromStatusID: fromStatusID, ToStatusID: to})
	}
	return out, nil
}

func newTestCache(t *testing.T) (repositories.CacheRepositoryInterface, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return repositories.NewRedisCacheRepository(client), mr
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		ListTTL:       time.Hour,
		PermissionTTL: time.Hour,
		ViewableTTL:   5 * time.Minute,
	}
}

// workflowFixture собирает все сервисы на фейках и общем кеше.
type workflowFixture struct {
	statusRepo     *fakeStatusRepo
	branchRepo     *fakeBranchRepo
	userRepo       *fakeUserRepo
	permissionRepo *fakePermissionRepo
	transitionRepo *fakeTransitionRepo
	cache          repositories.CacheRepositoryInterface
	redis          *miniredis.Miniredis

	statusSvc     WorkflowStatusServiceInterface
	permissionSvc StatusPermissionServiceInterface
	transitionSvc StatusTransitionServiceInterface
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	cache, mr := newTestCache(t)
	logger := zap.NewNop()
	cacheCfg := testCacheConfig()
	txManager := &fakeTxManager{}

	f := &workflowFixture{
		statusRepo: newFakeStatusRepo(),
		branchRepo: &fakeBranchRepo{branches: map[uint64]entities.Branch{
			1: {ID: 1, Name: "Головной сервисный центр", ShortName: "ГСЦ", IsProtected: true, IsActive: true},
			2: {ID: 2, Name: "Сервисный центр Худжанд", ShortName: "СЦХ", IsActive: true},
			3: {ID: 3, Name: "Закрытый филиал", ShortName: "ЗФ", IsActive: false},
		}},
		userRepo:       &fakeUserRepo{adminRoles: map[uint64][]uint64{1: {10, 11}, 2: {20}}},
		permissionRepo: &fakePermissionRepo{},
		transitionRepo: newFakeTransitionRepo(),
		cache:          cache,
		redis:          mr,
	}

	f.permissionSvc = NewStatusPermissionService(
		f.permissionRepo, f.statusRepo, f.branchRepo, txManager, cache, cacheCfg, logger,
	)
	f.transitionSvc = NewStatusTransitionService(
		f.transitionRepo, f.statusRepo, txManager, cache, cacheCfg, logger,
	)
	f.statusSvc = NewWorkflowStatusService(
		f.statusRepo, f.branchRepo, f.userRepo, f.permissionSvc, f.transitionSvc, txManager, cache, cacheCfg, logger,
	)
	return f
}

// sortsByBranch возвращает пары (id, sort) открытых статусов филиала по порядку.
func (f *workflowFixture) sortsByBranch(branchID uint64) map[uint64]int {
	out := make(map[uint64]int)
	for _, st := range f.statusRepo.openByBranch(branchID) {
		out[st.ID] = st.Sort
	}
	return out
}
