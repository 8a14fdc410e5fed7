package constants

import (
	"fmt"
	"sort"
	"strings"
)

// Статусы записей (soft-delete)
const (
	RecordStatusOpen    = "Open"
	RecordStatusDeleted = "Deleted"
)

// Ключи кеша движка статусов. Каждый компонент пишет только свои ключи:
// реестр статусов - wf:status*, граф переходов - wf:transitions*,
// матрица привилегий - wf:perm*.
const (
	cacheKeyStatus           = "wf:status:%d"
	cacheKeyStatusesByBranch = "wf:statuses:branch:%d"
	cacheKeyViewable         = "wf:viewable:branch:%d:roles:%s"
	cacheKeyTransitions      = "wf:transitions:from:%d"
	cacheKeyPermRoleStatus   = "wf:perm:role:%d:status:%d"
	cacheKeyPermsRoleBranch  = "wf:perms:role:%d:branch:%d"
)

// Маркер отрицательного кеша: запись отсутствует, но мы это уже выяснили.
const CacheNullMarker = "null"

func CacheKeyStatus(statusID uint64) string {
	return fmt.Sprintf(cacheKeyStatus, statusID)
}

func CacheKeyStatusesByBranch(branchID uint64) string {
	return fmt.Sprintf(cacheKeyStatusesByBranch, branchID)
}

// CacheKeyViewable строит ключ видимых статусов для набора ролей.
// Роли сортируются, чтобы один и тот же набор всегда давал один ключ.
func CacheKeyViewable(branchID uint64, roleIDs []uint64) string {
	sorted := make([]uint64, len(roleIDs))
	copy(sorted, roleIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf(cacheKeyViewable, branchID, strings.Join(parts, ","))
}

// CacheKeyViewablePrefix - префикс для инвалидации всех наборов ролей филиала разом.
func CacheKeyViewablePrefix(branchID uint64) string {
	return fmt.Sprintf("wf:viewable:branch:%d:", branchID)
}

func CacheKeyTransitions(fromStatusID uint64) string {
	return fmt.Sprintf(cacheKeyTransitions, fromStatusID)
}

func CacheKeyPermRoleStatus(roleID, statusID uint64) string {
	return fmt.Sprintf(cacheKeyPermRoleStatus, roleID, statusID)
}

func CacheKeyPermsRoleBranch(roleID, branchID uint64) string {
	return fmt.Sprintf(cacheKeyPermsRoleBranch, roleID, branchID)
}
