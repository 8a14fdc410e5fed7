package constants

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyViewable_OrderIndependent(t *testing.T) {
	// Один и тот же набор ролей в любом порядке даёт один ключ
	a := CacheKeyViewable(1, []uint64{7, 5, 11})
	b := CacheKeyViewable(1, []uint64{11, 7, 5})
	assert.Equal(t, a, b)
	assert.Equal(t, "wf:viewable:branch:1:roles:5,7,11", a)
}

func TestCacheKeyViewable_DoesNotMutateInput(t *testing.T) {
	roleIDs := []uint64{9, 3}
	CacheKeyViewable(1, roleIDs)
	assert.Equal(t, []uint64{9, 3}, roleIDs)
}

func TestCacheKeyViewablePrefix_CoversAllRoleSets(t *testing.T) {
	key := CacheKeyViewable(4, []uint64{5})
	assert.True(t, strings.HasPrefix(key, CacheKeyViewablePrefix(4)))

	// Префикс филиала 4 не задевает филиал 40
	other := CacheKeyViewable(40, []uint64{5})
	assert.False(t, strings.HasPrefix(other, CacheKeyViewablePrefix(4)))
}
