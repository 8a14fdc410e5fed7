package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitySet_EveryNameKnown(t *testing.T) {
	var c CapabilitySet
	for _, name := range CapabilityNames {
		_, known := c.Has(name)
		assert.True(t, known, name)
	}
}

func TestCapabilitySet_UnknownName(t *testing.T) {
	c := CapabilitySet{CanView: true}
	value, known := c.Has("can_teleport")
	assert.False(t, known)
	assert.False(t, value)
}

func TestCapabilitySet_ValuesFollowNameOrder(t *testing.T) {
	c := CapabilitySet{CanView: true, CanViewHistory: true}
	values := c.Values()
	require.Len(t, values, len(CapabilityNames))
	assert.True(t, values[0])
	assert.True(t, values[len(values)-1])
	for _, v := range values[1 : len(values)-1] {
		assert.False(t, v)
	}
}

func TestCapabilitySet_JSONNamesMatchCanonical(t *testing.T) {
	// json-теги структуры и канонический список имён - один словарь
	payload, err := json.Marshal(CapabilitySet{})
	require.NoError(t, err)

	var asMap map[string]bool
	require.NoError(t, json.Unmarshal(payload, &asMap))
	require.Len(t, asMap, len(CapabilityNames))
	for _, name := range CapabilityNames {
		_, ok := asMap[name]
		assert.True(t, ok, name)
	}
}
