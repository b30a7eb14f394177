package authz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryPairUnmarshalCanonical(t *testing.T) {
	var p FactoryPair
	require.NoError(t, json.Unmarshal([]byte(`{"factory_id":7,"business_type_id":5}`), &p))
	assert.Equal(t, FactoryPair{FactoryID: 7, BusinessTypeID: 5}, p)
}

func TestFactoryPairUnmarshalLegacy(t *testing.T) {
	var p FactoryPair
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"btId":5}`), &p))
	assert.Equal(t, FactoryPair{FactoryID: 7, BusinessTypeID: 5}, p)
}

func TestFactoryPairUnmarshalStringIDs(t *testing.T) {
	var p FactoryPair
	require.NoError(t, json.Unmarshal([]byte(`{"factory_id":"7","business_type_id":"5"}`), &p))
	assert.Equal(t, FactoryPair{FactoryID: 7, BusinessTypeID: 5}, p)
}

func TestNormalizeFactoriesDedupesLegacyAndCanonical(t *testing.T) {
	var pairs []FactoryPair
	require.NoError(t, json.Unmarshal(
		[]byte(`[{"id":7,"btId":5},{"factory_id":7,"business_type_id":5}]`), &pairs))

	out := NormalizeFactories(map[int64][]FactoryPair{1: pairs})
	require.Len(t, out[1], 1)
	assert.Equal(t, FactoryPair{FactoryID: 7, BusinessTypeID: 5}, out[1][0])
}

func TestNormalizeFactoriesDropsInvalid(t *testing.T) {
	out := NormalizeFactories(map[int64][]FactoryPair{
		1: {
			{FactoryID: 7, BusinessTypeID: 5},
			{FactoryID: 0, BusinessTypeID: 5},
			{FactoryID: 9, BusinessTypeID: 0},
		},
	})
	require.Len(t, out[1], 1)
	assert.Equal(t, int64(7), out[1][0].FactoryID)
}

func TestNormalizeFactoriesNilInput(t *testing.T) {
	out := NormalizeFactories(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestGrantsReadsModuleBlob(t *testing.T) {
	set := PermissionSet{
		Modules: map[Module]ModuleBlob{
			ModuleProduct: {
				"category": {View: true, Create: true},
			},
		},
	}
	assert.True(t, set.Grants(ModuleProduct, "category", ActionView))
	assert.True(t, set.Grants(ModuleProduct, "category", ActionCreate))
	assert.False(t, set.Grants(ModuleProduct, "category", ActionDelete))
	assert.False(t, set.Grants(ModuleProduct, "product", ActionView))
	assert.False(t, set.Grants(ModuleBooking, "booking", ActionView))
}

func TestFlexIDTolerance(t *testing.T) {
	var ids []flexID
	require.NoError(t, json.Unmarshal([]byte(`[1,"2","junk",3]`), &ids))
	require.Len(t, ids, 4)
	assert.Equal(t, flexID(1), ids[0])
	assert.Equal(t, flexID(2), ids[1])
	assert.Equal(t, flexID(0), ids[2])
	assert.Equal(t, flexID(3), ids[3])
}
