package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModuleBlobMalformedString(t *testing.T) {
	// A stored value like "not json" must degrade to an empty blob, which
	// denies everything, rather than fail the whole record.
	blob, err := decodeModuleBlob([]byte(`"not json"`))
	assert.ErrorIs(t, err, ErrMalformedPermissionData)
	require.NotNil(t, blob)
	assert.Empty(t, blob)
}

func TestDecodeModuleBlobDoubleEncoded(t *testing.T) {
	blob, err := decodeModuleBlob([]byte(`"{\"category\":{\"view\":true}}"`))
	require.NoError(t, err)
	assert.True(t, blob["category"].View)
}

func TestDecodeModuleBlobNull(t *testing.T) {
	blob, err := decodeModuleBlob([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, blob)

	blob, err = decodeModuleBlob(nil)
	require.NoError(t, err)
	assert.Empty(t, blob)
}

func TestDecodeCompanies(t *testing.T) {
	ids, err := decodeCompanies([]byte(`[1,"2",0,-3]`))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestDecodeCompaniesMalformed(t *testing.T) {
	ids, err := decodeCompanies([]byte(`{"oops":1}`))
	assert.ErrorIs(t, err, ErrMalformedPermissionData)
	assert.Empty(t, ids)
}

func TestDecodeBusinessTypesDropsBadKeys(t *testing.T) {
	m, err := decodeBusinessTypes([]byte(`{"1":[5,6],"zero":[7],"-2":[8]}`))
	require.NoError(t, err)
	assert.Equal(t, map[int64][]int64{1: {5, 6}}, m)
}

func TestDecodeFactoriesPreservesStoredShape(t *testing.T) {
	m, err := decodeFactories([]byte(`{"1":[{"id":7,"btId":5},{"factory_id":7,"business_type_id":5},{"factory_id":0,"business_type_id":4}]}`))
	require.NoError(t, err)
	// Duplicates and invalid pairs survive the decode untouched; only
	// NormalizeFactories collapses them. The stored shape staying visible is
	// what lets the data-quality scan find rows that predate write-time
	// normalization.
	require.Len(t, m[1], 3)
	assert.Equal(t, FactoryPair{FactoryID: 7, BusinessTypeID: 5}, m[1][0])
	assert.NotEqual(t, NormalizeFactories(m), m)
}

func TestEncodeCompanyKeyedStringKeys(t *testing.T) {
	data, err := encodeCompanyKeyed(map[int64][]int64{4: {1, 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"4":[1,2]}`, string(data))
}
