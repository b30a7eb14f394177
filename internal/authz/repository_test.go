package authz

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow plays back one stored permission_sets row through the scan helpers.
type fakeRow struct {
	values []any
}

func (f fakeRow) Scan(dest ...any) error {
	if len(dest) != len(f.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(f.values))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = f.values[i].(int64)
		case *[]byte:
			if s, ok := f.values[i].(string); ok {
				*v = []byte(s)
			}
		case *pgtype.Int8:
		case *pgtype.Timestamptz:
		default:
			return fmt.Errorf("scan: unexpected destination %T", d)
		}
	}
	return nil
}

// storedRow lays out the column values in select order: id, user_id, role_id,
// companies, business_types, factories, one blob per module, timestamps.
func storedRow(factoriesJSON string, moduleJSON map[Module]string) fakeRow {
	values := []any{int64(1), int64(5), nil, `[1]`, `{}`, factoriesJSON}
	for _, m := range moduleColumns {
		if blob, ok := moduleJSON[m]; ok {
			values = append(values, blob)
		} else {
			values = append(values, nil)
		}
	}
	values = append(values, nil, nil)
	return fakeRow{values: values}
}

const legacyFactoriesJSON = `{"1":[{"id":7,"btId":5},{"factory_id":7,"business_type_id":5},{"factory_id":0,"business_type_id":3}]}`

func TestScanSetNormalizesFactories(t *testing.T) {
	r := &Repository{}

	set, err := r.scanSet(storedRow(legacyFactoriesJSON, nil))
	require.NoError(t, err)
	assert.Equal(t, map[int64][]FactoryPair{1: {{FactoryID: 7, BusinessTypeID: 5}}}, set.Factories)
	assert.Equal(t, []int64{1}, set.Companies)
}

func TestScanSetRawKeepsStoredFactories(t *testing.T) {
	r := &Repository{}

	set, err := r.scanSetRaw(storedRow(legacyFactoriesJSON, nil))
	require.NoError(t, err)
	require.Len(t, set.Factories[1], 3)

	// The stale signal the permission scan relies on: re-normalizing a raw
	// row that predates write-time normalization produces a different value.
	assert.NotEqual(t, NormalizeFactories(set.Factories), set.Factories)
}

func TestScanSetRawCleanRowIsStable(t *testing.T) {
	r := &Repository{}

	set, err := r.scanSetRaw(storedRow(`{"1":[{"factory_id":7,"business_type_id":5}]}`, nil))
	require.NoError(t, err)
	assert.Equal(t, NormalizeFactories(set.Factories), set.Factories)
}

func TestScanSetMalformedColumnsDegradeToEmpty(t *testing.T) {
	r := &Repository{}

	set, err := r.scanSet(storedRow(`"not json"`, map[Module]string{
		ModuleProduct: `"also not json"`,
		ModuleBooking: `{"booking":{"view":true}}`,
	}))
	require.NoError(t, err)
	assert.Empty(t, set.Factories)
	assert.Empty(t, set.Modules[ModuleProduct])
	assert.True(t, set.Grants(ModuleBooking, "booking", ActionView))
}
