package authz

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrMalformedPermissionData marks a stored blob that failed to parse as
// structured data. It is never surfaced to callers: readers degrade to empty
// permissions (deny) and log it as a data-quality signal.
var ErrMalformedPermissionData = errors.New("authz: malformed permission data")

// decodeModuleBlob parses a stored module blob. It tolerates blobs persisted
// as a JSON-encoded string (double encoding happened with older admin
// tooling) and reports ErrMalformedPermissionData for anything unparseable.
func decodeModuleBlob(raw []byte) (ModuleBlob, error) {
	raw = unwrapString(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ModuleBlob{}, nil
	}
	var blob ModuleBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return ModuleBlob{}, ErrMalformedPermissionData
	}
	if blob == nil {
		blob = ModuleBlob{}
	}
	return blob, nil
}

// decodeCompanies parses the stored company list, accepting numeric and
// string IDs.
func decodeCompanies(raw []byte) ([]int64, error) {
	raw = unwrapString(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []int64{}, nil
	}
	var ids []flexID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return []int64{}, ErrMalformedPermissionData
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, int64(id))
		}
	}
	return out, nil
}

// decodeBusinessTypes parses the stored company → business-type map. JSON
// object keys are strings; unparseable keys are dropped.
func decodeBusinessTypes(raw []byte) (map[int64][]int64, error) {
	raw = unwrapString(raw)
	out := map[int64][]int64{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var m map[string][]flexID
	if err := json.Unmarshal(raw, &m); err != nil {
		return out, ErrMalformedPermissionData
	}
	for key, ids := range m {
		companyID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || companyID <= 0 {
			continue
		}
		list := make([]int64, 0, len(ids))
		for _, id := range ids {
			if id > 0 {
				list = append(list, int64(id))
			}
		}
		out[companyID] = list
	}
	return out, nil
}

// decodeFactories parses the stored company → factory-pair map exactly as
// persisted. Pairs are NOT normalized here: the request path normalizes after
// scanning, while the data-quality scan needs the stored shape to detect rows
// that predate write-time normalization.
func decodeFactories(raw []byte) (map[int64][]FactoryPair, error) {
	raw = unwrapString(raw)
	out := map[int64][]FactoryPair{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var m map[string][]FactoryPair
	if err := json.Unmarshal(raw, &m); err != nil {
		return out, ErrMalformedPermissionData
	}
	for key, pairs := range m {
		companyID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || companyID <= 0 {
			continue
		}
		out[companyID] = pairs
	}
	return out, nil
}

// encodeCompanyKeyed renders an int64-keyed map with string keys, the shape
// the JSON columns have always used.
func encodeCompanyKeyed[T any](in map[int64][]T) ([]byte, error) {
	m := make(map[string][]T, len(in))
	for companyID, v := range in {
		m[strconv.FormatInt(companyID, 10)] = v
	}
	return json.Marshal(m)
}

// unwrapString peels one layer of string encoding off a stored JSON value.
func unwrapString(raw []byte) []byte {
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return raw
	}
	return []byte(inner)
}
