package authz

import (
	"encoding/json"
	"strconv"
	"time"
)

// SubmodulePermissions is one row of the permission grid: the four flags a
// user may hold on a sub-module.
type SubmodulePermissions struct {
	Create bool `json:"create"`
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Allows reports whether the row grants the given action.
func (p SubmodulePermissions) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return p.Create
	case ActionView:
		return p.View
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	default:
		return false
	}
}

// ModuleBlob maps sub-module name to its permission flags.
type ModuleBlob map[string]SubmodulePermissions

// FactoryPair scopes a factory to the business type it belongs to. A factory
// without a stated business-type pairing is not covered.
type FactoryPair struct {
	FactoryID      int64 `json:"factory_id"`
	BusinessTypeID int64 `json:"business_type_id"`
}

// UnmarshalJSON accepts both the canonical shape {factory_id, business_type_id}
// and the legacy UI shape {id, btId}.
func (p *FactoryPair) UnmarshalJSON(data []byte) error {
	var raw struct {
		FactoryID      flexID `json:"factory_id"`
		BusinessTypeID flexID `json:"business_type_id"`
		LegacyID       flexID `json:"id"`
		LegacyBT       flexID `json:"btId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.FactoryID = int64(raw.FactoryID)
	p.BusinessTypeID = int64(raw.BusinessTypeID)
	if p.FactoryID == 0 && p.BusinessTypeID == 0 {
		p.FactoryID = int64(raw.LegacyID)
		p.BusinessTypeID = int64(raw.LegacyBT)
	}
	return nil
}

// Valid reports whether both halves of the pair are present.
func (p FactoryPair) Valid() bool {
	return p.FactoryID > 0 && p.BusinessTypeID > 0
}

// PermissionSet is the per-user record encoding tenant scope plus all module
// permission blobs. A user practically has one active set, though the store
// allows several; visibility is the union across all of a user's sets.
type PermissionSet struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	RoleID *int64 `json:"role_id,omitempty"`

	Companies     []int64                 `json:"companies"`
	BusinessTypes map[int64][]int64       `json:"business_types"`
	Factories     map[int64][]FactoryPair `json:"factories"`

	Modules map[Module]ModuleBlob `json:"modules"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blob returns the permission blob for a module, never nil.
func (s PermissionSet) Blob(m Module) ModuleBlob {
	if blob, ok := s.Modules[m]; ok && blob != nil {
		return blob
	}
	return ModuleBlob{}
}

// Grants reports whether this set explicitly grants action on the sub-module
// within the given module blob.
func (s PermissionSet) Grants(m Module, submodule string, action Action) bool {
	return s.Blob(m)[submodule].Allows(action)
}

// NormalizeFactories drops malformed pairs and collapses duplicates. The
// store applies it on every upsert so readers only ever observe well-formed
// pairs.
func NormalizeFactories(in map[int64][]FactoryPair) map[int64][]FactoryPair {
	if in == nil {
		return map[int64][]FactoryPair{}
	}
	out := make(map[int64][]FactoryPair, len(in))
	for companyID, pairs := range in {
		seen := make(map[FactoryPair]struct{}, len(pairs))
		clean := make([]FactoryPair, 0, len(pairs))
		for _, p := range pairs {
			if !p.Valid() {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			clean = append(clean, p)
		}
		out[companyID] = clean
	}
	return out
}

// flexID decodes a numeric ID that may be stored as a JSON number or a string.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*f = flexID(v)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			*f = flexID(v)
		}
		return nil
	}
	// Unparseable IDs are dropped rather than failing the whole record.
	*f = 0
	return nil
}
