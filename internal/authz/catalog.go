package authz

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Module identifies a top-level business area carrying its own permission blob.
type Module string

const (
	ModuleProduct   Module = "product"
	ModuleCompany   Module = "company"
	ModuleHR        Module = "hr"
	ModuleAccounts  Module = "accounts"
	ModuleInventory Module = "inventory"
	ModuleSettings  Module = "settings"
	ModulePartyType Module = "party_type"
	ModuleSR        Module = "sr"
	ModuleBooking   Module = "booking"
	ModuleLoan      Module = "loan"
	ModulePallot    Module = "pallot"
	ModuleDelivery  Module = "delivery"
	ModuleLedger    Module = "ledger"
)

// catalog is the closed sub-module vocabulary per module. It is configuration,
// not data discovered at runtime: the permission-management UI renders its
// checkbox grid from this single definition.
var catalog = map[Module][]string{
	ModuleProduct:   {"product_type", "category", "product", "unit", "unit_size", "unit_conversion", "product_size_setting"},
	ModuleCompany:   {"company", "business_type", "factory"},
	ModuleSettings:  {"bag_type", "loan_type", "conditions", "pc_settings", "shed_settings", "general_settings", "basic_settings", "transaction_settings"},
	ModulePartyType: {"party_type", "party"},
	ModuleSR:        {"sr"},
	ModuleBooking:   {"booking"},
	ModuleLoan:      {"loan_type", "loan"},
	ModulePallot:    {"pallot_type"},
	ModuleAccounts:  {"account_head", "account"},
	ModuleLedger:    {"ledger"},

	// Reserved so stored blobs for these areas round-trip unchanged.
	ModuleHR:        {},
	ModuleInventory: {},
	ModuleDelivery:  {},
}

var actionOrder = []Action{ActionCreate, ActionView, ActionEdit, ActionDelete}

// PermissionDescriptor is one cell of the permission grid.
type PermissionDescriptor struct {
	Module string `json:"module"`
	Action Action `json:"action"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

var titleCaser = cases.Title(language.English)

// Modules lists every known module in stable order.
func Modules() []Module {
	out := make([]Module, 0, len(catalog))
	for m := range catalog {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Submodules returns the fixed sub-module vocabulary for a module, or nil for
// an unknown module.
func Submodules(m Module) []string {
	return catalog[m]
}

// KnownModule reports whether m carries a permission blob.
func KnownModule(m Module) bool {
	_, ok := catalog[m]
	return ok
}

// ListPermissions enumerates every permission cell of a module's grid, e.g.
// {module: "product_type", action: "create", code: "product_type_create",
// name: "Create Product Type"}.
func ListPermissions(m Module) ([]PermissionDescriptor, error) {
	subs, ok := catalog[m]
	if !ok {
		return nil, fmt.Errorf("authz: unknown module %q", m)
	}
	out := make([]PermissionDescriptor, 0, len(subs)*len(actionOrder))
	for _, sub := range subs {
		for _, action := range actionOrder {
			out = append(out, PermissionDescriptor{
				Module: sub,
				Action: action,
				Code:   sub + "_" + string(action),
				Name:   permissionName(sub, action),
			})
		}
	}
	return out, nil
}

func permissionName(sub string, action Action) string {
	label := titleCaser.String(strings.ReplaceAll(sub, "_", " "))
	return titleCaser.String(string(action)) + " " + label
}
