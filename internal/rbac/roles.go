// Package rbac holds the single authoritative role table and the two
// request gates (capability and branch isolation). Every layer that needs a
// role name or ability set consults this package; there is deliberately no
// second copy of the mapping anywhere in the tree.
package rbac

import "github.com/medira-his/medira/internal/shared"

// Numeric role codes as stored on the users table.
const (
	RoleSuperAdmin  = 1
	RoleBranchAdmin = 2
	RoleDoctor      = 3
	RoleNurse       = 4
	RolePatient     = 5
	RoleCashier     = 6
	RolePharmacist  = 7
	RoleITSupport   = 8
	RoleCenterAid   = 9
	RoleAuditor     = 10
)

// Token abilities granted at login.
const (
	AbilitySuperAdmin = "server:super-admin"
	AbilityAdmin      = "server:admin"
	AbilityDoctor     = "server:doctor"
	AbilityNurse      = "server:nurse"
	AbilityPatient    = "server:patient"
	AbilityCashier    = "server:cashier"
	AbilityPharmacist = "server:pharmacist"
	AbilityITSupport  = "server:it-support"
	AbilityCenterAid  = "server:center-aid"
	AbilityAuditor    = "server:auditor"
)

// legacyAdminAlias is the historical role name that still implies
// cross-branch authority on old accounts.
const legacyAdminAlias = "admin"

var roleNames = map[int]string{
	RoleSuperAdmin:  "super_admin",
	RoleBranchAdmin: "branch_admin",
	RoleDoctor:      "doctor",
	RoleNurse:       "nurse",
	RolePatient:     "patient",
	RoleCashier:     "cashier",
	RolePharmacist:  "pharmacist",
	RoleITSupport:   "it_support",
	RoleCenterAid:   "center_aid",
	RoleAuditor:     "auditor",
}

var roleAbilities = map[int]string{
	RoleDoctor:     AbilityDoctor,
	RoleNurse:      AbilityNurse,
	RolePatient:    AbilityPatient,
	RoleCashier:    AbilityCashier,
	RolePharmacist: AbilityPharmacist,
	RoleITSupport:  AbilityITSupport,
	RoleCenterAid:  AbilityCenterAid,
	RoleAuditor:    AbilityAuditor,
}

// RoleName maps a role code to its name. Total over all inputs: unmapped
// codes yield "unknown", never a panic.
func RoleName(code int) string {
	if name, ok := roleNames[code]; ok {
		return name
	}
	return "unknown"
}

// Abilities returns the full ability set a role code entitles. A login may
// issue a narrower subset; this is the ceiling.
func Abilities(code int) []string {
	switch code {
	case RoleSuperAdmin:
		all := []string{AbilitySuperAdmin, AbilityAdmin}
		for _, c := range []int{RoleDoctor, RoleNurse, RolePatient, RoleCashier, RolePharmacist, RoleITSupport, RoleCenterAid, RoleAuditor} {
			all = append(all, roleAbilities[c])
		}
		return all
	case RoleBranchAdmin:
		return []string{AbilityAdmin, AbilityDoctor, AbilityNurse, AbilityCashier, AbilityPharmacist, AbilityCenterAid}
	default:
		if a, ok := roleAbilities[code]; ok {
			return []string{a}
		}
		return nil
	}
}

// IsSuperRole reports whether the principal holds cross-branch authority:
// the super-admin role code, the super-admin ability on its issued token,
// or the legacy "admin" role-name alias.
func IsSuperRole(p *shared.Principal) bool {
	if p == nil {
		return false
	}
	if p.RoleCode == RoleSuperAdmin {
		return true
	}
	if p.HasAbility(AbilitySuperAdmin) {
		return true
	}
	return p.RoleName == legacyAdminAlias
}
