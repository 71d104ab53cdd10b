package rbac

import (
	"testing"

	"github.com/medira-his/medira/internal/shared"
)

func TestRoleNameTotal(t *testing.T) {
	want := map[int]string{
		1:  "super_admin",
		2:  "branch_admin",
		3:  "doctor",
		4:  "nurse",
		5:  "patient",
		6:  "cashier",
		7:  "pharmacist",
		8:  "it_support",
		9:  "center_aid",
		10: "auditor",
	}
	for code, name := range want {
		if got := RoleName(code); got != name {
			t.Errorf("RoleName(%d) = %q, want %q", code, got, name)
		}
	}
	for _, code := range []int{0, -1, 11, 999} {
		if got := RoleName(code); got != "unknown" {
			t.Errorf("RoleName(%d) = %q, want unknown", code, got)
		}
	}
}

func TestRoleNameInjective(t *testing.T) {
	seen := map[string]int{}
	for code := 1; code <= 10; code++ {
		name := RoleName(code)
		if prev, ok := seen[name]; ok {
			t.Fatalf("role name %q mapped from both %d and %d", name, prev, code)
		}
		seen[name] = code
	}
}

func TestAbilities(t *testing.T) {
	super := Abilities(RoleSuperAdmin)
	set := map[string]bool{}
	for _, a := range super {
		set[a] = true
	}
	for _, a := range []string{AbilitySuperAdmin, AbilityAdmin, AbilityDoctor, AbilityPharmacist, AbilityAuditor} {
		if !set[a] {
			t.Errorf("super_admin missing ability %s", a)
		}
	}

	if got := Abilities(RolePharmacist); len(got) != 1 || got[0] != AbilityPharmacist {
		t.Errorf("pharmacist abilities = %v", got)
	}
	if got := Abilities(42); got != nil {
		t.Errorf("unknown role abilities = %v, want nil", got)
	}
}

func TestIsSuperRole(t *testing.T) {
	cases := []struct {
		name string
		p    *shared.Principal
		want bool
	}{
		{"nil principal", nil, false},
		{"super admin code", &shared.Principal{RoleCode: RoleSuperAdmin}, true},
		{"super ability only", &shared.Principal{RoleCode: RoleDoctor, Abilities: []string{AbilitySuperAdmin}}, true},
		{"legacy admin alias", &shared.Principal{RoleCode: RoleDoctor, RoleName: "admin"}, true},
		{"branch admin", &shared.Principal{RoleCode: RoleBranchAdmin, RoleName: "branch_admin", Abilities: []string{AbilityAdmin}}, false},
		{"cashier", &shared.Principal{RoleCode: RoleCashier, RoleName: "cashier", Abilities: []string{AbilityCashier}}, false},
	}
	for _, tc := range cases {
		if got := IsSuperRole(tc.p); got != tc.want {
			t.Errorf("%s: IsSuperRole = %v, want %v", tc.name, got, tc.want)
		}
	}
}
