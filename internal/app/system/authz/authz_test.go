package authz

import "testing"

func TestEvaluate_AllOf(t *testing.T) {
	req := AllOf(PermViewPayroll, PermManagePayroll)

	cases := []struct {
		name    string
		granted []string
		want    bool
	}{
		{"superset", []string{PermViewPayroll, PermManagePayroll, PermManageUsers}, true},
		{"exact", []string{PermViewPayroll, PermManagePayroll}, true},
		{"missing one", []string{PermViewPayroll}, false},
		{"missing other", []string{PermManagePayroll}, false},
		{"empty", nil, false},
		{"disjoint", []string{PermManageUsers}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(req, tc.granted); got != tc.want {
				t.Errorf("Evaluate(%v): got %v, want %v", tc.granted, got, tc.want)
			}
		})
	}
}

func TestEvaluate_AnyOf(t *testing.T) {
	req := AnyOf(PermViewProjects, PermManageProjects)

	cases := []struct {
		name    string
		granted []string
		want    bool
	}{
		{"first only", []string{PermViewProjects}, true},
		{"second only", []string{PermManageProjects}, true},
		{"both", []string{PermViewProjects, PermManageProjects}, true},
		{"neither", []string{PermManageUsers}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(req, tc.granted); got != tc.want {
				t.Errorf("Evaluate(%v): got %v, want %v", tc.granted, got, tc.want)
			}
		})
	}
}

// The override permission satisfies every requirement, regardless of its
// mode or contents.
func TestEvaluate_Override(t *testing.T) {
	granted := []string{Override}

	reqs := []Requirement{
		AllOf(PermViewPayroll, PermManagePayroll),
		AllOf("SOME_UNKNOWN_PERMISSION"),
		AnyOf(PermManageUsers),
		AllOf(),
		AnyOf(),
	}
	for _, req := range reqs {
		if !Evaluate(req, granted) {
			t.Errorf("override did not satisfy %+v", req)
		}
	}
}

func TestHasOverride(t *testing.T) {
	if HasOverride([]string{PermViewPayroll}) {
		t.Error("HasOverride true without override permission")
	}
	if !HasOverride([]string{PermViewPayroll, Override}) {
		t.Error("HasOverride false with override permission present")
	}
	if HasOverride(nil) {
		t.Error("HasOverride true for empty set")
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown(PermManageInvoices) {
		t.Error("PermManageInvoices should be known")
	}
	if IsKnown("MAKE_COFFEE") {
		t.Error("unknown permission reported as known")
	}
}
