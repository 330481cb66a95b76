package rbac

import "testing"

func TestCheckerHas(t *testing.T) {
	c := NewChecker(RolePermissions)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:view", true},
		{"student", "exam:clone", false},
		{"teacher", "exam:clone", true},
		{"teacher", "content:preview", true},
		{"admin", "exam:clone", true}, // wildcard
		{"admin", "anything:at-all", true},
		{"", "exam:view", false},
		{"nobody", "exam:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(RolePermissions)
	if !c.Any("student", "attempt:view-all", "attempt:view-own") {
		t.Error("student should match view-own")
	}
	if c.Any("student", "attempt:view-all", "attempt:grade") {
		t.Error("student matched none")
	}
}

func TestMatchPermPrefixWildcard(t *testing.T) {
	if !matchPerm("exam:*", "exam:clone") {
		t.Error("prefix wildcard should match")
	}
	if matchPerm("exam:*", "attempt:save") {
		t.Error("prefix wildcard must not cross domains")
	}
}
