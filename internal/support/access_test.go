package support

import "testing"

func TestHasSupportAccess(t *testing.T) {
	supportRoles := []string{"100", "200"}

	cases := []struct {
		name        string
		memberRoles []string
		want        bool
	}{
		{"direct match", []string{"200"}, true},
		{"match among others", []string{"5", "100", "9"}, true},
		{"no overlap", []string{"300", "400"}, false},
		{"member has no roles", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasSupportAccess(tc.memberRoles, supportRoles); got != tc.want {
				t.Fatalf("HasSupportAccess(%v) = %v, want %v", tc.memberRoles, got, tc.want)
			}
		})
	}
}

func TestHasSupportAccessNoRolesConfigured(t *testing.T) {
	if HasSupportAccess([]string{"100"}, nil) {
		t.Fatal("access granted with no support roles configured")
	}
}
