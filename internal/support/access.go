package support

// HasSupportAccess reports whether the member's role set intersects the
// configured support-role set. Pure function over already-fetched role data.
func HasSupportAccess(memberRoles, supportRoles []string) bool {
	if len(memberRoles) == 0 || len(supportRoles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(supportRoles))
	for _, role := range supportRoles {
		set[role] = struct{}{}
	}
	for _, role := range memberRoles {
		if _, ok := set[role]; ok {
			return true
		}
	}
	return false
}
