package application

// RequireActive rejects principals that have not accepted their invite.
func RequireActive(principal Principal) error {
	if principal.UserID <= 0 {
		return ErrUnauthorized
	}
	if !principal.Active() {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin rejects principals without the admin flag.
func RequireAdmin(principal Principal) error {
	if principal.UserID <= 0 {
		return ErrUnauthorized
	}
	if !principal.IsAdmin {
		return ErrForbidden
	}
	return nil
}
