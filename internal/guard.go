package internal

// DenyAccessUnlessGranted redirects to the "app_index" route unless the
// current identity's role is exactly role.
func DenyAccessUnlessGranted(role string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if !c.HasRole(role) {
				c.LogDebug("access denied", "required_role", role)
				return c.RedirectTo(routeAppIndex)
			}
			return next(c)
		}
	}
}

// DenyAccessUnlessHasPermission redirects unless the identity holds
// permission. The redirect target is fallback, "app_index" when omitted.
func DenyAccessUnlessHasPermission(permission string, fallback ...string) Middleware {
	target := routeAppIndex
	if len(fallback) > 0 && fallback[0] != "" {
		target = fallback[0]
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if !c.Can(permission) {
				c.LogDebug("access denied", "required_permission", permission)
				return c.RedirectTo(target)
			}
			return next(c)
		}
	}
}

// RequireAuthentication redirects anonymous users to route.
func RequireAuthentication(route string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if !c.IsAuthenticated() {
				return c.RedirectTo(route)
			}
			return next(c)
		}
	}
}

const routeAppIndex = "app_index"
