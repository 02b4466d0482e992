package audit

import "strings"

// ActionResource holds the audit action and resource derived from an
// HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Auth routes get a named action (the final path segment) on resource
// "auth" so the log reads "signup", "signin" rather than "create".
const authPrefix = "/v1/auth/"

// ParseRoute returns action and resource for an HTTP method and route
// template (e.g. PUT /v1/users/me/profile -> update/profile). Unmatched
// routes map to the lowercase method on resource "unknown".
func ParseRoute(method, route string) ActionResource {
	if strings.HasPrefix(route, authPrefix) {
		rest := strings.TrimPrefix(route, authPrefix)
		// Collapse nested auth routes: password/forgot -> password_forgot,
		// oauth/:provider -> oauth.
		rest = strings.TrimSuffix(rest, "/:provider")
		action := strings.ReplaceAll(rest, "/", "_")
		if action == "" {
			action = strings.ToLower(method)
		}
		return ActionResource{Action: action, Resource: "auth"}
	}

	if rest, ok := strings.CutPrefix(route, "/v1/users/me/"); ok {
		seg := rest
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			// onboarding/complete -> onboarding
			seg = seg[:i]
		}
		return ActionResource{Action: methodToAction(method), Resource: seg}
	}

	return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
}

func methodToAction(method string) string {
	switch method {
	case "GET":
		return "get"
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
