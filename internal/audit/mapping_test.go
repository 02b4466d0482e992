package audit

import "testing"

func TestParseRoute(t *testing.T) {
	cases := []struct {
		method, route string
		want          ActionResource
	}{
		{"POST", "/v1/auth/signup", ActionResource{Action: "signup", Resource: "auth"}},
		{"POST", "/v1/auth/signin", ActionResource{Action: "signin", Resource: "auth"}},
		{"POST", "/v1/auth/password/forgot", ActionResource{Action: "password_forgot", Resource: "auth"}},
		{"GET", "/v1/auth/oauth/:provider", ActionResource{Action: "oauth", Resource: "auth"}},
		{"PUT", "/v1/users/me/profile", ActionResource{Action: "update", Resource: "profile"}},
		{"PUT", "/v1/users/me/preferences", ActionResource{Action: "update", Resource: "preferences"}},
		{"POST", "/v1/users/me/onboarding/complete", ActionResource{Action: "create", Resource: "onboarding"}},
		{"GET", "/healthz", ActionResource{Action: "get", Resource: "unknown"}},
	}
	for _, tc := range cases {
		got := ParseRoute(tc.method, tc.route)
		if got != tc.want {
			t.Errorf("ParseRoute(%s %s) = %+v, want %+v", tc.method, tc.route, got, tc.want)
		}
	}
}
