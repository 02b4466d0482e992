// Package platform defines the product-platform discriminator threaded
// through every account operation and the default-role table per platform.
package platform

import (
	"fmt"
	"strings"
)

// Platform selects one of the three product namespaces.
type Platform string

const (
	ATLVS   Platform = "atlvs"
	COMPVSS Platform = "compvss"
	GVTEWAY Platform = "gvteway"
)

// Parse returns the Platform for s (case-insensitive) or an error for
// anything outside the three known namespaces.
func Parse(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case ATLVS:
		return ATLVS, nil
	case COMPVSS:
		return COMPVSS, nil
	case GVTEWAY:
		return GVTEWAY, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// RoleDefaults maps each platform to the role set granted at sign-up when
// no invitation overrides it. It is configuration data, not code: new
// platforms are added by extending the map, and config.Load builds it from
// the environment.
type RoleDefaults map[Platform][]string

// DefaultRoles returns the default role set for p. Falls back to the
// GVTEWAY entry when p has no entry, matching the permissive default the
// web application shipped with.
func (rd RoleDefaults) DefaultRoles(p Platform) []string {
	if roles, ok := rd[p]; ok && len(roles) > 0 {
		out := make([]string, len(roles))
		copy(out, roles)
		return out
	}
	if roles, ok := rd[GVTEWAY]; ok && len(roles) > 0 {
		out := make([]string, len(roles))
		copy(out, roles)
		return out
	}
	return nil
}

// StandardRoleDefaults is the shipped default-role table.
func StandardRoleDefaults() RoleDefaults {
	return RoleDefaults{
		ATLVS:   {"ATLVS_VIEWER"},
		COMPVSS: {"COMPVSS_VIEWER"},
		GVTEWAY: {"GVTEWAY_MEMBER"},
	}
}

// ParseRoleDefaults parses a config string of the form
// "atlvs=ATLVS_VIEWER,compvss=COMPVSS_VIEWER,gvteway=GVTEWAY_MEMBER".
// Multiple roles for one platform are separated with "|". An empty string
// yields the standard table.
func ParseRoleDefaults(s string) (RoleDefaults, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StandardRoleDefaults(), nil
	}
	rd := make(RoleDefaults)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid role default %q", pair)
		}
		p, err := Parse(k)
		if err != nil {
			return nil, err
		}
		var roles []string
		for _, r := range strings.Split(v, "|") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
		if len(roles) == 0 {
			return nil, fmt.Errorf("no roles for platform %q", k)
		}
		rd[p] = roles
	}
	return rd, nil
}
