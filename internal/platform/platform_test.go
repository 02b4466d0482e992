package platform

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"atlvs", ATLVS, false},
		{"COMPVSS", COMPVSS, false},
		{" gvteway ", GVTEWAY, false},
		{"", "", true},
		{"legacy", "", true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDefaultRoles_Standard(t *testing.T) {
	rd := StandardRoleDefaults()
	if got := rd.DefaultRoles(ATLVS); !reflect.DeepEqual(got, []string{"ATLVS_VIEWER"}) {
		t.Errorf("atlvs roles = %v", got)
	}
	if got := rd.DefaultRoles(COMPVSS); !reflect.DeepEqual(got, []string{"COMPVSS_VIEWER"}) {
		t.Errorf("compvss roles = %v", got)
	}
	if got := rd.DefaultRoles(GVTEWAY); !reflect.DeepEqual(got, []string{"GVTEWAY_MEMBER"}) {
		t.Errorf("gvteway roles = %v", got)
	}
}

func TestDefaultRoles_FallsBackToGvteway(t *testing.T) {
	rd := RoleDefaults{GVTEWAY: {"GVTEWAY_MEMBER"}}
	if got := rd.DefaultRoles(ATLVS); !reflect.DeepEqual(got, []string{"GVTEWAY_MEMBER"}) {
		t.Errorf("fallback roles = %v", got)
	}
}

func TestDefaultRoles_ReturnsCopy(t *testing.T) {
	rd := StandardRoleDefaults()
	got := rd.DefaultRoles(ATLVS)
	got[0] = "mutated"
	if rd[ATLVS][0] != "ATLVS_VIEWER" {
		t.Error("DefaultRoles leaked internal slice")
	}
}

func TestParseRoleDefaults(t *testing.T) {
	rd, err := ParseRoleDefaults("atlvs=ATLVS_VIEWER,compvss=COMPVSS_VIEWER|COMPVSS_CREW,gvteway=GVTEWAY_MEMBER")
	if err != nil {
		t.Fatalf("ParseRoleDefaults: %v", err)
	}
	if !reflect.DeepEqual(rd[COMPVSS], []string{"COMPVSS_VIEWER", "COMPVSS_CREW"}) {
		t.Errorf("compvss roles = %v", rd[COMPVSS])
	}

	if _, err := ParseRoleDefaults("atlvs"); err == nil {
		t.Error("expected error for missing =")
	}
	if _, err := ParseRoleDefaults("mars=X"); err == nil {
		t.Error("expected error for unknown platform")
	}

	rd, err = ParseRoleDefaults("")
	if err != nil {
		t.Fatalf("ParseRoleDefaults(empty): %v", err)
	}
	if !reflect.DeepEqual(rd, StandardRoleDefaults()) {
		t.Error("empty config should yield standard table")
	}
}
