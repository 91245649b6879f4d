package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantFields []string
	}{
		{
			name:   "default is valid",
			modify: func(*Config) {},
		},
		{
			name:       "no agents",
			modify:     func(c *Config) { c.Agents = nil },
			wantFields: []string{"agents"},
		},
		{
			name:       "empty agent names",
			modify:     func(c *Config) { c.Agents = []string{"skyrim", "", "morrowind", ""} },
			wantFields: []string{"agents[1]", "agents[3]"},
		},
		{
			name:       "empty profile",
			modify:     func(c *Config) { c.Profile = "" },
			wantFields: []string{"profile"},
		},
		{
			name:       "unknown profile",
			modify:     func(c *Config) { c.Profile = "nightly" },
			wantFields: []string{"profile"},
		},
		{
			name: "profile defined in config",
			modify: func(c *Config) {
				c.Profile = "nightly"
				c.Profiles["nightly"] = ProfileConfig{Stages: []string{"build"}}
			},
		},
		{
			name: "bad stages",
			modify: func(c *Config) {
				c.Profiles["zeta"] = ProfileConfig{Stages: []string{"build", "deploy"}}
				c.Profiles["alpha"] = ProfileConfig{}
			},
			wantFields: []string{"profiles.alpha.stages", "profiles.zeta.stages[1]"},
		},
		{
			name:       "invalid log level",
			modify:     func(c *Config) { c.Logging.Level = "verbose" },
			wantFields: []string{"logging.level"},
		},
		{
			name:   "log level is case insensitive",
			modify: func(c *Config) { c.Logging.Level = "DEBUG" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(errs), len(tt.wantFields), ValidationErrors(errs))
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := ValidationErrors(nil).Error(); got != "" {
		t.Errorf("empty Error() = %q, want empty", got)
	}

	one := ValidationErrors{{Field: "profile", Value: "x", Message: "must be one of: bench"}}
	if got, want := one.Error(), "profile: must be one of: bench (got: x)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	two := ValidationErrors{
		{Field: "agents", Value: []string{}, Message: "must list at least one agent"},
		{Field: "logging.level", Value: "loud", Message: "bad"},
	}
	got := two.Error()
	if !strings.HasPrefix(got, "2 validation errors:\n") {
		t.Errorf("Error() = %q, want count prefix", got)
	}
	if !strings.Contains(got, "  2. logging.level: bad (got: loud)") {
		t.Errorf("Error() = %q, missing numbered entry", got)
	}
}

func TestUnknownProfileMessageListsChoices(t *testing.T) {
	cfg := Default()
	cfg.Profile = "missing"
	cfg.Profiles["nightly"] = ProfileConfig{Stages: []string{"build"}}

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if want := "must be one of: bench, build, compact, default, nightly"; errs[0].Message != want {
		t.Errorf("Message = %q, want %q", errs[0].Message, want)
	}
}
