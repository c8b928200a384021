package config

import (
	"testing"
	"time"
)

func TestProjectRef(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "supabase host", url: "https://abcd1234.supabase.co", want: "abcd1234"},
		{name: "local host", url: "http://localhost:54321", want: "localhost"},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SupabaseURL: tt.url}
			if got := cfg.ProjectRef(); got != tt.want {
				t.Errorf("ProjectRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{env: "dev", want: "dev_"},
		{env: "test", want: "test_"},
		{env: "staging", want: "staging_"},
		{env: "prod", want: ""},
		{env: "unknown", want: "dev_"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := getTablePrefix(tt.env); got != tt.want {
				t.Errorf("getTablePrefix(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestTablePrefixOverride(t *testing.T) {
	t.Setenv("TABLE_PREFIX", "custom_")
	if got := getTablePrefix("prod"); got != "custom_" {
		t.Errorf("getTablePrefix with override = %q, want custom_", got)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_DURATION", "36h")
	if got := getDuration("X_DURATION", time.Second); got != 36*time.Hour {
		t.Errorf("got %v, want 36h", got)
	}
	t.Setenv("X_DURATION", "90")
	if got := getDuration("X_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}
	t.Setenv("X_DURATION", "garbage")
	if got := getDuration("X_DURATION", time.Second); got != time.Second {
		t.Errorf("got %v, want default", got)
	}
}

func TestLoadRoutes(t *testing.T) {
	rt, err := LoadRoutes()
	if err != nil {
		t.Fatalf("LoadRoutes() error: %v", err)
	}
	if rt.LoginPath != "/auth/login" || rt.HomePath != "/dashboard" {
		t.Errorf("unexpected paths: login=%q home=%q", rt.LoginPath, rt.HomePath)
	}
	if !MatchAny("/editor/anon/abc", rt.Public) {
		t.Error("anonymous editor path should be public")
	}
	if !MatchAny("/dashboard", rt.Protected) {
		t.Error("dashboard should be protected")
	}
}

func TestParseRoutesRejectsRelativePaths(t *testing.T) {
	_, err := ParseRoutes([]byte("login_path: /a\nhome_path: /b\nprotected: [dashboard]\n"))
	if err == nil {
		t.Fatal("expected error for relative path")
	}
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/editor", "/editor", true},
		{"/editor/anon/tok", "/editor", true},
		{"/editorial", "/editor", false},
		{"/dashboard", "/editor", false},
		{"/anything", "", false},
	}

	for _, tt := range tests {
		if got := HasPrefix(tt.path, tt.prefix); got != tt.want {
			t.Errorf("HasPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestGetList(t *testing.T) {
	t.Setenv("X_LIST", " github, ,google ")
	got := getList("X_LIST", "")
	if len(got) != 2 || got[0] != "github" || got[1] != "google" {
		t.Errorf("getList = %q, want [github google]", got)
	}

	if got := getList("X_LIST_UNSET", "a"); len(got) != 1 || got[0] != "a" {
		t.Errorf("getList default = %q, want [a]", got)
	}
}
