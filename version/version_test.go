package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVars(t *testing.T, v, commit, built string) {
	t.Helper()
	oldV, oldC, oldB := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldB })
}

func withBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

func TestGetVersionInfoDefaults(t *testing.T) {
	withVars(t, "dev", "", "")
	withBuildInfo(t, nil)
	info := GetVersionInfo()
	if info.Version != "dev" || info.IsRelease || info.Library != "" {
		t.Errorf("unexpected dev info: %+v", info)
	}
}

func TestGetVersionInfoFromVariables(t *testing.T) {
	withVars(t, "1.2.0", "abcdef0123456", "2026-03-01T10:00:00Z")
	withBuildInfo(t, &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffffff"},
		{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
	}})
	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("expected a release")
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("ldflags commit should win and be shortened, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("ldflags build time should win, got %v", info.BuildDate)
	}
}

func TestGetVersionInfoFromVCS(t *testing.T) {
	withVars(t, "1.0.0", "", "")
	withBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-05-04T03:02:01Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})
	info := GetVersionInfo()
	if info.GitCommit != "0123456" || !info.IsDirty || info.GoVersion != "go1.25.0" {
		t.Errorf("unexpected vcs info: %+v", info)
	}
	if info.BuildDate.Month() != 5 {
		t.Errorf("expected build date from vcs.time, got %v", info.BuildDate)
	}
	if got := GetShortVersion(); got != "1.0.0-0123456-dirty" {
		t.Errorf("GetShortVersion() = %q", got)
	}
}

func TestGetVersionInfoDirtyVersion(t *testing.T) {
	withVars(t, "1.0.0-dirty", "", "")
	withBuildInfo(t, nil)
	if GetVersionInfo().IsRelease {
		t.Error("dirty build must not be a release")
	}
}

func TestLibraryVersion(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		want string
	}{
		{"dependency", &debug.BuildInfo{
			Main: debug.Module{Path: "example.com/billing", Version: "(devel)"},
			Deps: []*debug.Module{{Path: ModulePath, Version: "v0.3.0"}},
		}, "v0.3.0"},
		{"replaced", &debug.BuildInfo{
			Deps: []*debug.Module{{Path: ModulePath, Version: "v0.3.0", Replace: &debug.Module{Path: ModulePath, Version: "v0.3.1"}}},
		}, "v0.3.1"},
		{"checkout", &debug.BuildInfo{Main: debug.Module{Path: ModulePath, Version: "(devel)"}}, ""},
		{"absent", &debug.BuildInfo{Main: debug.Module{Path: "example.com/billing"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.bi)
			if got := GetVersionInfo().Library; got != tt.want {
				t.Errorf("Library = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, nil)
	if got := UserAgent("billing-client", "1.4.0"); got != "billing-client/1.4.0 reqmw" {
		t.Errorf("unexpected user agent %q", got)
	}
	if got := UserAgent("", "2.0.0"); got != "reqmw/2.0.0" {
		t.Errorf("unexpected user agent %q", got)
	}

	withVars(t, "3.1.0", "", "")
	if got := UserAgent("x", ""); !strings.HasPrefix(got, "x/3.1.0") {
		t.Errorf("expected the build version, got %q", got)
	}

	withBuildInfo(t, &debug.BuildInfo{Deps: []*debug.Module{{Path: ModulePath, Version: "v0.3.0"}}})
	if got := UserAgent("billing-client", "1.4.0"); got != "billing-client/1.4.0 reqmw/v0.3.0" {
		t.Errorf("expected the library version, got %q", got)
	}
}
