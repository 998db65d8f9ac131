package version

import "testing"

func TestGetUsesLinkerValues(t *testing.T) {
	origVersion, origCommit, origBuild := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = origVersion, origCommit, origBuild }()

	Version = "1.4.0"
	GitCommit = "abcdef0123456"
	BuildTime = "2026-01-02T03:04:05Z"

	info := Get()
	if info.Version != "1.4.0" || !info.IsRelease {
		t.Errorf("unexpected version info %+v", info)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected commit to be shortened, got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("expected linker build time, got %q", info.BuildTime)
	}
}

func TestDevIsNotRelease(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "dev"
	if Get().IsRelease {
		t.Error("dev must not be a release")
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.0.0"}, "1.0.0"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}
