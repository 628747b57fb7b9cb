package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-11-05T10:30:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := Info{Version: "dev"}
	fillFromBuildInfo(&info, bi)

	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, "2024-11-05T10:30:00Z", info.BuildDate)
	assert.True(t, info.Modified)
	assert.Contains(t, info.String(), "commit abc123-dirty")
}

func TestFillFromBuildInfo_LdflagsWin(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}

	info := Info{Version: "v2.0.0", GitCommit: "release-sha", BuildDate: "2025-01-01"}
	fillFromBuildInfo(&info, bi)

	assert.Equal(t, "v2.0.0", info.Version)
	assert.Equal(t, "release-sha", info.GitCommit)
	assert.False(t, info.Modified)
}

func TestGet_Defaults(t *testing.T) {
	info := Get()

	// test binaries carry neither a module version nor vcs stamps
	assert.Equal(t, "dev", info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
}
