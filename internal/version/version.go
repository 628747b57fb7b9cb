package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// set with -ldflags "-X .../internal/version.Version=..." by release builds
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get prefers the ldflags values and falls back to what the go toolchain embedded
// (module version from `go install`, vcs stamps from `go build` in a checkout).
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}

	if len(info.GitCommit) == 0 {
		info.GitCommit = "unknown"
	}
	if len(info.BuildDate) == 0 {
		info.BuildDate = "unknown"
	}

	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(info.GitCommit) == 0 {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if len(info.BuildDate) == 0 {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

func (i Info) String() string {
	commit := i.GitCommit
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("ocha-mailchimp %s (commit %s, built %s, %s %s)",
		i.Version, commit, i.BuildDate, i.GoVersion, i.Platform)
}
