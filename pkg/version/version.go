// Package version reports findskill build metadata. Release builds stamp the
// variables with -ldflags; `go install` builds fall back to the module and VCS
// data embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unset = "unknown"

var (
	// Version is the release of findskill, set with -ldflags at build time
	Version = "dev"
	// GitCommit is the commit SHA the binary was built from
	GitCommit = unset
	// BuildTime is the commit or build timestamp
	BuildTime = unset
)

// Info is the build metadata printed by `findskill --version`
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the stamped build metadata, completed from the embedded build
// info where the stamp is missing.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildInfo(bi)
	}
	return info
}

func (i Info) withBuildInfo(bi *debug.BuildInfo) Info {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && i.GitCommit == unset:
			i.GitCommit = s.Value
		case s.Key == "vcs.time" && i.BuildTime == unset:
			i.BuildTime = s.Value
		}
	}
	return i
}

func (i Info) String() string {
	return fmt.Sprintf("Version: %s, GitCommit: %s, BuildTime: %s, GoVersion: %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}
