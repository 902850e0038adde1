// Package version exposes build information injected through -ldflags.
package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/jingkaihe/skillmigrate/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information. A dev build installed with go install
// reports its module version instead of "dev".
func Get() Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}

	return Info{
		Version:   v,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// JSON returns the indented JSON form of i
func (i Info) JSON() (string, error) {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
