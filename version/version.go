// Package version reports pidsym build information.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build information, set at build time via ldflags:
//
//	-X github.com/hazop-ai/pidsym/version.Version=v0.3.0
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// IsRelease reports whether the binary was built from a tag.
func (i Info) IsRelease() bool {
	return i.Version != "" && i.Version != "dev"
}

// Semver is the version without a leading "v", or "dev".
// Family files compare their requires constraint against it.
func (i Info) Semver() string {
	if !i.IsRelease() {
		return "dev"
	}
	return strings.TrimPrefix(i.Version, "v")
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("pidsym %s (commit %s, built %s, %s %s)", i.Version, i.Short(), i.BuildTime, i.GoVersion, i.Platform)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
