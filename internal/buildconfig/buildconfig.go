package buildconfig

import "runtime/debug"

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/relgraph/internal/buildconfig.version=v1.2.0
//	-X github.com/Harshitk-cp/relgraph/internal/buildconfig.commit=abc123
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash. Without ldflags it falls back to the VCS
// revision the toolchain stamped into the binary.
func Commit() string {
	if commit != "unknown" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version": Version(),
		"commit":  Commit(),
	}
}
