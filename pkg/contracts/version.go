// Package contracts holds the types shared between mktrend and its clients:
// API request and response bodies (api/v1), report rows (domain) and websocket
// events (events).
package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the release version of mktrend
	Version = "1.0.0"

	// ReportFormatVersion is the version of the analysis report layout
	ReportFormatVersion = "v1"

	// APIVersion is the version of the HTTP and WebSocket contracts
	APIVersion = "v1"
)

// Set with -ldflags "-X mktrend/pkg/contracts.GitCommit=..."; when left empty
// the VCS stamp of the build is used.
var (
	BuildTime = ""
	GitCommit = ""
)

// VersionInfo is served by GET /api/version
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	Modified     bool   `json:"modified,omitempty"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	ReportFormat string `json:"report_format"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo returns the version and build details of the running binary
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		ReportFormat: ReportFormatVersion,
		APIVersion:   APIVersion,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if info.GitCommit == "" {
		info.GitCommit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// GetVersionString returns "mktrend v<Version>"
func GetVersionString() string {
	return fmt.Sprintf("mktrend v%s", Version)
}
