// Package cli holds the helpers shared by the aurorac subcommands: version
// reporting, a levelled logger and usage printing.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
)

const (
	Version   = "0.3.0"
	BuildDate = "2026-10-01"
)

// CommitSHA is set at link time with -ldflags "-X ...cli.CommitSHA=...".
var CommitSHA = "unknown"

// VersionInfo describes the running binary. Stdlib is the version of the
// standard library manifest in use, when known.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Stdlib    string `json:"stdlib,omitempty"`
}

func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes info for toolName to w, as text or as a JSON object
// {"tool": ..., "version_info": ...}.
func PrintVersion(w io.Writer, toolName string, info *VersionInfo, jsonOutput bool) error {
	if jsonOutput {
		payload := struct {
			Tool        string       `json:"tool"`
			VersionInfo *VersionInfo `json:"version_info"`
		}{toolName, info}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	lines := []string{fmt.Sprintf("%s v%s", toolName, info.Version), "Build Date: " + info.BuildDate}
	if info.CommitSHA != "" && info.CommitSHA != "unknown" {
		lines = append(lines, "Commit: "+info.CommitSHA)
	}
	if info.Stdlib != "" {
		lines = append(lines, "Stdlib: "+info.Stdlib)
	}
	lines = append(lines,
		"Go Version: "+info.GoVersion,
		fmt.Sprintf("Platform: %s/%s", info.Platform, info.Arch),
	)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
