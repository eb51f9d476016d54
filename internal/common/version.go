package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo is the build metadata served by /api/version.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Build   string `json:"build" yaml:"build"`
	Commit  string `json:"commit" yaml:"commit"`
}

// Info returns the current build metadata.
func Info() BuildInfo {
	return BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
}

// String renders e.g. "1.4.0 (build: 2024-03-01, commit: abc123)".
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

// LoadVersionFromFile fills values still at their defaults from a .version
// file beside the binary. The file holds "version:", "build:" and "commit:"
// lines; ldflags always win.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	applyVersionFile(data)
}

func applyVersionFile(data []byte) {
	var file BuildInfo
	if err := yaml.Unmarshal(data, &file); err != nil {
		return
	}
	if Version == "dev" && file.Version != "" {
		Version = file.Version
	}
	if Build == "unknown" && file.Build != "" {
		Build = file.Build
	}
	if GitCommit == "unknown" && file.Commit != "" {
		GitCommit = file.Commit
	}
}
