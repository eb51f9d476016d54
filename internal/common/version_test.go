package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyVersionFile_FillsDefaultsOnly(t *testing.T) {
	oldV, oldB, oldC := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = oldV, oldB, oldC })

	Version, Build, GitCommit = "dev", "2024-03-01", "unknown"
	applyVersionFile([]byte("# release\nversion: 1.4.0\nbuild: 2099-01-01\ncommit: abc123\n"))

	assert.Equal(t, BuildInfo{Version: "1.4.0", Build: "2024-03-01", Commit: "abc123"}, Info())
	assert.Equal(t, "1.4.0 (build: 2024-03-01, commit: abc123)", Info().String())
}

func TestApplyVersionFile_IgnoresGarbage(t *testing.T) {
	oldV := Version
	t.Cleanup(func() { Version = oldV })

	Version = "dev"
	applyVersionFile([]byte("version: [unterminated"))
	assert.Equal(t, "dev", Version)
}
