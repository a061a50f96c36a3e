package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION.txt
var versionFile string

// Version is the release version reported by both binaries
var Version = strings.TrimSpace(versionFile)
