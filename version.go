package livingtrust

import _ "embed"

// Version is the release version, read from the VERSION file at build time.
// Callers should strings.TrimSpace it.
//
//go:embed VERSION
var Version string
