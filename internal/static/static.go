package static

import _ "embed"

// APIGuide contains the embedded api.md usage guide served at /api.md.
//
//go:embed api.md
var APIGuide string
