// Package ui provides terminal styling for terminus output.
//
// Colors, symbols and the table renderer are built on Lip Gloss. Output
// that is meant to be parsed (JSON, YAML) never goes through this package.
//
// # Spinner Usage
//
// Long API calls show a spinner on stderr when it is a terminal:
//
//	done := ui.Track(os.Stderr, "Fetching site list")
//	err := fetch()
//	done(err)
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
package ui
