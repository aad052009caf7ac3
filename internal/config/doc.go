// Package config loads, normalizes, and validates koneko configuration data.
//
// It supplies repository defaults (the lscat geometry fallbacks among them),
// expands user paths including tilde shortcuts, reads TOML files, and honours
// the KONEKO_ACCESS_TOKEN environment fallback. LayoutSettings hands the
// browsing core a plain settings record so the core never reads
// configuration itself.
package config
