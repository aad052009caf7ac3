// Package preflight provides readiness checks for the directories, the
// image-display command, the catalog API and the terminal that koneko
// depends on.
//
// The "koneko doctor" command runs RunAll and prints one line per check.
// Browse commands call CheckRenderer before starting a pipeline so a
// missing display binary is reported once instead of once per image.
package preflight
