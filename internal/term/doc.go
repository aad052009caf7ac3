// Package term reads terminal geometry and writes the cursor escape
// sequences used around inline images.
package term
