// Package naming generates the systematic episode code names, unique across
// the full season plan even when the symbol vocabulary is smaller than the
// episode count.
package naming
