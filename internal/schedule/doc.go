// Package schedule lays episode releases onto the Monday/Wednesday/Friday
// 06:00 UTC cadence and writes the published schedule listing.
package schedule
