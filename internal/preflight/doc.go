// Package preflight provides readiness checks for the filesystem paths and
// catalog endpoint subfetch depends on.
//
// The fetch command calls RunAll before logging in and stops when the data
// directory is unusable. The status command renders every Result.
package preflight
