// Package analytics computes the two summary statistics shown in the daily
// pantry report: the usage rate and the estimated total savings. Both are
// pure functions over a user's grocery trip history and are defined for
// empty input.
package analytics
