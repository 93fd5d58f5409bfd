// Package report assembles and renders the daily pantry report email.
package report
