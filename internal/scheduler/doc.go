// Package scheduler fires the daily report fan-out at a configured local
// time and staggers one report job per eligible user.
package scheduler
