// Package history persists render and preview jobs in a SQLite database
// under the state directory.
//
// Jobs are inserted as running when a render starts, updated with sampled
// progress, and closed with a terminal Outcome that carries the error text,
// exit code and retry flag. The CLI history command lists recent jobs.
package history
