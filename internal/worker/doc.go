// Package worker runs submitted jobs one at a time, in submission order, on a
// single background goroutine and hands callers a Future for each result.
//
// Submitting never blocks. Jobs run under the worker's own context rather than
// the submitter's, so a job whose caller stopped waiting still completes and
// its side effects (cache population) still land. Stop cancels that context
// and fails any jobs that had not started with ErrStopped.
package worker
