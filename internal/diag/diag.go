// Package diag provides a small multierror-based aggregator used by the
// kraken package wherever more than one failure needs to be reported as a
// single error, most notably the executor's keep_going mode.
package diag

import "github.com/hashicorp/go-multierror"

// Append adds err to existing, returning existing unchanged if err is
// nil. The zero value of the accumulator (a nil error) is a valid
// starting point.
func Append(existing error, err error) error {
	if err == nil {
		return existing
	}
	return multierror.Append(existing, err)
}

// Len reports how many errors have been aggregated into err, treating a
// nil error as zero and a non-multierror error as one.
func Len(err error) int {
	if err == nil {
		return 0
	}
	if merr, ok := err.(*multierror.Error); ok {
		return len(merr.Errors)
	}
	return 1
}
