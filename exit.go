package clip

import "errors"

// Conventional process exit codes for parse outcomes.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a Parse error to a process exit status: 0 for success and
// for help/version requests, 2 for user errors, 1 for anything else
// (including spec errors that escaped development).
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var req *Request
	if errors.As(err, &req) {
		return ExitSuccess
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return ExitUsage
	}
	return ExitFailure
}
