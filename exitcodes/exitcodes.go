// Package exitcodes defines the exit codes used by op-testbridge.
package exitcodes

// A run-once invocation exits with:
//
// * Success (0): every selected test passed or was skipped
// * TestFailure (1): a test or a configuration method failed
// * RuntimeErr (2): the run could not proceed, eg. a bad option, an unknown
// configurator or a go toolchain that cannot be started
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
