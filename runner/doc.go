// Package runner drives a test-execution engine on behalf of a host.
//
// The main components are:
//   - Executor: entry points for running a list of classes or a set of suite descriptor files
//   - EngineRunner: configures an engine, attaches the result bridge and invokes it once
//
// A class run resolves each class to a (suite, test) pair, groups the classes
// into a plan, attaches group and method selectors to every test node and
// hands the plan to the engine. Engine results reach the host listener
// through the bridge package.
package runner
