// Package bridge translates native engine result callbacks into the host
// listener protocol.
package bridge

import (
	"github.com/ethereum-optimism/infra/op-testbridge/engine"
)

// Capability is the result-reporting capability of an engine
type Capability int

const (
	// Basic engines report test start, success, failure and skip plus test set boundaries
	Basic Capability = iota
	// Extended engines additionally report configuration-method results
	Extended
)

func (c Capability) String() string {
	switch c {
	case Basic:
		return "basic"
	case Extended:
		return "extended"
	default:
		return "unknown"
	}
}

// Probe inspects the engine once and returns its reporting capability
func Probe(e engine.Engine) Capability {
	if emitter, ok := e.(engine.ConfigurationEmitter); ok && emitter.EmitsConfigurationEvents() {
		return Extended
	}
	return Basic
}
