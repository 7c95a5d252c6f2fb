package sim

import "fmt"

// ConfigurationError reports a malformed world configuration. It is fatal:
// no day may be simulated against a world that fails validation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("world configuration: %s: %s", e.Field, e.Reason)
}

// StateConsistencyError reports a prior stock state that cannot seed a day's
// run (negative opening stock, or a configured product missing from the
// state). The day produces no rows when this is returned.
type StateConsistencyError struct {
	Product string
	Reason  string
}

func (e *StateConsistencyError) Error() string {
	return fmt.Sprintf("stock state: product %q: %s", e.Product, e.Reason)
}
