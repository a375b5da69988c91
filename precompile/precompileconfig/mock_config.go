// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package precompileconfig

var _ Config = &noopStatefulPrecompileConfig{}

type noopStatefulPrecompileConfig struct{}

// NewNoopStatefulPrecompileConfig returns a config that configures nothing.
// Tests hand it to configurators that expect a concrete config type to
// exercise their type checks.
func NewNoopStatefulPrecompileConfig() *noopStatefulPrecompileConfig {
	return &noopStatefulPrecompileConfig{}
}

func (n *noopStatefulPrecompileConfig) Key() string {
	return ""
}

func (n *noopStatefulPrecompileConfig) Timestamp() *uint64 {
	return nil
}

func (n *noopStatefulPrecompileConfig) IsDisabled() bool {
	return false
}

func (n *noopStatefulPrecompileConfig) Equal(Config) bool {
	return false
}

func (n *noopStatefulPrecompileConfig) Verify() error {
	return nil
}
