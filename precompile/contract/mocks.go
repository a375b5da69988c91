// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import "math/big"

type mockBlockContext struct {
	blockNumber *big.Int
	timestamp   *big.Int
}

// NewMockBlockContext returns a fixed BlockContext for tests and tooling.
func NewMockBlockContext(blockNumber *big.Int, timestamp uint64) *mockBlockContext {
	return &mockBlockContext{
		blockNumber: blockNumber,
		timestamp:   new(big.Int).SetUint64(timestamp),
	}
}

func (mb *mockBlockContext) Number() *big.Int    { return mb.blockNumber }
func (mb *mockBlockContext) Timestamp() *big.Int { return mb.timestamp }

type mockAccessibleState struct {
	state        StateDB
	blockContext BlockContext
}

// NewMockAccessibleState returns an AccessibleState composed of the given parts.
func NewMockAccessibleState(state StateDB, blockContext BlockContext) AccessibleState {
	return &mockAccessibleState{state: state, blockContext: blockContext}
}

func (m *mockAccessibleState) GetStateDB() StateDB           { return m.state }
func (m *mockAccessibleState) GetBlockContext() BlockContext { return m.blockContext }

type mockChainConfig struct {
	chainID *big.Int
}

// NewMockChainConfig returns a ChainConfig with a fixed chain id.
func NewMockChainConfig(chainID *big.Int) ChainConfig {
	return &mockChainConfig{chainID: chainID}
}

func (m *mockChainConfig) ChainID() *big.Int { return m.chainID }
