// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

// Defines the interface for the configuration and execution of a precompile contract
package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
)

// StatefulPrecompiledContract is the interface for executing a precompiled contract
type StatefulPrecompiledContract interface {
	// Run executes the precompiled contract.
	Run(accessibleState AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error)
}

// StateReader is the read-only subset of StateDB exposed to view functions.
type StateReader interface {
	GetState(common.Address, common.Hash) common.Hash
}

// StateDB is the interface for accessing EVM state
type StateDB interface {
	StateReader
	SetState(common.Address, common.Hash, common.Hash)

	CreateAccount(common.Address)
	Exist(common.Address) bool

	AddLog(*types.Log)

	Snapshot() int
	RevertToSnapshot(int)
}

// AccessibleState defines the interface exposed to stateful precompile contracts
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}

// BlockContext defines an interface that provides information to a stateful precompile
// about the block in which it executes. The precompile can access this information
// to validate time-bound operations and stamp emitted logs.
type BlockContext interface {
	Number() *big.Int
	Timestamp() *big.Int
}

// ChainConfig provides chain-level information to a stateful precompile
// while it is being configured.
type ChainConfig interface {
	// ChainID returns the chain id that EIP-712 domains bind to.
	ChainID() *big.Int
}

type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(
		chainConfig ChainConfig,
		precompileConfig precompileconfig.Config,
		state StateDB,
		blockContext BlockContext,
	) error
}
