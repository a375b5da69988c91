// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package precompiletest

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/stretchr/testify/require"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
	"github.com/fragmentfi/fragment-evm/precompile/modules"
	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
)

// PrecompileTest is a test case for a stateful precompile.
type PrecompileTest struct {
	// Caller is the address of the precompile caller
	Caller common.Address
	// Input the raw input bytes to the precompile
	Input []byte
	// InputFn is a function to generate the input. If specified, Input will be ignored.
	InputFn func(t *testing.T) []byte
	// SuppliedGas is the amount of gas supplied to the precompile
	SuppliedGas uint64
	// ReadOnly specifies whether the call should be considered read only.
	ReadOnly bool
	// Config is the config to configure the precompile with before running the test.
	// If nil, the precompile will not be configured.
	Config precompileconfig.Config
	// BeforeHook is run before the precompile is called.
	BeforeHook func(t *testing.T, state contract.StateDB)
	// AfterHook is run after the precompile is called.
	AfterHook func(t *testing.T, state contract.StateDB)
	// ExpectedRes is the expected raw byte result returned by the precompile
	ExpectedRes []byte
	// ExpectedErr is the expected error returned by the precompile
	ExpectedErr string
	// BlockNumber is the block number to use for the precompile's block context
	BlockNumber int64
	// BlockTime is the block timestamp to use for the precompile's block context
	BlockTime uint64
	// ChainID is the chain id used while configuring the precompile
	ChainID *big.Int
}

// NewTestStateDB returns an empty in-memory StateDB for precompile tests.
func NewTestStateDB(t *testing.T) contract.StateDB {
	db := rawdb.NewMemoryDatabase()
	stateDB, err := state.New(common.Hash{}, state.NewDatabase(db), nil)
	require.NoError(t, err)
	return stateDB
}

// Run executes [test] against the precompile of [module] on [stateDB].
func (test PrecompileTest) Run(t *testing.T, module modules.Module, stateDB contract.StateDB) {
	t.Helper()

	blockContext := contract.NewMockBlockContext(big.NewInt(test.BlockNumber), test.BlockTime)

	if test.Config != nil {
		chainID := test.ChainID
		if chainID == nil {
			chainID = big.NewInt(1)
		}
		err := module.Configure(contract.NewMockChainConfig(chainID), test.Config, stateDB, blockContext)
		require.NoError(t, err)
	}

	if test.BeforeHook != nil {
		test.BeforeHook(t, stateDB)
	}

	input := test.Input
	if test.InputFn != nil {
		input = test.InputFn(t)
	}

	if input != nil {
		accessibleState := contract.NewMockAccessibleState(stateDB, blockContext)
		ret, remainingGas, err := module.Contract.Run(accessibleState, test.Caller, module.Address, input, test.SuppliedGas, test.ReadOnly)
		if len(test.ExpectedErr) != 0 {
			require.ErrorContains(t, err, test.ExpectedErr)
		} else {
			require.NoError(t, err)
		}
		require.Equal(t, uint64(0), remainingGas)
		require.Equal(t, test.ExpectedRes, ret)
	}

	if test.AfterHook != nil {
		test.AfterHook(t, stateDB)
	}
}

// RunPrecompileTests runs the map of tests, each against a fresh StateDB.
func RunPrecompileTests(t *testing.T, module modules.Module, tests map[string]PrecompileTest) {
	t.Helper()

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.Run(t, module, NewTestStateDB(t))
		})
	}
}
