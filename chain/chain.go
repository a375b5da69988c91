// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain is a minimal execution harness for stateful precompiles. It
// owns an in-memory StateDB, activates precompile modules from their upgrade
// configs at the scheduled timestamps, and dispatches calls with the revert
// semantics callers expect from on-chain execution: a failed call rolls the
// state back to the pre-call snapshot.
package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
	"github.com/fragmentfi/fragment-evm/precompile/modules"
	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
)

var (
	ErrUnknownPrecompile  = errors.New("no precompile deployed at address")
	ErrPrecompileDisabled = errors.New("precompile is disabled")
	ErrTimeReversal       = errors.New("cannot adjust time backwards")
)

// Chain executes precompile calls against an in-memory state.
type Chain struct {
	chainID     *big.Int
	stateDB     *state.StateDB
	blockNumber *big.Int
	blockTime   uint64
	active      map[common.Address]modules.Module
	disabled    map[common.Address]bool
	log         *zap.Logger
}

// New returns a Chain at block 1 with an empty state.
func New(chainID *big.Int, blockTime uint64, log *zap.Logger) (*Chain, error) {
	stateDB, err := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	if err != nil {
		return nil, fmt.Errorf("creating state: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{
		chainID:     chainID,
		stateDB:     stateDB,
		blockNumber: big.NewInt(1),
		blockTime:   blockTime,
		active:      make(map[common.Address]modules.Module),
		disabled:    make(map[common.Address]bool),
		log:         log,
	}, nil
}

// ChainID returns the chain id precompile EIP-712 domains bind to.
func (c *Chain) ChainID() *big.Int { return c.chainID }

// BlockTime returns the current block timestamp.
func (c *Chain) BlockTime() uint64 { return c.blockTime }

// StateDB exposes the underlying state for test assertions.
func (c *Chain) StateDB() contract.StateDB { return c.stateDB }

// Logs returns all logs emitted so far.
func (c *Chain) Logs() []*types.Log { return c.stateDB.Logs() }

// Deploy activates the registered precompile configured by [cfg] once the
// chain reaches the config's activation timestamp. Deploying with a disable
// config tears the precompile down instead.
func (c *Chain) Deploy(cfg precompileconfig.Config) error {
	module, ok := modules.GetPrecompileModule(cfg.Key())
	if !ok {
		return fmt.Errorf("%w: config key %q", ErrUnknownPrecompile, cfg.Key())
	}
	if err := cfg.Verify(); err != nil {
		return fmt.Errorf("verifying %q config: %w", cfg.Key(), err)
	}

	activation := cfg.Timestamp()
	if activation == nil {
		c.log.Info("precompile never activates", zap.String("configKey", cfg.Key()))
		return nil
	}
	if *activation > c.blockTime {
		c.blockTime = *activation
	}

	if cfg.IsDisabled() {
		delete(c.active, module.Address)
		c.disabled[module.Address] = true
		c.log.Info("precompile disabled",
			zap.String("configKey", cfg.Key()),
			zap.Stringer("address", module.Address),
		)
		return nil
	}

	if !c.stateDB.Exist(module.Address) {
		c.stateDB.CreateAccount(module.Address)
	}
	if err := module.Configure(c, cfg, c.stateDB, c.blockContext()); err != nil {
		return fmt.Errorf("configuring %q: %w", cfg.Key(), err)
	}
	c.active[module.Address] = module
	delete(c.disabled, module.Address)
	c.log.Info("precompile activated",
		zap.String("configKey", cfg.Key()),
		zap.Stringer("address", module.Address),
		zap.Uint64("blockTime", c.blockTime),
	)
	return nil
}

// AdjustTime moves the block time forward to [timestamp] and advances one block.
func (c *Chain) AdjustTime(timestamp uint64) error {
	if timestamp < c.blockTime {
		return fmt.Errorf("%w: current %d, requested %d", ErrTimeReversal, c.blockTime, timestamp)
	}
	c.blockTime = timestamp
	c.blockNumber = new(big.Int).Add(c.blockNumber, common.Big1)
	return nil
}

// Call runs a read-only call from [caller] to the precompile at [addr].
// State writes are rejected with vm.ErrWriteProtection.
func (c *Chain) Call(caller common.Address, addr common.Address, input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	return c.run(caller, addr, input, suppliedGas, true)
}

// Exec runs a state-mutating call from [caller] to the precompile at [addr].
// If the call errors, every state change it made is reverted.
func (c *Chain) Exec(caller common.Address, addr common.Address, input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	return c.run(caller, addr, input, suppliedGas, false)
}

func (c *Chain) run(caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	module, ok := c.active[addr]
	if !ok {
		if c.disabled[addr] {
			return nil, suppliedGas, fmt.Errorf("%w: %s", ErrPrecompileDisabled, addr)
		}
		return nil, suppliedGas, fmt.Errorf("%w: %s", ErrUnknownPrecompile, addr)
	}

	snapshot := c.stateDB.Snapshot()
	accessibleState := contract.NewMockAccessibleState(c.stateDB, c.blockContext())
	ret, remainingGas, err := module.Contract.Run(accessibleState, caller, addr, input, suppliedGas, readOnly)
	if err != nil {
		c.stateDB.RevertToSnapshot(snapshot)
		c.log.Debug("precompile call reverted",
			zap.Stringer("caller", caller),
			zap.Stringer("address", addr),
			zap.Error(err),
		)
		return nil, remainingGas, err
	}
	if !readOnly {
		c.blockNumber = new(big.Int).Add(c.blockNumber, common.Big1)
	}
	return ret, remainingGas, nil
}

func (c *Chain) blockContext() contract.BlockContext {
	return contract.NewMockBlockContext(c.blockNumber, c.blockTime)
}
