// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
	"github.com/fragmentfi/fragment-evm/precompile/modules"
	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
)

var _ contract.Configurator = &configurator{}

// ConfigKey is the key used in json config files to specify this precompile
// config.
const ConfigKey = "fragTokenConfig"

// ContractAddress is the defined address of the token precompile.
var ContractAddress = common.HexToAddress("0x0200000000000000000000000000000000000005")

// Module is the precompile module. It is used to register the precompile contract.
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     FragTokenPrecompile,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

// MakeConfig returns a new precompile config instance.
// This is required to Marshal/Unmarshal the precompile config.
func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

// Configure configures [state] with the given [cfg] precompileconfig.
// This function is called by the EVM once per precompile contract activation.
func (*configurator) Configure(chainConfig contract.ChainConfig, cfg precompileconfig.Config, state contract.StateDB, blockContext contract.BlockContext) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("incorrect config %T: %v", config, config)
	}

	if config.TokenConfig != nil {
		StoreTokenMetadata(state, config.TokenConfig.Name, config.TokenConfig.Symbol, config.TokenConfig.Decimals, chainConfig.ChainID())
		if config.TokenConfig.InitialSupply != nil && config.TokenConfig.InitialSupply.Sign() > 0 {
			supply, _ := uint256.FromBig(config.TokenConfig.InitialSupply)
			if err := mintTo(state, config.TokenConfig.InitialHolder, supply); err != nil {
				return err
			}
		}
	}

	return config.AllowListConfig.Configure(state, ContractAddress)
}
