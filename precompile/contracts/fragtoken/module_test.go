// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/fragmentfi/fragment-evm/precompile/allowlist"
	"github.com/fragmentfi/fragment-evm/precompile/contract"
	"github.com/fragmentfi/fragment-evm/precompile/modules"
	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
	"github.com/fragmentfi/fragment-evm/precompile/precompiletest"
)

func TestModuleRegistered(t *testing.T) {
	require := require.New(t)

	module, ok := modules.GetPrecompileModule(ConfigKey)
	require.True(ok)
	require.Equal(ContractAddress, module.Address)

	module, ok = modules.GetPrecompileModuleByAddress(ContractAddress)
	require.True(ok)
	require.Equal(ConfigKey, module.ConfigKey)
}

func TestConfigure(t *testing.T) {
	require := require.New(t)

	stateDB := precompiletest.NewTestStateDB(t)
	chainConfig := contract.NewMockChainConfig(big.NewInt(43114))
	blockContext := contract.NewMockBlockContext(big.NewInt(1), 0)

	err := Module.Configure(chainConfig, testConfig(), stateDB, blockContext)
	require.NoError(err)

	require.Equal("Fragment", GetTokenName(stateDB))
	require.Equal("FRAG", GetTokenSymbol(stateDB))
	require.Equal(uint8(18), GetTokenDecimals(stateDB))
	// the EIP-712 domain binds to the configuring chain's id
	require.Equal(big.NewInt(43114), GetChainID(stateDB))

	require.Equal(uint256.MustFromBig(initialSupply), GetTotalSupply(stateDB))
	require.Equal(uint256.MustFromBig(initialSupply), GetBalance(stateDB, ownerAddr))

	require.Equal(allowlist.AdminRole, allowlist.GetAllowListStatus(stateDB, ContractAddress, adminAddr))
	require.Equal(allowlist.EnabledRole, allowlist.GetAllowListStatus(stateDB, ContractAddress, enabledAddr))
	require.Equal(allowlist.NoRole, allowlist.GetAllowListStatus(stateDB, ContractAddress, noRoleAddr))
}

func TestConfigureRejectsForeignConfig(t *testing.T) {
	stateDB := precompiletest.NewTestStateDB(t)
	err := Module.Configure(
		contract.NewMockChainConfig(big.NewInt(1)),
		precompileconfig.NewNoopStatefulPrecompileConfig(),
		stateDB,
		contract.NewMockBlockContext(big.NewInt(1), 0),
	)
	require.ErrorContains(t, err, "incorrect config")
}
