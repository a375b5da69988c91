// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestInsertSortedByAddress(t *testing.T) {
	data := make([]Module, 0)
	// test that the module is registered in sorted order
	module1 := Module{
		Address: common.BigToAddress(common.Big1),
	}
	data = insertSortedByAddress(data, module1)
	require.Equal(t, []Module{module1}, data)

	module0 := Module{
		Address: common.BigToAddress(common.Big0),
	}
	data = insertSortedByAddress(data, module0)
	require.Equal(t, []Module{module0, module1}, data)

	module3 := Module{
		Address: common.BigToAddress(common.Big3),
	}
	data = insertSortedByAddress(data, module3)
	require.Equal(t, []Module{module0, module1, module3}, data)

	module2 := Module{
		Address: common.BigToAddress(common.Big2),
	}
	data = insertSortedByAddress(data, module2)
	require.Equal(t, []Module{module0, module1, module2, module3}, data)
}

func TestRegisterModule(t *testing.T) {
	require := require.New(t)

	// address outside the reserved ranges is rejected
	err := RegisterModule(Module{
		ConfigKey: "outsideReserved",
		Address:   common.HexToAddress("0x1234567890123456789012345678901234567890"),
	})
	require.ErrorContains(err, "not in a reserved range")

	m := Module{
		ConfigKey: "registryTestConfig",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000fe"),
	}
	require.NoError(RegisterModule(m))

	// duplicate key
	err = RegisterModule(Module{
		ConfigKey: "registryTestConfig",
		Address:   common.HexToAddress("0x02000000000000000000000000000000000000fd"),
	})
	require.ErrorContains(err, "already used")

	// duplicate address
	err = RegisterModule(Module{
		ConfigKey: "registryTestConfigOther",
		Address:   m.Address,
	})
	require.ErrorContains(err, "already used")

	got, ok := GetPrecompileModule("registryTestConfig")
	require.True(ok)
	require.Equal(m.Address, got.Address)

	got, ok = GetPrecompileModuleByAddress(m.Address)
	require.True(ok)
	require.Equal(m.ConfigKey, got.ConfigKey)

	_, ok = GetPrecompileModule("neverRegistered")
	require.False(ok)
}

func TestReservedAddress(t *testing.T) {
	require := require.New(t)

	require.True(ReservedAddress(common.HexToAddress("0x0100000000000000000000000000000000000000")))
	require.True(ReservedAddress(common.HexToAddress("0x01000000000000000000000000000000000000ff")))
	require.True(ReservedAddress(common.HexToAddress("0x0200000000000000000000000000000000000005")))
	require.False(ReservedAddress(common.HexToAddress("0x0100000000000000000000000000000000000100")))
	require.False(ReservedAddress(common.Address{}))
}
