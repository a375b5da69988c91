// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/fragmentfi/fragment-evm/permit"
	"github.com/fragmentfi/fragment-evm/precompile/allowlist"
	"github.com/fragmentfi/fragment-evm/precompile/contract"
	"github.com/fragmentfi/fragment-evm/precompile/precompiletest"
)

var (
	ownerKey, _   = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	ownerAddr     = crypto.PubkeyToAddress(ownerKey.PublicKey)
	spenderKey, _ = crypto.HexToECDSA("8a1f9a8f95be41cd7ccb6168179afb4504aefe388d1e14474d32c45c72ce7b7a")
	spenderAddr   = crypto.PubkeyToAddress(spenderKey.PublicKey)

	adminAddr   = common.HexToAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC")
	enabledAddr = common.HexToAddress("0x9632a79656af553F58738B0FB750320158495942")
	noRoleAddr  = common.HexToAddress("0x55ee05dF718f1a5C1441e76190EB1a19eE2C9430")

	initialSupply = big.NewInt(1_000_000)

	zeroTime uint64 = 0
)

func testConfig() *Config {
	return NewConfig(&zeroTime, []common.Address{adminAddr}, []common.Address{enabledAddr}, &TokenConfig{
		Name:          "Fragment",
		Symbol:        "FRAG",
		Decimals:      18,
		InitialSupply: initialSupply,
		InitialHolder: ownerAddr,
	})
}

func testDomain() permit.Domain {
	return permit.Domain{
		Name:              "Fragment",
		ChainID:           big.NewInt(1),
		VerifyingContract: ContractAddress,
	}
}

func signedPermitInput(t *testing.T, value *big.Int, nonce *big.Int, deadline *big.Int) []byte {
	t.Helper()
	sig, err := permit.Sign(ownerKey, testDomain(), permit.Message{
		Owner:    ownerAddr,
		Spender:  spenderAddr,
		Value:    value,
		Nonce:    nonce,
		Deadline: deadline,
	})
	require.NoError(t, err)
	input, err := PackPermit(ownerAddr, spenderAddr, value, deadline, sig.V, sig.R, sig.S)
	require.NoError(t, err)
	return input
}

func mustPack(t *testing.T, fn func() ([]byte, error)) []byte {
	t.Helper()
	b, err := fn()
	require.NoError(t, err)
	return b
}

func TestFragTokenRun(t *testing.T) {
	trueOutput := common.BigToHash(common.Big1).Bytes()

	tests := map[string]precompiletest.PrecompileTest{
		"name": {
			Caller:      noRoleAddr,
			Config:      testConfig(),
			InputFn:     func(t *testing.T) []byte { return mustPack(t, PackName) },
			SuppliedGas: NameGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackNameOutput("Fragment"); return out }(),
		},
		"symbol": {
			Caller:      noRoleAddr,
			Config:      testConfig(),
			InputFn:     func(t *testing.T) []byte { return mustPack(t, PackSymbol) },
			SuppliedGas: SymbolGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackSymbolOutput("FRAG"); return out }(),
		},
		"decimals": {
			Caller:      noRoleAddr,
			Config:      testConfig(),
			InputFn:     func(t *testing.T) []byte { return mustPack(t, PackDecimals) },
			SuppliedGas: DecimalsGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackDecimalsOutput(18); return out }(),
		},
		"total supply reflects initial mint": {
			Caller:      noRoleAddr,
			Config:      testConfig(),
			InputFn:     func(t *testing.T) []byte { return mustPack(t, PackTotalSupply) },
			SuppliedGas: TotalSupplyGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackTotalSupplyOutput(initialSupply); return out }(),
		},
		"balance of initial holder": {
			Caller: noRoleAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackBalanceOf(ownerAddr) })
			},
			SuppliedGas: BalanceOfGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackBalanceOfOutput(initialSupply); return out }(),
		},
		"nonces start at zero": {
			Caller: noRoleAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackNonces(ownerAddr) })
			},
			SuppliedGas: NoncesGasCost,
			ReadOnly:    true,
			ExpectedRes: func() []byte { out, _ := PackNoncesOutput(common.Big0); return out }(),
		},
		"approve": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackApprove(spenderAddr, big.NewInt(500)) })
			},
			SuppliedGas: ApproveGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(500), GetAllowance(state, ownerAddr, spenderAddr))
			},
		},
		"approve zero spender": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackApprove(common.Address{}, big.NewInt(500)) })
			},
			SuppliedGas: ApproveGasCost,
			ExpectedErr: ErrZeroAddress.Error(),
		},
		"approve read only": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackApprove(spenderAddr, big.NewInt(500)) })
			},
			SuppliedGas: ApproveGasCost,
			ReadOnly:    true,
			ExpectedErr: vm.ErrWriteProtection.Error(),
		},
		"approve insufficient gas": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackApprove(spenderAddr, big.NewInt(500)) })
			},
			SuppliedGas: ApproveGasCost - 1,
			ExpectedErr: vm.ErrOutOfGas.Error(),
		},
		"increase allowance": {
			Caller: ownerAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, uint256.NewInt(100))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackIncreaseAllowance(spenderAddr, big.NewInt(50)) })
			},
			SuppliedGas: IncreaseAllowanceGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(150), GetAllowance(state, ownerAddr, spenderAddr))
			},
		},
		"decrease allowance": {
			Caller: ownerAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, uint256.NewInt(100))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackDecreaseAllowance(spenderAddr, big.NewInt(40)) })
			},
			SuppliedGas: DecreaseAllowanceGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(60), GetAllowance(state, ownerAddr, spenderAddr))
			},
		},
		"decrease allowance below zero": {
			Caller: ownerAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, uint256.NewInt(30))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackDecreaseAllowance(spenderAddr, big.NewInt(40)) })
			},
			SuppliedGas: DecreaseAllowanceGasCost,
			ExpectedErr: ErrAllowanceBelowZero.Error(),
		},
		"transfer": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransfer(spenderAddr, big.NewInt(250)) })
			},
			SuppliedGas: TransferGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(250), GetBalance(state, spenderAddr))
				expected := new(uint256.Int).SubUint64(uint256.MustFromBig(initialSupply), 250)
				require.Equal(t, expected, GetBalance(state, ownerAddr))
			},
		},
		"transfer exceeding balance": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransfer(ownerAddr, big.NewInt(1)) })
			},
			SuppliedGas: TransferGasCost,
			ExpectedErr: ErrInsufficientBalance.Error(),
		},
		"transfer to zero address": {
			Caller: ownerAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransfer(common.Address{}, big.NewInt(1)) })
			},
			SuppliedGas: TransferGasCost,
			ExpectedErr: ErrZeroAddress.Error(),
		},
		"transferFrom within allowance": {
			Caller: spenderAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, uint256.NewInt(300))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransferFrom(ownerAddr, noRoleAddr, big.NewInt(200)) })
			},
			SuppliedGas: TransferFromGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(200), GetBalance(state, noRoleAddr))
				require.Equal(t, uint256.NewInt(100), GetAllowance(state, ownerAddr, spenderAddr))
			},
		},
		"transferFrom exceeding allowance": {
			Caller: spenderAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, uint256.NewInt(100))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransferFrom(ownerAddr, noRoleAddr, big.NewInt(200)) })
			},
			SuppliedGas: TransferFromGasCost,
			ExpectedErr: ErrInsufficientAllowance.Error(),
		},
		"transferFrom infinite allowance not consumed": {
			Caller: spenderAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetAllowance(state, ownerAddr, spenderAddr, new(uint256.Int).Not(uint256.NewInt(0)))
			},
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackTransferFrom(ownerAddr, noRoleAddr, big.NewInt(200)) })
			},
			SuppliedGas: TransferFromGasCost,
			ExpectedRes: trueOutput,
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, new(uint256.Int).Not(uint256.NewInt(0)), GetAllowance(state, ownerAddr, spenderAddr))
			},
		},
		"mint by enabled": {
			Caller: enabledAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackMint(noRoleAddr, big.NewInt(777)) })
			},
			SuppliedGas: MintGasCost,
			ExpectedRes: []byte{},
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(777), GetBalance(state, noRoleAddr))
				expected := new(uint256.Int).AddUint64(uint256.MustFromBig(initialSupply), 777)
				require.Equal(t, expected, GetTotalSupply(state))
			},
		},
		"mint by admin": {
			Caller: adminAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackMint(adminAddr, big.NewInt(1)) })
			},
			SuppliedGas: MintGasCost,
			ExpectedRes: []byte{},
		},
		"mint denied for non-enabled": {
			Caller: noRoleAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackMint(noRoleAddr, big.NewInt(1)) })
			},
			SuppliedGas: MintGasCost,
			ExpectedErr: ErrCannotMint.Error(),
		},
		"mint read only": {
			Caller: enabledAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return mustPack(t, func() ([]byte, error) { return PackMint(noRoleAddr, big.NewInt(1)) })
			},
			SuppliedGas: MintGasCost,
			ReadOnly:    true,
			ExpectedErr: vm.ErrWriteProtection.Error(),
		},
		"set enabled through allow list": {
			Caller: adminAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				input, err := allowlist.PackModifyAllowList(noRoleAddr, allowlist.EnabledRole)
				require.NoError(t, err)
				return input
			},
			SuppliedGas: allowlist.ModifyAllowListGasCost,
			ExpectedRes: []byte{},
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, allowlist.EnabledRole, allowlist.GetAllowListStatus(state, ContractAddress, noRoleAddr))
			},
		},
		"allow list modification denied for non-admin": {
			Caller: enabledAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				input, err := allowlist.PackModifyAllowList(noRoleAddr, allowlist.EnabledRole)
				require.NoError(t, err)
				return input
			},
			SuppliedGas: allowlist.ModifyAllowListGasCost,
			ExpectedErr: allowlist.ErrCannotModifyAllowList.Error(),
		},
		"read allow list": {
			Caller:      noRoleAddr,
			Config:      testConfig(),
			InputFn:     func(t *testing.T) []byte { return allowlist.PackReadAllowList(enabledAddr) },
			SuppliedGas: allowlist.ReadAllowListGasCost,
			ReadOnly:    true,
			ExpectedRes: common.Hash(allowlist.EnabledRole).Bytes(),
		},
	}

	precompiletest.RunPrecompileTests(t, Module, tests)
}

func TestFragTokenPermit(t *testing.T) {
	tests := map[string]precompiletest.PrecompileTest{
		"permit grants allowance and bumps nonce": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(2_000))
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedRes: []byte{},
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.Equal(t, uint256.NewInt(100), GetAllowance(state, ownerAddr, spenderAddr))
				require.Equal(t, uint256.NewInt(1), GetPermitNonce(state, ownerAddr))
			},
		},
		"permit at exact deadline": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(1_000))
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedRes: []byte{},
		},
		"permit past deadline": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(999))
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedErr: ErrPermitExpired.Error(),
			AfterHook: func(t *testing.T, state contract.StateDB) {
				require.True(t, GetPermitNonce(state, ownerAddr).IsZero())
				require.True(t, GetAllowance(state, ownerAddr, spenderAddr).IsZero())
			},
		},
		"permit with stale nonce": {
			Caller: spenderAddr,
			Config: testConfig(),
			BeforeHook: func(t *testing.T, state contract.StateDB) {
				SetPermitNonce(state, ownerAddr, uint256.NewInt(1))
			},
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(2_000))
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedErr: ErrInvalidSigner.Error(),
		},
		"permit signed by another key": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				sig, err := permit.Sign(spenderKey, testDomain(), permit.Message{
					Owner:    ownerAddr,
					Spender:  spenderAddr,
					Value:    big.NewInt(100),
					Nonce:    common.Big0,
					Deadline: big.NewInt(2_000),
				})
				require.NoError(t, err)
				input, err := PackPermit(ownerAddr, spenderAddr, big.NewInt(100), big.NewInt(2_000), sig.V, sig.R, sig.S)
				require.NoError(t, err)
				return input
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedErr: ErrInvalidSigner.Error(),
		},
		"permit over tampered value": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				sig, err := permit.Sign(ownerKey, testDomain(), permit.Message{
					Owner:    ownerAddr,
					Spender:  spenderAddr,
					Value:    big.NewInt(100),
					Nonce:    common.Big0,
					Deadline: big.NewInt(2_000),
				})
				require.NoError(t, err)
				input, err := PackPermit(ownerAddr, spenderAddr, big.NewInt(100_000), big.NewInt(2_000), sig.V, sig.R, sig.S)
				require.NoError(t, err)
				return input
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedErr: ErrInvalidSigner.Error(),
		},
		"permit with malformed v": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				sig, err := permit.Sign(ownerKey, testDomain(), permit.Message{
					Owner:    ownerAddr,
					Spender:  spenderAddr,
					Value:    big.NewInt(100),
					Nonce:    common.Big0,
					Deadline: big.NewInt(2_000),
				})
				require.NoError(t, err)
				input, err := PackPermit(ownerAddr, spenderAddr, big.NewInt(100), big.NewInt(2_000), 26, sig.R, sig.S)
				require.NoError(t, err)
				return input
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ExpectedErr: ErrInvalidSignature.Error(),
		},
		"permit read only": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(2_000))
			},
			SuppliedGas: PermitGasCost,
			BlockTime:   1_000,
			ReadOnly:    true,
			ExpectedErr: vm.ErrWriteProtection.Error(),
		},
		"permit insufficient gas": {
			Caller: spenderAddr,
			Config: testConfig(),
			InputFn: func(t *testing.T) []byte {
				return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(2_000))
			},
			SuppliedGas: PermitGasCost - 1,
			BlockTime:   1_000,
			ExpectedErr: vm.ErrOutOfGas.Error(),
		},
	}

	precompiletest.RunPrecompileTests(t, Module, tests)
}

// A permit is bound to the live nonce, so replaying the identical input must
// fail once the first application consumed it.
func TestFragTokenPermitReplay(t *testing.T) {
	require := require.New(t)

	stateDB := precompiletest.NewTestStateDB(t)
	test := precompiletest.PrecompileTest{
		Caller: spenderAddr,
		Config: testConfig(),
		InputFn: func(t *testing.T) []byte {
			return signedPermitInput(t, big.NewInt(100), common.Big0, big.NewInt(2_000))
		},
		SuppliedGas: PermitGasCost,
		BlockTime:   1_000,
		ExpectedRes: []byte{},
	}
	test.Run(t, Module, stateDB)
	require.Equal(uint256.NewInt(1), GetPermitNonce(stateDB, ownerAddr))

	replay := test
	replay.Config = nil // already configured; replay against the same state
	replay.ExpectedRes = nil
	replay.ExpectedErr = ErrInvalidSigner.Error()
	replay.Run(t, Module, stateDB)
	require.Equal(uint256.NewInt(1), GetPermitNonce(stateDB, ownerAddr))
}
