// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"errors"
	"fmt"
	"math/big"

	_ "embed"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/fragmentfi/fragment-evm/precompile/allowlist"
	"github.com/fragmentfi/fragment-evm/precompile/contract"
)

const (
	NameGasCost            uint64 = 2 * contract.ReadGasCostPerSlot
	SymbolGasCost          uint64 = 2 * contract.ReadGasCostPerSlot
	DecimalsGasCost        uint64 = contract.ReadGasCostPerSlot
	TotalSupplyGasCost     uint64 = contract.ReadGasCostPerSlot
	BalanceOfGasCost       uint64 = contract.ReadGasCostPerSlot
	AllowanceGasCost       uint64 = contract.ReadGasCostPerSlot
	NoncesGasCost          uint64 = contract.ReadGasCostPerSlot
	DomainSeparatorGasCost uint64 = 3 * contract.ReadGasCostPerSlot

	ApproveGasCost           uint64 = contract.WriteGasCostPerSlot + ApprovalEventGasCost
	IncreaseAllowanceGasCost uint64 = contract.ReadGasCostPerSlot + contract.WriteGasCostPerSlot + ApprovalEventGasCost
	DecreaseAllowanceGasCost uint64 = contract.ReadGasCostPerSlot + contract.WriteGasCostPerSlot + ApprovalEventGasCost
	TransferGasCost          uint64 = 2*contract.ReadGasCostPerSlot + 2*contract.WriteGasCostPerSlot + TransferEventGasCost
	TransferFromGasCost      uint64 = 3*contract.ReadGasCostPerSlot + 3*contract.WriteGasCostPerSlot + TransferEventGasCost
	MintGasCost              uint64 = allowlist.ReadAllowListGasCost + 2*contract.ReadGasCostPerSlot + 2*contract.WriteGasCostPerSlot + TransferEventGasCost

	// permit reads the token metadata and the owner nonce, pays for one
	// ecrecover, then writes the nonce and the allowance.
	PermitGasCost uint64 = contract.EcrecoverGasCost + 4*contract.ReadGasCostPerSlot + 2*contract.WriteGasCostPerSlot + ApprovalEventGasCost
)

var (
	// Singleton StatefulPrecompiledContract for the permit-enabled token.
	FragTokenPrecompile contract.StatefulPrecompiledContract = createFragTokenPrecompile()

	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")
	ErrAllowanceOverflow     = errors.New("allowance overflow")
	ErrAllowanceBelowZero    = errors.New("decreased allowance below zero")
	ErrSupplyOverflow        = errors.New("total supply overflow")
	ErrCannotMint            = errors.New("non-enabled cannot mint")
	ErrPermitExpired         = errors.New("permit expired")
	ErrZeroAddress           = errors.New("zero address not allowed")

	// FragTokenRawABI contains the raw ABI of the FragToken contract.
	//go:embed contract.abi
	FragTokenRawABI string

	FragTokenABI = contract.ParseABI(FragTokenRawABI)

	// unconsumable sentinel: an allowance of 2^256-1 is treated as infinite
	// and is not decremented by transferFrom.
	maxAllowance = new(uint256.Int).Not(uint256.NewInt(0))
)

func unpackAddress(val interface{}) common.Address {
	return *abi.ConvertType(val, new(common.Address)).(*common.Address)
}

func unpackBig(val interface{}) *big.Int {
	return *abi.ConvertType(val, new(*big.Int)).(**big.Int)
}

func toWord(amount *big.Int) *uint256.Int {
	word, _ := uint256.FromBig(amount)
	return word
}

// ---- views --------------------------------------------------------------

// PackName packs the include selector (first 4 func signature bytes).
// This function is mostly used for tests.
func PackName() ([]byte, error) {
	return FragTokenABI.Pack("name")
}

// PackNameOutput attempts to pack given [name] of type string
// to conform the ABI outputs.
func PackNameOutput(name string) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "name", name)
}

func name(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, NameGasCost); err != nil {
		return nil, 0, err
	}
	packedOutput, err := PackNameOutput(GetTokenName(accessibleState.GetStateDB()))
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackSymbol packs the include selector (first 4 func signature bytes).
// This function is mostly used for tests.
func PackSymbol() ([]byte, error) {
	return FragTokenABI.Pack("symbol")
}

// PackSymbolOutput attempts to pack given [symbol] of type string
// to conform the ABI outputs.
func PackSymbolOutput(symbol string) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "symbol", symbol)
}

func symbol(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, SymbolGasCost); err != nil {
		return nil, 0, err
	}
	packedOutput, err := PackSymbolOutput(GetTokenSymbol(accessibleState.GetStateDB()))
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackDecimals packs the include selector (first 4 func signature bytes).
// This function is mostly used for tests.
func PackDecimals() ([]byte, error) {
	return FragTokenABI.Pack("decimals")
}

// PackDecimalsOutput attempts to pack given [decimals] of type uint8
// to conform the ABI outputs.
func PackDecimalsOutput(decimals uint8) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "decimals", decimals)
}

func decimals(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, DecimalsGasCost); err != nil {
		return nil, 0, err
	}
	packedOutput, err := PackDecimalsOutput(GetTokenDecimals(accessibleState.GetStateDB()))
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackTotalSupply packs the include selector (first 4 func signature bytes).
// This function is mostly used for tests.
func PackTotalSupply() ([]byte, error) {
	return FragTokenABI.Pack("totalSupply")
}

// PackTotalSupplyOutput attempts to pack given [totalSupply] of type *big.Int
// to conform the ABI outputs.
func PackTotalSupplyOutput(totalSupply *big.Int) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "totalSupply", totalSupply)
}

func totalSupply(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, TotalSupplyGasCost); err != nil {
		return nil, 0, err
	}
	packedOutput, err := PackTotalSupplyOutput(GetTotalSupply(accessibleState.GetStateDB()).ToBig())
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackBalanceOf packs [account] into the appropriate arguments for balanceOf.
func PackBalanceOf(account common.Address) ([]byte, error) {
	return FragTokenABI.Pack("balanceOf", account)
}

// PackBalanceOfOutput attempts to pack given [balance] of type *big.Int
// to conform the ABI outputs.
func PackBalanceOfOutput(balance *big.Int) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "balanceOf", balance)
}

func balanceOf(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, BalanceOfGasCost); err != nil {
		return nil, 0, err
	}
	res, err := contract.UnpackInput(FragTokenABI, "balanceOf", input)
	if err != nil {
		return nil, remainingGas, err
	}
	account := unpackAddress(res[0])

	packedOutput, err := PackBalanceOfOutput(GetBalance(accessibleState.GetStateDB(), account).ToBig())
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackAllowance packs [owner] and [spender] into the appropriate arguments for allowance.
func PackAllowance(owner common.Address, spender common.Address) ([]byte, error) {
	return FragTokenABI.Pack("allowance", owner, spender)
}

// PackAllowanceOutput attempts to pack given [amount] of type *big.Int
// to conform the ABI outputs.
func PackAllowanceOutput(amount *big.Int) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "allowance", amount)
}

func allowance(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, AllowanceGasCost); err != nil {
		return nil, 0, err
	}
	res, err := contract.UnpackInput(FragTokenABI, "allowance", input)
	if err != nil {
		return nil, remainingGas, err
	}
	owner := unpackAddress(res[0])
	spender := unpackAddress(res[1])

	packedOutput, err := PackAllowanceOutput(GetAllowance(accessibleState.GetStateDB(), owner, spender).ToBig())
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackNonces packs [owner] into the appropriate arguments for nonces.
func PackNonces(owner common.Address) ([]byte, error) {
	return FragTokenABI.Pack("nonces", owner)
}

// PackNoncesOutput attempts to pack given [nonce] of type *big.Int
// to conform the ABI outputs.
func PackNoncesOutput(nonce *big.Int) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "nonces", nonce)
}

func nonces(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, NoncesGasCost); err != nil {
		return nil, 0, err
	}
	res, err := contract.UnpackInput(FragTokenABI, "nonces", input)
	if err != nil {
		return nil, remainingGas, err
	}
	owner := unpackAddress(res[0])

	packedOutput, err := PackNoncesOutput(GetPermitNonce(accessibleState.GetStateDB(), owner).ToBig())
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackDomainSeparator packs the include selector (first 4 func signature bytes).
// This function is mostly used for tests.
func PackDomainSeparator() ([]byte, error) {
	return FragTokenABI.Pack("DOMAIN_SEPARATOR")
}

// PackDomainSeparatorOutput attempts to pack given [separator] of type common.Hash
// to conform the ABI outputs.
func PackDomainSeparatorOutput(separator common.Hash) ([]byte, error) {
	return contract.PackOutput(FragTokenABI, "DOMAIN_SEPARATOR", [32]byte(separator))
}

func domainSeparator(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, DomainSeparatorGasCost); err != nil {
		return nil, 0, err
	}
	packedOutput, err := PackDomainSeparatorOutput(ComputeDomainSeparator(accessibleState.GetStateDB()))
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// ---- approvals ----------------------------------------------------------

// PackApprove packs [spender] and [amount] into the appropriate arguments for approve.
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("approve", spender, amount)
}

func setAllowanceAndLog(accessibleState contract.AccessibleState, owner common.Address, spender common.Address, amount *uint256.Int) {
	stateDB := accessibleState.GetStateDB()
	SetAllowance(stateDB, owner, spender, amount)

	topics, data := PackApprovalEvent(owner, spender, amount)
	stateDB.AddLog(&types.Log{
		Address:     ContractAddress,
		Topics:      topics,
		Data:        data,
		BlockNumber: accessibleState.GetBlockContext().Number().Uint64(),
	})
}

func approve(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, ApproveGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "approve", input)
	if err != nil {
		return nil, remainingGas, err
	}
	spender := unpackAddress(res[0])
	amount := toWord(unpackBig(res[1]))

	if spender == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	setAllowanceAndLog(accessibleState, caller, spender, amount)

	packedOutput, err := contract.PackOutput(FragTokenABI, "approve", true)
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackIncreaseAllowance packs [spender] and [addedValue] into the appropriate arguments for increaseAllowance.
func PackIncreaseAllowance(spender common.Address, addedValue *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("increaseAllowance", spender, addedValue)
}

func increaseAllowance(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, IncreaseAllowanceGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "increaseAllowance", input)
	if err != nil {
		return nil, remainingGas, err
	}
	spender := unpackAddress(res[0])
	addedValue := toWord(unpackBig(res[1]))

	if spender == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	stateDB := accessibleState.GetStateDB()
	current := GetAllowance(stateDB, caller, spender)
	updated, overflow := new(uint256.Int).AddOverflow(current, addedValue)
	if overflow {
		return nil, remainingGas, ErrAllowanceOverflow
	}

	setAllowanceAndLog(accessibleState, caller, spender, updated)

	packedOutput, err := contract.PackOutput(FragTokenABI, "increaseAllowance", true)
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackDecreaseAllowance packs [spender] and [subtractedValue] into the appropriate arguments for decreaseAllowance.
func PackDecreaseAllowance(spender common.Address, subtractedValue *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("decreaseAllowance", spender, subtractedValue)
}

func decreaseAllowance(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, DecreaseAllowanceGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "decreaseAllowance", input)
	if err != nil {
		return nil, remainingGas, err
	}
	spender := unpackAddress(res[0])
	subtractedValue := toWord(unpackBig(res[1]))

	stateDB := accessibleState.GetStateDB()
	current := GetAllowance(stateDB, caller, spender)
	updated, underflow := new(uint256.Int).SubOverflow(current, subtractedValue)
	if underflow {
		return nil, remainingGas, ErrAllowanceBelowZero
	}

	setAllowanceAndLog(accessibleState, caller, spender, updated)

	packedOutput, err := contract.PackOutput(FragTokenABI, "decreaseAllowance", true)
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// ---- transfers ----------------------------------------------------------

// PackTransfer packs [to] and [amount] into the appropriate arguments for transfer.
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("transfer", to, amount)
}

// moveBalance debits [from] and credits [to], emitting a Transfer log.
// The credit cannot overflow because the sum of all balances is bounded by
// the total supply.
func moveBalance(accessibleState contract.AccessibleState, from common.Address, to common.Address, amount *uint256.Int) error {
	stateDB := accessibleState.GetStateDB()
	fromBalance := GetBalance(stateDB, from)
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%w: balance %s, amount %s", ErrInsufficientBalance, fromBalance, amount)
	}
	SetBalance(stateDB, from, new(uint256.Int).Sub(fromBalance, amount))
	toBalance := GetBalance(stateDB, to)
	SetBalance(stateDB, to, new(uint256.Int).Add(toBalance, amount))

	topics, data := PackTransferEvent(from, to, amount)
	stateDB.AddLog(&types.Log{
		Address:     ContractAddress,
		Topics:      topics,
		Data:        data,
		BlockNumber: accessibleState.GetBlockContext().Number().Uint64(),
	})
	return nil
}

func transfer(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, TransferGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "transfer", input)
	if err != nil {
		return nil, remainingGas, err
	}
	to := unpackAddress(res[0])
	amount := toWord(unpackBig(res[1]))

	if to == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: recipient", ErrZeroAddress)
	}
	if err := moveBalance(accessibleState, caller, to, amount); err != nil {
		return nil, remainingGas, err
	}

	packedOutput, err := contract.PackOutput(FragTokenABI, "transfer", true)
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// PackTransferFrom packs [from], [to] and [amount] into the appropriate arguments for transferFrom.
func PackTransferFrom(from common.Address, to common.Address, amount *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("transferFrom", from, to, amount)
}

func transferFrom(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, TransferFromGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "transferFrom", input)
	if err != nil {
		return nil, remainingGas, err
	}
	from := unpackAddress(res[0])
	to := unpackAddress(res[1])
	amount := toWord(unpackBig(res[2]))

	if to == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: recipient", ErrZeroAddress)
	}

	stateDB := accessibleState.GetStateDB()
	currentAllowance := GetAllowance(stateDB, from, caller)
	if currentAllowance.Lt(amount) {
		return nil, remainingGas, fmt.Errorf("%w: allowance %s, amount %s", ErrInsufficientAllowance, currentAllowance, amount)
	}

	if err := moveBalance(accessibleState, from, to, amount); err != nil {
		return nil, remainingGas, err
	}

	// An infinite allowance is never consumed.
	if !currentAllowance.Eq(maxAllowance) {
		setAllowanceAndLog(accessibleState, from, caller, new(uint256.Int).Sub(currentAllowance, amount))
	}

	packedOutput, err := contract.PackOutput(FragTokenABI, "transferFrom", true)
	if err != nil {
		return nil, remainingGas, err
	}
	return packedOutput, remainingGas, nil
}

// ---- minting ------------------------------------------------------------

// PackMint packs [to] and [amount] into the appropriate arguments for mint.
func PackMint(to common.Address, amount *big.Int) ([]byte, error) {
	return FragTokenABI.Pack("mint", to, amount)
}

// mintTo credits [amount] to [to] and grows the total supply. Used by both
// the mint function and the initial-supply configuration path.
func mintTo(stateDB contract.StateDB, to common.Address, amount *uint256.Int) error {
	supply := GetTotalSupply(stateDB)
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	SetTotalSupply(stateDB, newSupply)
	balance := GetBalance(stateDB, to)
	SetBalance(stateDB, to, new(uint256.Int).Add(balance, amount))
	return nil
}

func mint(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, MintGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "mint", input)
	if err != nil {
		return nil, remainingGas, err
	}
	to := unpackAddress(res[0])
	amount := toWord(unpackBig(res[1]))

	if to == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: recipient", ErrZeroAddress)
	}

	stateDB := accessibleState.GetStateDB()
	// Verify that the caller is in the allow list and therefore has the right to mint.
	callerStatus := allowlist.GetAllowListStatus(stateDB, ContractAddress, caller)
	if !callerStatus.IsEnabled() {
		return nil, remainingGas, fmt.Errorf("%w: %s", ErrCannotMint, caller)
	}

	if err := mintTo(stateDB, to, amount); err != nil {
		return nil, remainingGas, err
	}

	topics, data := PackTransferEvent(common.Address{}, to, amount)
	stateDB.AddLog(&types.Log{
		Address:     ContractAddress,
		Topics:      topics,
		Data:        data,
		BlockNumber: accessibleState.GetBlockContext().Number().Uint64(),
	})

	return []byte{}, remainingGas, nil
}

// ---- permit -------------------------------------------------------------

// PackPermit packs the permit arguments including the signature tuple.
func PackPermit(owner common.Address, spender common.Address, value *big.Int, deadline *big.Int, v uint8, r common.Hash, s common.Hash) ([]byte, error) {
	return FragTokenABI.Pack("permit", owner, spender, value, deadline, v, [32]byte(r), [32]byte(s))
}

// applyPermit validates an off-chain signed approval and applies it. The digest is
// recomputed from contract state so a signature only verifies against the
// exact owner, spender, value, live nonce and deadline it was produced for.
func applyPermit(accessibleState contract.AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	if remainingGas, err = contract.DeductGas(suppliedGas, PermitGasCost); err != nil {
		return nil, 0, err
	}
	if readOnly {
		return nil, remainingGas, vm.ErrWriteProtection
	}
	res, err := contract.UnpackInput(FragTokenABI, "permit", input)
	if err != nil {
		return nil, remainingGas, err
	}
	owner := unpackAddress(res[0])
	spender := unpackAddress(res[1])
	value := toWord(unpackBig(res[2]))
	deadline := toWord(unpackBig(res[3]))
	v := *abi.ConvertType(res[4], new(uint8)).(*uint8)
	r := common.Hash(*abi.ConvertType(res[5], new([32]byte)).(*[32]byte))
	s := common.Hash(*abi.ConvertType(res[6], new([32]byte)).(*[32]byte))

	if owner == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: owner", ErrInvalidSigner)
	}
	if spender == (common.Address{}) {
		return nil, remainingGas, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	timestamp := accessibleState.GetBlockContext().Timestamp()
	if timestamp.Cmp(deadline.ToBig()) > 0 {
		return nil, remainingGas, fmt.Errorf("%w: deadline %s, block time %s", ErrPermitExpired, deadline, timestamp)
	}

	stateDB := accessibleState.GetStateDB()
	nonce := GetPermitNonce(stateDB, owner)

	digest := PermitDigest(stateDB, owner, spender, value, nonce, deadline)
	signer, err := recoverPermitSigner(digest, v, r, s)
	if err != nil {
		return nil, remainingGas, err
	}
	if signer != owner {
		return nil, remainingGas, fmt.Errorf("%w: recovered %s, owner %s", ErrInvalidSigner, signer, owner)
	}

	// Consume the nonce before granting the allowance; an identical permit
	// can never be applied twice.
	SetPermitNonce(stateDB, owner, new(uint256.Int).AddUint64(nonce, 1))
	setAllowanceAndLog(accessibleState, owner, spender, value)

	return []byte{}, remainingGas, nil
}

// createFragTokenPrecompile returns a StatefulPrecompiledContract with the
// token functions and the allow list getters/setters for the mint surface.
func createFragTokenPrecompile() contract.StatefulPrecompiledContract {
	var functions []*contract.StatefulPrecompileFunction
	functions = append(functions, allowlist.CreateAllowListFunctions(ContractAddress)...)

	abiFunctionMap := map[string]contract.RunStatefulPrecompileFunc{
		"name":              name,
		"symbol":            symbol,
		"decimals":          decimals,
		"totalSupply":       totalSupply,
		"balanceOf":         balanceOf,
		"allowance":         allowance,
		"nonces":            nonces,
		"DOMAIN_SEPARATOR":  domainSeparator,
		"approve":           approve,
		"increaseAllowance": increaseAllowance,
		"decreaseAllowance": decreaseAllowance,
		"transfer":          transfer,
		"transferFrom":      transferFrom,
		"mint":              mint,
		"permit":            applyPermit,
	}

	for fnName, function := range abiFunctionMap {
		method, ok := FragTokenABI.Methods[fnName]
		if !ok {
			panic(fmt.Errorf("given method (%s) does not exist in the ABI", fnName))
		}
		functions = append(functions, contract.NewStatefulPrecompileFunction(method.ID, function))
	}

	// Construct the contract with no fallback function.
	statefulContract, err := contract.NewStatefulPrecompileContract(nil, functions)
	if err != nil {
		panic(err)
	}
	return statefulContract
}
