// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
)

// Storage layout. Scalar token metadata lives in fixed slots; the balance,
// allowance and permit-nonce maps are keyed by hashing a per-map tag with the
// account addresses so the maps cannot collide.
var (
	nameKey        = common.Hash{'n', 'a', 'm', 'e'}
	nameLenKey     = common.Hash{'n', 'a', 'm', 'e', 'l'}
	symbolKey      = common.Hash{'s', 'y', 'm'}
	symbolLenKey   = common.Hash{'s', 'y', 'm', 'l'}
	decimalsKey    = common.Hash{'d', 'e', 'c'}
	totalSupplyKey = common.Hash{'t', 's'}
	chainIDKey     = common.Hash{'c', 'i', 'd'}

	balanceTag   = []byte("fragtoken.balance")
	allowanceTag = []byte("fragtoken.allowance")
	nonceTag     = []byte("fragtoken.nonce")
)

func balanceKey(account common.Address) common.Hash {
	return crypto.Keccak256Hash(balanceTag, account.Bytes())
}

func allowanceKey(owner common.Address, spender common.Address) common.Hash {
	return crypto.Keccak256Hash(allowanceTag, owner.Bytes(), spender.Bytes())
}

func nonceKey(owner common.Address) common.Hash {
	return crypto.Keccak256Hash(nonceTag, owner.Bytes())
}

// GetBalance returns the token balance of [account].
func GetBalance(state contract.StateReader, account common.Address) *uint256.Int {
	val := state.GetState(ContractAddress, balanceKey(account))
	return new(uint256.Int).SetBytes(val.Bytes())
}

// SetBalance stores [amount] as the token balance of [account].
func SetBalance(state contract.StateDB, account common.Address, amount *uint256.Int) {
	state.SetState(ContractAddress, balanceKey(account), common.Hash(amount.Bytes32()))
}

// GetAllowance returns the amount [spender] may transfer out of [owner]'s balance.
func GetAllowance(state contract.StateReader, owner common.Address, spender common.Address) *uint256.Int {
	val := state.GetState(ContractAddress, allowanceKey(owner, spender))
	return new(uint256.Int).SetBytes(val.Bytes())
}

// SetAllowance stores [amount] as the allowance from [owner] to [spender].
func SetAllowance(state contract.StateDB, owner common.Address, spender common.Address, amount *uint256.Int) {
	state.SetState(ContractAddress, allowanceKey(owner, spender), common.Hash(amount.Bytes32()))
}

// GetPermitNonce returns the permit nonce expected from [owner]'s next permit.
func GetPermitNonce(state contract.StateReader, owner common.Address) *uint256.Int {
	val := state.GetState(ContractAddress, nonceKey(owner))
	return new(uint256.Int).SetBytes(val.Bytes())
}

// SetPermitNonce stores [nonce] as the next expected permit nonce of [owner].
func SetPermitNonce(state contract.StateDB, owner common.Address, nonce *uint256.Int) {
	state.SetState(ContractAddress, nonceKey(owner), common.Hash(nonce.Bytes32()))
}

// GetTotalSupply returns the token's total supply.
func GetTotalSupply(state contract.StateReader) *uint256.Int {
	val := state.GetState(ContractAddress, totalSupplyKey)
	return new(uint256.Int).SetBytes(val.Bytes())
}

// SetTotalSupply stores the token's total supply.
func SetTotalSupply(state contract.StateDB, amount *uint256.Int) {
	state.SetState(ContractAddress, totalSupplyKey, common.Hash(amount.Bytes32()))
}

// GetTokenName returns the token name stored at configuration time.
func GetTokenName(state contract.StateReader) string {
	return getStoredString(state, nameKey, nameLenKey)
}

// GetTokenSymbol returns the token symbol stored at configuration time.
func GetTokenSymbol(state contract.StateReader) string {
	return getStoredString(state, symbolKey, symbolLenKey)
}

// GetTokenDecimals returns the token's decimals.
func GetTokenDecimals(state contract.StateReader) uint8 {
	val := state.GetState(ContractAddress, decimalsKey)
	return val[common.HashLength-1]
}

// GetChainID returns the chain id the token's EIP-712 domain binds to.
func GetChainID(state contract.StateReader) *big.Int {
	return state.GetState(ContractAddress, chainIDKey).Big()
}

// StoreTokenMetadata writes the token's name, symbol, decimals and EIP-712
// chain id. Called once when the precompile activates; name and symbol must
// fit in a single storage slot (verified by the config).
func StoreTokenMetadata(state contract.StateDB, name string, symbol string, decimals uint8, chainID *big.Int) {
	storeString(state, nameKey, nameLenKey, name)
	storeString(state, symbolKey, symbolLenKey, symbol)
	state.SetState(ContractAddress, decimalsKey, common.BigToHash(new(big.Int).SetUint64(uint64(decimals))))
	state.SetState(ContractAddress, chainIDKey, common.BigToHash(chainID))
}

func storeString(state contract.StateDB, dataKey common.Hash, lenKey common.Hash, value string) {
	var data common.Hash
	copy(data[:], value)
	state.SetState(ContractAddress, dataKey, data)
	state.SetState(ContractAddress, lenKey, common.BigToHash(new(big.Int).SetUint64(uint64(len(value)))))
}

func getStoredString(state contract.StateReader, dataKey common.Hash, lenKey common.Hash) string {
	length := state.GetState(ContractAddress, lenKey).Big().Uint64()
	if length > uint64(common.HashLength) {
		length = uint64(common.HashLength)
	}
	data := state.GetState(ContractAddress, dataKey)
	return string(data[:length])
}
