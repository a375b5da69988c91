// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

// Gas costs for stateful precompiles
const (
	WriteGasCostPerSlot = 20_000
	ReadGasCostPerSlot  = 5_000

	// EcrecoverGasCost matches the cost of the ecrecover precompile that a
	// signature-checking function pays on top of its storage accesses.
	EcrecoverGasCost = 3_000

	// LogGas and LogTopicGas mirror the EVM costs of the LOG opcodes, charged
	// by functions that emit events.
	LogGas      = 375
	LogTopicGas = 375
)

var functionSignatureRegex = regexp.MustCompile(`\w+\((\w*|(\w+,)+\w+)\)`)

// CalculateFunctionSelector returns the 4 byte function selector that results from [functionSignature]
// Ex. the function setBalance(addr address, balance uint256) should be passed in as the string:
// "setBalance(address,uint256)"
func CalculateFunctionSelector(functionSignature string) []byte {
	if !functionSignatureRegex.MatchString(functionSignature) {
		panic(fmt.Errorf("invalid function signature: %q", functionSignature))
	}
	hash := crypto.Keccak256([]byte(functionSignature))
	return hash[:4]
}

// DeductGas checks if [suppliedGas] is sufficient against [requiredGas] and deducts [requiredGas] from [suppliedGas].
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, vm.ErrOutOfGas
	}
	return suppliedGas - requiredGas, nil
}

// PackOrderedHashes packs the ordered list of [hashes] into a single byte
// slice, one 32-byte word per hash.
func PackOrderedHashes(hashes []common.Hash) []byte {
	dst := make([]byte, len(hashes)*common.HashLength)
	var (
		start = 0
		end   = common.HashLength
	)
	for _, hash := range hashes {
		copy(dst[start:end], hash.Bytes())
		start += common.HashLength
		end += common.HashLength
	}
	return dst
}

// PackedHash returns the 32-byte segment of [packed] at the given [index].
// Assumes that [packed] is composed entirely of packed 32 byte segments.
func PackedHash(packed []byte, index int) []byte {
	start := common.HashLength * index
	end := start + common.HashLength
	return packed[start:end]
}

// CreateAddressKey converts [address] into a [common.Hash] value to be used as a storage slot key
func CreateAddressKey(address common.Address) common.Hash {
	hashBytes := make([]byte, common.HashLength)
	copy(hashBytes, address[:])
	return common.BytesToHash(hashBytes)
}

// ParseABI parses the given ABI string and returns the parsed ABI.
// If the ABI is invalid, it panics.
func ParseABI(rawABI string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic(err)
	}

	return parsed
}

// PackOutput packs [args] to conform to the output arguments of [method] in [parsedABI].
func PackOutput(parsedABI abi.ABI, method string, args ...interface{}) ([]byte, error) {
	m, ok := parsedABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q does not exist in the ABI", method)
	}
	return m.Outputs.Pack(args...)
}

// UnpackInput attempts to unpack [input] into the input arguments of [method] in [parsedABI].
// Assumes that [input] does not include the selector (omits first 4 func signature bytes).
func UnpackInput(parsedABI abi.ABI, method string, input []byte) ([]interface{}, error) {
	m, ok := parsedABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q does not exist in the ABI", method)
	}
	return m.Inputs.Unpack(input)
}
