// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
)

// EIP-712 domain and Permit struct hashing as specified by EIP-2612. The
// digest recomputed here must match what signing clients derive from the
// equivalent typed data; the signing side goes through go-ethereum's
// typed-data implementation and the test suites cross-check the two.

const domainVersion = "1"

var (
	// keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")
	eip712DomainTypehash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	// keccak256("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)")
	permitTypehash = crypto.Keccak256Hash([]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))

	versionHash = crypto.Keccak256Hash([]byte(domainVersion))

	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidSigner    = errors.New("invalid signer")
)

// ComputeDomainSeparator derives the EIP-712 domain separator from the token
// metadata in [state]. It is computed on demand rather than cached so that a
// metadata-changing upgrade cannot leave a stale separator behind.
func ComputeDomainSeparator(state contract.StateReader) common.Hash {
	name := GetTokenName(state)
	chainID := GetChainID(state)
	encoded := contract.PackOrderedHashes([]common.Hash{
		eip712DomainTypehash,
		crypto.Keccak256Hash([]byte(name)),
		versionHash,
		common.BigToHash(chainID),
		common.BytesToHash(ContractAddress.Bytes()),
	})
	return crypto.Keccak256Hash(encoded)
}

// permitStructHash hashes the Permit struct per EIP-712 encodeData rules.
func permitStructHash(owner common.Address, spender common.Address, value *uint256.Int, nonce *uint256.Int, deadline *uint256.Int) common.Hash {
	encoded := contract.PackOrderedHashes([]common.Hash{
		permitTypehash,
		common.BytesToHash(owner.Bytes()),
		common.BytesToHash(spender.Bytes()),
		common.Hash(value.Bytes32()),
		common.Hash(nonce.Bytes32()),
		common.Hash(deadline.Bytes32()),
	})
	return crypto.Keccak256Hash(encoded)
}

// PermitDigest computes the digest an owner must sign to authorize
// [spender] for [value] with the given [nonce] and [deadline].
func PermitDigest(state contract.StateReader, owner common.Address, spender common.Address, value *uint256.Int, nonce *uint256.Int, deadline *uint256.Int) common.Hash {
	domainSeparator := ComputeDomainSeparator(state)
	structHash := permitStructHash(owner, spender, value, nonce, deadline)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())
}

// recoverPermitSigner recovers the address that signed [digest] from a
// (v, r, s) signature. Only canonical signatures with v in {27, 28} and a
// lower-half-order s are accepted.
func recoverPermitSigner(digest common.Hash, v uint8, r common.Hash, s common.Hash) (common.Address, error) {
	if v != 27 && v != 28 {
		return common.Address{}, ErrInvalidSignature
	}
	rBig := new(big.Int).SetBytes(r.Bytes())
	sBig := new(big.Int).SetBytes(s.Bytes())
	if !crypto.ValidateSignatureValues(v-27, rBig, sBig, true) {
		return common.Address{}, ErrInvalidSignature
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig[:common.HashLength], r.Bytes())
	copy(sig[common.HashLength:2*common.HashLength], s.Bytes())
	sig[crypto.RecoveryIDOffset] = v - 27

	pubKey, err := crypto.Ecrecover(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return common.BytesToAddress(crypto.Keccak256(pubKey[1:])[12:]), nil
}
