// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

// Package permit produces EIP-2612 permit signatures off-chain. The typed
// data is assembled and hashed by go-ethereum's EIP-712 implementation, so
// the digest construction is never duplicated by hand on the signing side.
package permit

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const domainVersion = "1"

var ErrShortSignature = errors.New("signature must be 65 bytes")

// Domain identifies the token contract a permit is bound to.
type Domain struct {
	Name              string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Message is a single permit authorization to be signed by Owner.
type Message struct {
	Owner    common.Address
	Spender  common.Address
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

// Signature is a permit signature split into the (v, r, s) form the
// contract's permit function takes.
type Signature struct {
	V uint8
	R common.Hash
	S common.Hash
}

// TypedData assembles the EIP-712 typed data for [msg] under [domain].
func TypedData(domain Domain, msg Message) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Permit": []apitypes.Type{
				{Name: "owner", Type: "address"},
				{Name: "spender", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domainVersion,
			ChainId:           (*math.HexOrDecimal256)(domain.ChainID),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    msg.Owner.Hex(),
			"spender":  msg.Spender.Hex(),
			"value":    (*math.HexOrDecimal256)(msg.Value),
			"nonce":    (*math.HexOrDecimal256)(msg.Nonce),
			"deadline": (*math.HexOrDecimal256)(msg.Deadline),
		},
	}
}

// Digest returns the 32-byte hash the owner must sign for [msg] under [domain].
func Digest(domain Domain, msg Message) (common.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(TypedData(domain, msg))
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing permit typed data: %w", err)
	}
	return common.BytesToHash(hash), nil
}

// Sign signs the permit [msg] with [key] and returns the signature in the
// (v, r, s) form with v in {27, 28}.
func Sign(key *ecdsa.PrivateKey, domain Domain, msg Message) (Signature, error) {
	digest, err := Digest(domain, msg)
	if err != nil {
		return Signature{}, err
	}
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("signing permit digest: %w", err)
	}
	return SplitSignature(sig)
}

// SplitSignature converts a 65-byte [r || s || recovery id] signature into
// the (v, r, s) form, shifting the recovery id to the legacy 27/28 range.
func SplitSignature(sig []byte) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: got %d", ErrShortSignature, len(sig))
	}
	return Signature{
		V: sig[crypto.RecoveryIDOffset] + 27,
		R: common.BytesToHash(sig[:common.HashLength]),
		S: common.BytesToHash(sig[common.HashLength : 2*common.HashLength]),
	}, nil
}
