// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package permit

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	testKey, _ = crypto.HexToECDSA("45a915e4d060149eb4365960e6a7a45f334393093061116b197e3240065ff2d8")
	testAddr   = crypto.PubkeyToAddress(testKey.PublicKey)

	testSpender = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func testDomain() Domain {
	return Domain{
		Name:              "Fragment",
		ChainID:           big.NewInt(1),
		VerifyingContract: common.HexToAddress("0x0200000000000000000000000000000000000005"),
	}
}

func testMessage() Message {
	return Message{
		Owner:    testAddr,
		Spender:  testSpender,
		Value:    big.NewInt(1_000),
		Nonce:    big.NewInt(0),
		Deadline: big.NewInt(1_900_000_000),
	}
}

func TestDigestDeterministic(t *testing.T) {
	require := require.New(t)

	first, err := Digest(testDomain(), testMessage())
	require.NoError(err)
	second, err := Digest(testDomain(), testMessage())
	require.NoError(err)
	require.Equal(first, second)
	require.NotEqual(common.Hash{}, first)
}

// Changing any field of the domain or the message must change the digest.
func TestDigestBindsAllFields(t *testing.T) {
	require := require.New(t)

	base, err := Digest(testDomain(), testMessage())
	require.NoError(err)

	mutations := map[string]func(*Domain, *Message){
		"name":     func(d *Domain, m *Message) { d.Name = "Tnemgarf" },
		"chain id": func(d *Domain, m *Message) { d.ChainID = big.NewInt(2) },
		"contract": func(d *Domain, m *Message) { d.VerifyingContract = testSpender },
		"owner":    func(d *Domain, m *Message) { m.Owner = testSpender },
		"spender":  func(d *Domain, m *Message) { m.Spender = testAddr },
		"value":    func(d *Domain, m *Message) { m.Value = big.NewInt(1_001) },
		"nonce":    func(d *Domain, m *Message) { m.Nonce = big.NewInt(1) },
		"deadline": func(d *Domain, m *Message) { m.Deadline = big.NewInt(1) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			domain := testDomain()
			msg := testMessage()
			mutate(&domain, &msg)
			mutated, err := Digest(domain, msg)
			require.NoError(err)
			require.NotEqual(base, mutated)
		})
	}
}

func TestSignRecoverRoundtrip(t *testing.T) {
	require := require.New(t)

	sig, err := Sign(testKey, testDomain(), testMessage())
	require.NoError(err)
	require.Contains([]uint8{27, 28}, sig.V)

	digest, err := Digest(testDomain(), testMessage())
	require.NoError(err)

	raw := make([]byte, crypto.SignatureLength)
	copy(raw[:common.HashLength], sig.R.Bytes())
	copy(raw[common.HashLength:2*common.HashLength], sig.S.Bytes())
	raw[crypto.RecoveryIDOffset] = sig.V - 27

	pubKey, err := crypto.SigToPub(digest.Bytes(), raw)
	require.NoError(err)
	require.Equal(testAddr, crypto.PubkeyToAddress(*pubKey))
}

func TestSplitSignatureRejectsShortInput(t *testing.T) {
	_, err := SplitSignature(make([]byte, 64))
	require.ErrorIs(t, err, ErrShortSignature)
}
