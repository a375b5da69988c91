// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

// fragpermit signs EIP-2612 permits offline. It takes the token domain and
// the permit fields as flags, signs with a hex-encoded private key, and
// prints the digest and (v, r, s) signature as JSON for submission by any
// transaction-sending tool.
package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fragmentfi/fragment-evm/permit"
)

const (
	nameKey     = "token-name"
	contractKey = "contract"
	chainIDKey  = "chain-id"
	keyFileKey  = "key-file"
	spenderKey  = "spender"
	valueKey    = "value"
	nonceKey    = "nonce"
	deadlineKey = "deadline"

	envPrefix = "FRAGPERMIT"
)

type output struct {
	Owner    common.Address `json:"owner"`
	Spender  common.Address `json:"spender"`
	Value    string         `json:"value"`
	Nonce    string         `json:"nonce"`
	Deadline string         `json:"deadline"`
	Digest   common.Hash    `json:"digest"`
	V        uint8          `json:"v"`
	R        common.Hash    `json:"r"`
	S        common.Hash    `json:"s"`
}

func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fragpermit", pflag.ContinueOnError)
	fs.String(nameKey, "", "token name used in the EIP-712 domain")
	fs.String(contractKey, "", "address of the verifying token contract")
	fs.Uint64(chainIDKey, 1, "chain id used in the EIP-712 domain")
	fs.String(keyFileKey, "", "path to a file holding the owner's hex private key")
	fs.String(spenderKey, "", "address being granted the allowance")
	fs.String(valueKey, "0", "allowance value in base units")
	fs.String(nonceKey, "0", "owner's current permit nonce")
	fs.String(deadlineKey, "", "unix timestamp after which the permit expires")
	return fs
}

func buildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

func parseBig(v *viper.Viper, key string) (*big.Int, error) {
	raw := v.GetString(key)
	val, ok := new(big.Int).SetString(raw, 10)
	if !ok || val.Sign() < 0 {
		return nil, fmt.Errorf("flag --%s: %q is not a non-negative decimal", key, raw)
	}
	return val, nil
}

func run(v *viper.Viper, log *zap.Logger) error {
	for _, key := range []string{nameKey, contractKey, keyFileKey, spenderKey, deadlineKey} {
		if v.GetString(key) == "" {
			return fmt.Errorf("flag --%s is required", key)
		}
	}

	keyHex, err := os.ReadFile(v.GetString(keyFileKey))
	if err != nil {
		return fmt.Errorf("reading key file: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimSpace(string(keyHex)))
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}
	owner := crypto.PubkeyToAddress(key.PublicKey)

	value, err := parseBig(v, valueKey)
	if err != nil {
		return err
	}
	nonce, err := parseBig(v, nonceKey)
	if err != nil {
		return err
	}
	deadline, err := parseBig(v, deadlineKey)
	if err != nil {
		return err
	}

	domain := permit.Domain{
		Name:              v.GetString(nameKey),
		ChainID:           new(big.Int).SetUint64(v.GetUint64(chainIDKey)),
		VerifyingContract: common.HexToAddress(v.GetString(contractKey)),
	}
	msg := permit.Message{
		Owner:    owner,
		Spender:  common.HexToAddress(v.GetString(spenderKey)),
		Value:    value,
		Nonce:    nonce,
		Deadline: deadline,
	}

	digest, err := permit.Digest(domain, msg)
	if err != nil {
		return err
	}
	sig, err := permit.Sign(key, domain, msg)
	if err != nil {
		return err
	}
	log.Debug("signed permit",
		zap.Stringer("owner", owner),
		zap.Stringer("digest", digest),
	)

	out, err := json.MarshalIndent(output{
		Owner:    owner,
		Spender:  msg.Spender,
		Value:    value.String(),
		Nonce:    nonce.String(),
		Deadline: deadline.String(),
		Digest:   digest,
		V:        sig.V,
		R:        sig.R,
		S:        sig.S,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't build logger: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	v, err := buildViper(buildFlagSet(), os.Args[1:])
	if err != nil {
		log.Fatal("couldn't parse flags", zap.Error(err))
	}
	if err := run(v, log); err != nil {
		log.Fatal("couldn't sign permit", zap.Error(err))
	}
}
