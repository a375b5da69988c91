// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fragmentfi/fragment-evm/precompile/allowlist"
	"github.com/fragmentfi/fragment-evm/precompile/precompileconfig"
)

var _ precompileconfig.Config = &Config{}

var (
	ErrEmptyName          = errors.New("token name cannot be empty")
	ErrEmptySymbol        = errors.New("token symbol cannot be empty")
	ErrMetadataTooLong    = errors.New("token metadata must fit in 32 bytes")
	ErrZeroInitialHolder  = errors.New("initial supply requires a non-zero holder")
	ErrNegativeSupply     = errors.New("initial supply cannot be negative")
	ErrMissingTokenConfig = errors.New("token config is required on first activation")
)

// TokenConfig specifies the immutable token metadata and the optional initial
// mint applied when the precompile first activates.
type TokenConfig struct {
	Name          string         `json:"name"`
	Symbol        string         `json:"symbol"`
	Decimals      uint8          `json:"decimals"`
	InitialSupply *big.Int       `json:"initialSupply,omitempty"`
	InitialHolder common.Address `json:"initialHolder,omitempty"`
}

// Config implements the precompileconfig.Config interface and
// adds specific configuration for the token precompile.
type Config struct {
	allowlist.AllowListConfig
	precompileconfig.Upgrade

	TokenConfig *TokenConfig `json:"tokenConfig,omitempty"`
}

// NewConfig returns a config for the token precompile with the given
// activation [blockTimestamp], allow list membership and [tokenConfig].
func NewConfig(blockTimestamp *uint64, admins []common.Address, enableds []common.Address, tokenConfig *TokenConfig) *Config {
	return &Config{
		AllowListConfig: allowlist.AllowListConfig{
			AdminAddresses:   admins,
			EnabledAddresses: enableds,
		},
		Upgrade:     precompileconfig.Upgrade{BlockTimestamp: blockTimestamp},
		TokenConfig: tokenConfig,
	}
}

// NewDisableConfig returns config for the token precompile with the given
// deactivation [blockTimestamp].
func NewDisableConfig(blockTimestamp *uint64) *Config {
	return &Config{
		Upgrade: precompileconfig.Upgrade{
			BlockTimestamp: blockTimestamp,
			Disable:        true,
		},
	}
}

// Key returns the key for the token precompile config.
func (*Config) Key() string { return ConfigKey }

// Verify tries to verify Config and returns an error accordingly.
func (c *Config) Verify() error {
	if c.TokenConfig != nil {
		if err := c.TokenConfig.verify(); err != nil {
			return err
		}
	} else if !c.Disable {
		return ErrMissingTokenConfig
	}
	return c.AllowListConfig.Verify()
}

func (tc *TokenConfig) verify() error {
	if len(tc.Name) == 0 {
		return ErrEmptyName
	}
	if len(tc.Symbol) == 0 {
		return ErrEmptySymbol
	}
	// Name and symbol each occupy a single storage slot.
	if len(tc.Name) > common.HashLength || len(tc.Symbol) > common.HashLength {
		return fmt.Errorf("%w: name %d bytes, symbol %d bytes", ErrMetadataTooLong, len(tc.Name), len(tc.Symbol))
	}
	if tc.InitialSupply != nil {
		if tc.InitialSupply.Sign() < 0 {
			return ErrNegativeSupply
		}
		if tc.InitialSupply.Sign() > 0 && tc.InitialHolder == (common.Address{}) {
			return ErrZeroInitialHolder
		}
	}
	return nil
}

// Equal returns true if [s] is a [*Config] and it has been configured identical to [c].
func (c *Config) Equal(s precompileconfig.Config) bool {
	// typecast before comparison
	other, ok := (s).(*Config)
	if !ok {
		return false
	}
	if !c.Upgrade.Equal(&other.Upgrade) || !c.AllowListConfig.Equal(&other.AllowListConfig) {
		return false
	}
	return c.TokenConfig.equal(other.TokenConfig)
}

func (tc *TokenConfig) equal(other *TokenConfig) bool {
	if tc == nil || other == nil {
		return tc == other
	}
	if tc.Name != other.Name || tc.Symbol != other.Symbol || tc.Decimals != other.Decimals {
		return false
	}
	if tc.InitialHolder != other.InitialHolder {
		return false
	}
	if tc.InitialSupply == nil || other.InitialSupply == nil {
		return tc.InitialSupply == other.InitialSupply
	}
	return tc.InitialSupply.Cmp(other.InitialSupply) == 0
}
