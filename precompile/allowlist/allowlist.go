// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package allowlist

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
)

// Role-based access control shared by precompiles that gate their
// administrative surface. Roles are stored in the precompile's own address
// space, one slot per account.

const (
	ModifyAllowListGasCost = contract.WriteGasCostPerSlot
	ReadAllowListGasCost   = contract.ReadGasCostPerSlot

	allowListInputLen = common.HashLength
)

var (
	NoRole      = Role(common.BigToHash(common.Big0))
	EnabledRole = Role(common.BigToHash(common.Big1))
	AdminRole   = Role(common.BigToHash(common.Big2))

	ErrCannotModifyAllowList = errors.New("non-admin cannot modify allow list")
	ErrInvalidLen            = errors.New("invalid input length for modifying allow list")

	setAdminSelector      = contract.CalculateFunctionSelector("setAdmin(address)")
	setEnabledSelector    = contract.CalculateFunctionSelector("setEnabled(address)")
	setNoneSelector       = contract.CalculateFunctionSelector("setNone(address)")
	readAllowListSelector = contract.CalculateFunctionSelector("readAllowList(address)")
)

type Role common.Hash

// IsNoRole returns true if [r] indicates no specific role.
func (r Role) IsNoRole() bool {
	return r == NoRole
}

// IsAdmin returns true if [r] indicates the permission to modify the allow list.
func (r Role) IsAdmin() bool {
	return r == AdminRole
}

// IsEnabled returns true if [r] indicates that it has permission to access the resource.
func (r Role) IsEnabled() bool {
	return r == AdminRole || r == EnabledRole
}

// Valid returns true iff [r] represents a valid role.
func (r Role) Valid() bool {
	return r == NoRole || r == EnabledRole || r == AdminRole
}

func (r Role) String() string {
	switch r {
	case NoRole:
		return "NoRole"
	case EnabledRole:
		return "EnabledRole"
	case AdminRole:
		return "AdminRole"
	default:
		return "UnknownRole"
	}
}

// GetAllowListStatus returns the allow list role of [account] for the precompile
// at [precompileAddr].
func GetAllowListStatus(state contract.StateReader, precompileAddr common.Address, account common.Address) Role {
	// Generate the state key for [account]
	roleKey := contract.CreateAddressKey(account)
	return Role(state.GetState(precompileAddr, roleKey))
}

// SetAllowListRole sets the permissions of [account] to [role] for the precompile
// at [precompileAddr]. Assumes [role] has already been verified as valid.
func SetAllowListRole(stateDB contract.StateDB, precompileAddr, account common.Address, role Role) {
	// Generate the state key for [account]
	roleKey := contract.CreateAddressKey(account)
	// Assign [role] to the address
	stateDB.SetState(precompileAddr, roleKey, common.Hash(role))
}

// PackModifyAllowList packs [account] and [role] into the appropriate arguments for modifying the allow list.
// Note: [role] is not packed in the input value returned, but is instead used as a selector for the function
// selector that should be encoded in the input.
func PackModifyAllowList(account common.Address, role Role) ([]byte, error) {
	// function selector (4 bytes) + hash for address
	input := make([]byte, 0, contract.SelectorLen+common.HashLength)

	switch role {
	case AdminRole:
		input = append(input, setAdminSelector...)
	case EnabledRole:
		input = append(input, setEnabledSelector...)
	case NoRole:
		input = append(input, setNoneSelector...)
	default:
		return nil, fmt.Errorf("cannot pack modify list input with invalid role: %s", role)
	}

	input = append(input, account.Hash().Bytes()...)
	return input, nil
}

// PackReadAllowList packs [account] into the input data to the read allow list function
func PackReadAllowList(account common.Address) []byte {
	input := make([]byte, 0, contract.SelectorLen+common.HashLength)
	input = append(input, readAllowListSelector...)
	input = append(input, account.Hash().Bytes()...)
	return input
}

// createAllowListRoleSetter returns an execution function for setting the allow list status of the input address argument
// to [role]. This execution function is speciifc to [precompileAddr].
func createAllowListRoleSetter(precompileAddr common.Address, role Role) contract.RunStatefulPrecompileFunc {
	return func(evm contract.AccessibleState, callerAddr, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
		if remainingGas, err = contract.DeductGas(suppliedGas, ModifyAllowListGasCost); err != nil {
			return nil, 0, err
		}

		if len(input) != allowListInputLen {
			return nil, remainingGas, fmt.Errorf("%w: %d", ErrInvalidLen, len(input))
		}

		if readOnly {
			return nil, remainingGas, vm.ErrWriteProtection
		}

		modifyAddress := common.BytesToAddress(input)
		stateDB := evm.GetStateDB()

		// Verify that the caller is an admin with permission to modify the allow list
		callerStatus := GetAllowListStatus(stateDB, precompileAddr, callerAddr)
		if !callerStatus.IsAdmin() {
			return nil, remainingGas, fmt.Errorf("%w: %s", ErrCannotModifyAllowList, callerAddr)
		}

		SetAllowListRole(stateDB, precompileAddr, modifyAddress, role)
		return []byte{}, remainingGas, nil
	}
}

// createReadAllowList returns an execution function that reads the allow list for the given [precompileAddr].
// The execution function parses the input into a single address and returns the 32 byte hash that specifies the
// designated role of that address
func createReadAllowList(precompileAddr common.Address) contract.RunStatefulPrecompileFunc {
	return func(evm contract.AccessibleState, callerAddr common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
		if remainingGas, err = contract.DeductGas(suppliedGas, ReadAllowListGasCost); err != nil {
			return nil, 0, err
		}

		if len(input) != allowListInputLen {
			return nil, remainingGas, fmt.Errorf("%w: %d", ErrInvalidLen, len(input))
		}

		readAddress := common.BytesToAddress(input)
		role := GetAllowListStatus(evm.GetStateDB(), precompileAddr, readAddress)
		roleBytes := common.Hash(role).Bytes()
		return roleBytes, remainingGas, nil
	}
}

// CreateAllowListFunctions returns a list of functions for the allow list precompile at [precompileAddr].
func CreateAllowListFunctions(precompileAddr common.Address) []*contract.StatefulPrecompileFunction {
	setAdmin := contract.NewStatefulPrecompileFunction(setAdminSelector, createAllowListRoleSetter(precompileAddr, AdminRole))
	setEnabled := contract.NewStatefulPrecompileFunction(setEnabledSelector, createAllowListRoleSetter(precompileAddr, EnabledRole))
	setNone := contract.NewStatefulPrecompileFunction(setNoneSelector, createAllowListRoleSetter(precompileAddr, NoRole))
	read := contract.NewStatefulPrecompileFunction(readAllowListSelector, createReadAllowList(precompileAddr))

	return []*contract.StatefulPrecompileFunction{setAdmin, setEnabled, setNone, read}
}
