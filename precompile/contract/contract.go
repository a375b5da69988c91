// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
)

const SelectorLen = 4

// RunStatefulPrecompileFunc is the function signature of a stateful precompile function.
type RunStatefulPrecompileFunc func(accessibleState AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error)

// StatefulPrecompileFunction defines a function implemented by a stateful precompile
// keyed by its 4-byte function selector.
type StatefulPrecompileFunction struct {
	selector []byte
	execute  RunStatefulPrecompileFunc
}

// NewStatefulPrecompileFunction creates a stateful precompile function with the given arguments
func NewStatefulPrecompileFunction(selector []byte, execute RunStatefulPrecompileFunc) *StatefulPrecompileFunction {
	return &StatefulPrecompileFunction{
		selector: selector,
		execute:  execute,
	}
}

// statefulPrecompileWithFunctionSelectors implements StatefulPrecompiledContract by
// using 4 byte function selectors to pass off responsibilities to internal execution functions.
type statefulPrecompileWithFunctionSelectors struct {
	fallback  RunStatefulPrecompileFunc
	functions map[string]*StatefulPrecompileFunction
}

// NewStatefulPrecompileContract generates a new StatefulPrecompiledContract using [functions] as the available
// functions and [fallback] as an optional fallback if there is no input data.
// Note: the selector of each function must be unique.
func NewStatefulPrecompileContract(fallback RunStatefulPrecompileFunc, functions []*StatefulPrecompileFunction) (StatefulPrecompiledContract, error) {
	functionsMap := make(map[string]*StatefulPrecompileFunction)
	for _, function := range functions {
		if len(function.selector) != SelectorLen {
			return nil, fmt.Errorf("invalid length of selector %q", function.selector)
		}
		key := string(function.selector)
		if _, exists := functionsMap[key]; exists {
			return nil, fmt.Errorf("cannot create stateful precompile with duplicated function selector %q", function.selector)
		}
		functionsMap[key] = function
	}

	return &statefulPrecompileWithFunctionSelectors{
		fallback:  fallback,
		functions: functionsMap,
	}, nil
}

// Run selects the function using the 4 byte function selector at the start of the input and executes it.
func (s *statefulPrecompileWithFunctionSelectors) Run(accessibleState AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error) {
	// If there is no input data present, call the fallback function if present.
	if len(input) == 0 && s.fallback != nil {
		return s.fallback(accessibleState, caller, addr, nil, suppliedGas, readOnly)
	}

	// Otherwise, an unexpected input size will result in an error.
	if len(input) < SelectorLen {
		return nil, suppliedGas, fmt.Errorf("missing function selector to precompile - input length (%d)", len(input))
	}

	// Use the function selector to grab the correct function
	selector := input[:SelectorLen]
	functionInput := input[SelectorLen:]
	function, ok := s.functions[string(selector)]
	if !ok {
		return nil, suppliedGas, fmt.Errorf("invalid function selector %#x", selector)
	}

	return function.execute(accessibleState, caller, addr, functionInput, suppliedGas, readOnly)
}

// exported aliases of the VM errors surfaced by precompile execution.
var (
	ErrOutOfGas          = vm.ErrOutOfGas
	ErrWriteProtection   = vm.ErrWriteProtection
	ErrExecutionReverted = vm.ErrExecutionReverted
)
