// (c) 2024, Fragment Foundation. All rights reserved.
// See the file LICENSE for licensing terms.

package fragtoken

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fragmentfi/fragment-evm/precompile/contract"
)

const (
	// Both events carry three topics (event id, two indexed addresses) and a
	// single 32-byte data word.
	TransferEventGasCost uint64 = contract.LogGas + 3*contract.LogTopicGas + 8*common.HashLength
	ApprovalEventGasCost uint64 = contract.LogGas + 3*contract.LogTopicGas + 8*common.HashLength
)

// PackTransferEvent packs the topics and data of a Transfer(from, to, value) log.
func PackTransferEvent(from common.Address, to common.Address, value *uint256.Int) ([]common.Hash, []byte) {
	topics := []common.Hash{
		FragTokenABI.Events["Transfer"].ID,
		common.BytesToHash(from.Bytes()),
		common.BytesToHash(to.Bytes()),
	}
	data := value.Bytes32()
	return topics, data[:]
}

// PackApprovalEvent packs the topics and data of an Approval(owner, spender, value) log.
func PackApprovalEvent(owner common.Address, spender common.Address, value *uint256.Int) ([]common.Hash, []byte) {
	topics := []common.Hash{
		FragTokenABI.Events["Approval"].ID,
		common.BytesToHash(owner.Bytes()),
		common.BytesToHash(spender.Bytes()),
	}
	data := value.Bytes32()
	return topics, data[:]
}
