package chaineth

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Confirmation describes an included transaction.
type Confirmation struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Reverted    bool
}

const receiptPollInterval = 3 * time.Second

// WaitConfirmed blocks until the transaction is included or ctx expires,
// polling for the receipt. A missing receipt and a transient RPC failure are
// treated the same: not mined yet. A reverted transaction is still a
// confirmation; the Reverted flag carries the outcome.
func (c *Contract) WaitConfirmed(ctx context.Context, txHash common.Hash) (*Confirmation, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.eth.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return &Confirmation{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Reverted:    receipt.Status != types.ReceiptStatusSuccessful,
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
