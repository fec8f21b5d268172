package chaineth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal claim-style interface. Contracts are not required to implement the
// view methods; a missing view surfaces as a failed eth_call and is handled
// by the caller.
const claimABI = `[
	{"type":"function","name":"claim","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"release","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"withdraw","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"claimable","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"releasable","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

// Contract is a bound claim-style contract at a fixed address.
type Contract struct {
	address common.Address
	bound   *bind.BoundContract
	client  *Client
	signer  *Signer
}

func NewContract(client *Client, signer *Signer, address common.Address) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(claimABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse claim abi: %w", err)
	}

	return &Contract{
		address: address,
		bound:   bind.NewBoundContract(address, parsed, client.eth, client.eth, client.eth),
		client:  client,
		signer:  signer,
	}, nil
}

func (c *Contract) Address() common.Address {
	return c.address
}

// Claimable reads the pending amount via claimable().
func (c *Contract) Claimable(ctx context.Context) (*big.Int, error) {
	return c.readAmount(ctx, "claimable")
}

// Releasable reads the pending amount via releasable().
func (c *Contract) Releasable(ctx context.Context) (*big.Int, error) {
	return c.readAmount(ctx, "releasable")
}

func (c *Contract) readAmount(ctx context.Context, method string) (*big.Int, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method)
	if err != nil {
		return nil, fmt.Errorf("%s() call failed: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s() returned no value", method)
	}

	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s() returned unexpected type %T", method, out[0])
	}
	return amount, nil
}

// Submit signs and sends the selected zero-argument mutator and returns the
// transaction hash. Gas price and nonce come from the node.
func (c *Contract) Submit(ctx context.Context, method string) (common.Hash, error) {
	opts, err := c.signer.TransactOpts(c.client.ChainID())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := c.bound.Transact(opts, method)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s(): %w", method, err)
	}
	return tx.Hash(), nil
}
