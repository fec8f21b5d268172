package chaineth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps a single JSON-RPC connection to an EVM chain.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
}

// Dial connects to the RPC endpoint and fetches the chain id, which every
// signed transaction needs for EIP-155 replay protection.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}

	return &Client{
		eth:     eth,
		chainID: chainID,
	}, nil
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// HealthCheck verifies the connection is still usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.eth.ChainID(ctx); err != nil {
		return fmt.Errorf("chain health check failed: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	c.eth.Close()
}
