package claimer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
)

const EnvPrefix = "CLAIMBOT"

// Permitted zero-argument mutators.
const (
	MethodClaim    = "claim"
	MethodRelease  = "release"
	MethodWithdraw = "withdraw"
)

// Policy selects what a tick does when neither view method answers.
type Policy string

const (
	// PolicyOptimistic submits anyway; the contract may still hold a
	// claimable balance without exposing a view for it.
	PolicyOptimistic Policy = "optimistic"
	// PolicyConservative skips the tick when the amount is unknown.
	PolicyConservative Policy = "conservative"
)

const (
	defaultMethod                = MethodClaim
	defaultIntervalMinutes       = 5
	defaultConfirmTimeoutMinutes = 10
	minIntervalMinutes           = 1
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress common.Address
	Method          string
	Interval        time.Duration
	MinClaimable    *big.Int
	Policy          Policy
	ConfirmTimeout  time.Duration
	Debug           bool
}

// NewConfig reads the environment (and any cobra flags bound to the same
// keys) and validates everything before a single network call is made.
func NewConfig() (*Config, error) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg := &Config{
		RPCURL:     viper.GetString("rpc-url"),
		PrivateKey: viper.GetString("private-key"),
		Debug:      viper.GetBool("debug"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required (%s_RPC_URL)", EnvPrefix)
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key is required (%s_PRIVATE_KEY)", EnvPrefix)
	}
	if _, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x")); err != nil {
		return nil, fmt.Errorf("private key is not a valid hex secp256k1 key: %w", err)
	}

	address := viper.GetString("contract-address")
	if address == "" {
		return nil, fmt.Errorf("contract address is required (%s_CONTRACT_ADDRESS)", EnvPrefix)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	cfg.ContractAddress = common.HexToAddress(address)

	method := viper.GetString("method")
	if method == "" {
		method = defaultMethod
	}
	switch method {
	case MethodClaim, MethodRelease, MethodWithdraw:
		cfg.Method = method
	default:
		return nil, fmt.Errorf("unsupported method %q, must be one of %s, %s, %s",
			method, MethodClaim, MethodRelease, MethodWithdraw)
	}

	intervalMinutes, err := parseMinutes(viper.GetString("interval-minutes"), defaultIntervalMinutes)
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}
	if intervalMinutes < minIntervalMinutes {
		intervalMinutes = minIntervalMinutes
	}
	cfg.Interval = time.Duration(intervalMinutes) * time.Minute

	confirmMinutes, err := parseMinutes(viper.GetString("confirm-timeout-minutes"), defaultConfirmTimeoutMinutes)
	if err != nil {
		return nil, fmt.Errorf("invalid confirmation timeout: %w", err)
	}
	if confirmMinutes < 1 {
		confirmMinutes = 1
	}
	cfg.ConfirmTimeout = time.Duration(confirmMinutes) * time.Minute

	cfg.MinClaimable, err = parseMinClaimable(viper.GetString("min-claimable"))
	if err != nil {
		return nil, err
	}

	policy := viper.GetString("policy")
	if policy == "" {
		policy = string(PolicyOptimistic)
	}
	switch Policy(policy) {
	case PolicyOptimistic, PolicyConservative:
		cfg.Policy = Policy(policy)
	default:
		return nil, fmt.Errorf("unsupported policy %q, must be %s or %s",
			policy, PolicyOptimistic, PolicyConservative)
	}

	return cfg, nil
}

func parseMinutes(raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number of minutes", raw)
	}
	return val, nil
}

func parseMinClaimable(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	threshold, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid minimum claimable threshold %q, must be a base-10 integer", raw)
	}
	if threshold.Sign() < 0 {
		return nil, fmt.Errorf("minimum claimable threshold must not be negative, got %s", threshold)
	}
	return threshold, nil
}
