package claimer

import "math/big"

// ProbeResult is the outcome of reading the optional view methods. A contract
// without claimable()/releasable() yields Unavailable, which is expected and
// not an error.
type ProbeResult struct {
	Amount *big.Int
	Found  bool
	Source string
}

func FoundAmount(source string, amount *big.Int) ProbeResult {
	return ProbeResult{
		Amount: amount,
		Found:  true,
		Source: source,
	}
}

func Unavailable() ProbeResult {
	return ProbeResult{}
}
