package chaineth

import (
	"fmt"
	"regexp"
	"strings"
)

var revertReasonPattern = regexp.MustCompile(`execution reverted:?\s*(.*)`)

// ExtractRevertReason pulls the reason string out of an "execution reverted"
// error, if the node included one.
func ExtractRevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	matches := revertReasonPattern.FindStringSubmatch(err.Error())
	if matches == nil {
		return "", false
	}
	return strings.TrimSpace(matches[1]), true
}

// HumanizeRPCError formats node/EVM errors for the tick log.
func HumanizeRPCError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	if reason, ok := ExtractRevertReason(err); ok {
		if reason == "" {
			return "Contract call reverted without a reason. The method may not exist on this contract or its conditions are not met."
		}
		return fmt.Sprintf("Contract call reverted: %s", reason)
	}

	if strings.Contains(errStr, "insufficient funds") {
		return "Insufficient balance to pay for gas"
	}

	if strings.Contains(errStr, "nonce too low") {
		return "Nonce too low. Another transaction from this account was likely mined first."
	}

	if strings.Contains(errStr, "replacement transaction underpriced") ||
		strings.Contains(errStr, "already known") {
		return "A previous transaction from this account is still pending"
	}

	if strings.Contains(errStr, "gas required exceeds allowance") ||
		strings.Contains(errStr, "out of gas") {
		return "Transaction ran out of gas during estimation or execution"
	}

	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}
