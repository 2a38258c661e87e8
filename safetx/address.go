package safetx

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var addressRegex = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)

// NormalizeAddress parses s into a canonical address. Case variants of the
// same account must normalize to the same value, since addresses feed the
// transaction hash. Mixed-case input is required to carry a valid EIP-55
// checksum; all-lower and all-upper input is accepted as unchecksummed.
func NormalizeAddress(s string) (common.Address, error) {
	if !addressRegex.MatchString(s) {
		return common.Address{}, ErrInvalidAddress
	}
	addr := common.HexToAddress(s)
	hexPart := strings.TrimPrefix(s, "0x")
	lower := strings.ToLower(hexPart)
	if hexPart != lower && hexPart != strings.ToUpper(hexPart) {
		if strings.TrimPrefix(addr.Hex(), "0x") != hexPart {
			return common.Address{}, ErrInvalidAddress
		}
	}
	return addr, nil
}
