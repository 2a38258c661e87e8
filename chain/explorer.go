package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/verichains/safekit/decode"
)

// explorerResponse is the etherscan-compatible envelope of the
// getsourcecode action.
type explorerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		ContractName string `json:"ContractName"`
		ABI          string `json:"ABI"`
	} `json:"result"`
}

// ContractABI fetches the verified source metadata of addr from the
// configured explorer. Unverified contracts report ErrABINotVerified so
// callers can cache the negative answer.
func (c *Client) ContractABI(ctx context.Context, chainId uint64, addr common.Address) (*decode.VerifiedABI, error) {
	if c.cfg.ExplorerUrl == "" {
		return nil, decode.ErrExternalLookupFailed
	}
	query := url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {addr.Hex()},
	}
	if c.cfg.ExplorerApiKey != "" {
		query.Set("apikey", c.cfg.ExplorerApiKey)
	}
	endpoint := fmt.Sprintf("%s?%s", strings.TrimSuffix(c.cfg.ExplorerUrl, "/"), query.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", decode.ErrExternalLookupFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", decode.ErrExternalLookupFailed, resp.StatusCode)
	}

	var body explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", decode.ErrExternalLookupFailed, err)
	}
	if body.Status != "1" || len(body.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrExplorerError, body.Message)
	}
	result := body.Result[0]
	if result.ABI == "" || strings.Contains(result.ABI, "not verified") {
		return nil, decode.ErrABINotVerified
	}
	return &decode.VerifiedABI{Name: result.ContractName, ABI: result.ABI}, nil
}
