package chain

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verichains/safekit/decode"
	"github.com/verichains/safekit/pending"
)

// stubCaller answers eth_call by selector.
type stubCaller struct {
	returns map[string][]byte
}

func (c *stubCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if ret, ok := c.returns[hex.EncodeToString(msg.Data[:4])]; ok {
		return ret, nil
	}
	return nil, ErrEmptyCallResult
}

func testClient(caller contractCaller, explorerUrl string) *Client {
	return &Client{
		cfg:    Config{ExplorerUrl: explorerUrl}.Sanitize(),
		caller: caller,
		http:   http.DefaultClient,
	}
}

func TestSafeNonce(t *testing.T) {
	caller := &stubCaller{returns: map[string][]byte{
		"affed0e0": hexutils.HexToBytes("0000000000000000000000000000000000000000000000000000000000000007"),
	}}
	client := testClient(caller, "")

	nonce, err := client.SafeNonce(context.Background(), common.HexToAddress("0x5afe3855358e112b5647b952709e6165e1c1eeee"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)
}

func TestTokenInfo(t *testing.T) {
	// symbol() returning the ABI string "USDT", decimals() returning 6.
	caller := &stubCaller{returns: map[string][]byte{
		"95d89b41": hexutils.HexToBytes(
			"0000000000000000000000000000000000000000000000000000000000000020" +
				"0000000000000000000000000000000000000000000000000000000000000004" +
				"5553445400000000000000000000000000000000000000000000000000000000"),
		"313ce567": hexutils.HexToBytes("0000000000000000000000000000000000000000000000000000000000000006"),
	}}
	client := testClient(caller, "")

	info, err := client.TokenInfo(context.Background(), 1, common.HexToAddress("0xdac17f958d2ee523a2206206994597c13d831ec7"))
	require.NoError(t, err)
	assert.Equal(t, "USDT", info.Symbol)
	assert.Equal(t, uint8(6), info.Decimals)
}

func TestUnpackSymbolBytes32(t *testing.T) {
	// Legacy tokens return symbol() as a right-padded bytes32.
	raw := make([]byte, 32)
	copy(raw, "MKR")
	symbol, err := unpackSymbol(raw)
	require.NoError(t, err)
	assert.Equal(t, "MKR", symbol)
}

func TestContractABI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "contract", r.URL.Query().Get("module"))
		require.Equal(t, "getsourcecode", r.URL.Query().Get("action"))
		switch r.URL.Query().Get("address") {
		case common.HexToAddress("0x4444444444444444444444444444444444444444").Hex():
			w.Write([]byte(`{"status":"1","message":"OK","result":[{"ContractName":"Frobnicator","ABI":"[{\"type\":\"function\",\"name\":\"frobnicate\",\"inputs\":[{\"name\":\"knob\",\"type\":\"uint256\"}]}]"}]}`))
		case common.HexToAddress("0x5555555555555555555555555555555555555555").Hex():
			w.Write([]byte(`{"status":"1","message":"OK","result":[{"ContractName":"","ABI":"Contract source code not verified"}]}`))
		default:
			w.Write([]byte(`{"status":"0","message":"NOTOK","result":[]}`))
		}
	}))
	defer server.Close()

	client := testClient(nil, server.URL)

	verified, err := client.ContractABI(context.Background(), 1, common.HexToAddress("0x4444444444444444444444444444444444444444"))
	require.NoError(t, err)
	assert.Equal(t, "Frobnicator", verified.Name)
	assert.Contains(t, verified.ABI, "frobnicate")

	_, err = client.ContractABI(context.Background(), 1, common.HexToAddress("0x5555555555555555555555555555555555555555"))
	assert.ErrorIs(t, err, decode.ErrABINotVerified)

	_, err = client.ContractABI(context.Background(), 1, common.HexToAddress("0x6666666666666666666666666666666666666666"))
	assert.ErrorIs(t, err, ErrExplorerError)
}

func TestContractABINoExplorer(t *testing.T) {
	client := testClient(nil, "")
	_, err := client.ContractABI(context.Background(), 1, common.Address{})
	assert.ErrorIs(t, err, decode.ErrExternalLookupFailed)
}

// The concrete client must satisfy the capabilities the other packages
// consume.
var (
	_ decode.ABISource       = (*Client)(nil)
	_ decode.TokenInfoReader = (*Client)(nil)
	_ pending.NonceReader    = (*Client)(nil)
)
