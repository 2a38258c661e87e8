package abiutils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodSig(t *testing.T) {
	tests := []struct {
		sig     string
		name    string
		inputs  int
		outputs int
		wantErr bool
	}{
		{sig: "transfer(address,uint256)", name: "transfer", inputs: 2},
		{sig: "transfer(address to, uint256 amount) returns (bool)", name: "transfer", inputs: 2, outputs: 1},
		{sig: "totalSupply() returns (uint256)", name: "totalSupply", inputs: 0, outputs: 1},
		{sig: "multiSend(bytes transactions)", name: "multiSend", inputs: 1},
		{sig: "swapExactTokensForTokens(uint256,uint256,address[],address,uint256)", name: "swapExactTokensForTokens", inputs: 5},
		{sig: "not a signature", wantErr: true},
		{sig: "bad(nosuchtype)", wantErr: true},
	}
	for _, test := range tests {
		entry, err := ParseMethodSig(test.sig)
		if test.wantErr {
			assert.Error(t, err, test.sig)
			continue
		}
		require.NoError(t, err, test.sig)
		assert.Equal(t, test.name, entry.Name)
		assert.Len(t, entry.Inputs, test.inputs)
		assert.Len(t, entry.Outputs, test.outputs)
	}
}

func TestMethodSigIdentifier(t *testing.T) {
	entry, err := ParseMethodSig("transfer(address to, uint256 amount) returns (bool)")
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", entry.Identifier())
	assert.Equal(t, HexToMethodId("a9059cbb"), entry.Id())
}

func TestABIParserParseInterfaces(t *testing.T) {
	unknowns := []string{
		"aabb1337", // test unknown methods
		"abcdefaa", // test unknown methods
	}
	testERC20Sigs := []string{
		"dd62ed3e", // allowance(address,address)
		"095ea7b3", // approve(address,uint256)
		"70a08231", // balanceOf(address)
		"18160ddd", // totalSupply()
		"a9059cbb", // transfer(address,uint256)
		"23b872dd", // transferFrom(address,address,uint256)
		"aabb1337", // test unknown methods
		"abcdefaa", // test unknown methods
	}
	testERC721Sigs := []string{
		"095ea7b3", // approve(address,uint256)
		"70a08231", // balanceOf(address)
		"081812fc", // getApproved(uint256)
		"e985e9c5", // isApprovedForAll(address,address)
		"6352211e", // ownerOf(uint256)
		"42842e0e", // safeTransferFrom(address,address,uint256)
		"b88d4fde", // safeTransferFrom(address,address,uint256,bytes)
		"a22cb465", // setApprovalForAll(address,bool)
		"23b872dd", // transferFrom(address,address,uint256)
		"aabb1337", // test unknown methods
		"abcdefaa", // test unknown methods
	}
	getNameList := func(ifs []Interface) []string {
		ret := make([]string, 0, len(ifs))
		for _, item := range ifs {
			ret = append(ret, item.Name)
		}
		return ret
	}
	parser := NewParser(rawdb.NewMemoryDatabase())
	ifs, remaining := parser.ParseInterfaces(testERC20Sigs)
	assert.Contains(t, getNameList(ifs), "IERC20")
	assert.Equal(t, unknowns, remaining)
	ifs, remaining = parser.ParseInterfaces(testERC721Sigs)
	assert.Contains(t, getNameList(ifs), "IERC721")
	assert.Equal(t, unknowns, remaining)
}

func TestABIParserMethodById(t *testing.T) {
	parser := NewParser(rawdb.NewMemoryDatabase())
	method, err := parser.MethodById(HexToMethodId("a9059cbb"))
	require.NoError(t, err)
	assert.Equal(t, "transfer", method.RawName)

	_, err = parser.MethodById(HexToMethodId("aabb1337"))
	assert.Error(t, err)
}

func TestUnpackInput(t *testing.T) {
	erc20, ok := DefaultInterface("IERC20")
	require.True(t, ok)
	type TransferArgs struct {
		From   common.Address
		To     common.Address
		Amount *big.Int
	}

	tests := []struct {
		input        []byte
		method       string
		expectedArgs TransferArgs
	}{
		{
			input:  hexutils.HexToBytes("000000000000000000000000a73bc58956dc002ab777452aa0b60d37b4f6d6370000000000000000000000000000000000000000000000000de0b6b3a7640000"),
			method: "transfer",
			expectedArgs: TransferArgs{
				To:     common.HexToAddress("0xA73BC58956dC002Ab777452aa0b60d37B4f6d637"),
				Amount: big.NewInt(1000000000000000000),
			},
		},
		{
			input:  hexutils.HexToBytes("00000000000000000000000064108bbde14cc327ebba159e1937a9791ce0e8a9000000000000000000000000c58bb74606b73c5043b75d7aa25ebe1d5d4e7c720000000000000000000000000000000000000000000000000000000062de20d3"),
			method: "transferFrom",
			expectedArgs: TransferArgs{
				From:   common.HexToAddress("0x64108bbDe14CC327EBba159e1937A9791Ce0e8a9"),
				To:     common.HexToAddress("0xc58Bb74606b73c5043B75d7Aa25ebe1D5D4E7c72"),
				Amount: big.NewInt(1658724563),
			},
		},
	}

	for _, test := range tests {
		var args TransferArgs
		err := erc20.UnpackInput(&args, test.method, test.input)
		require.NoError(t, err)
		assert.Equal(t, test.expectedArgs, args)
	}
}

func TestPackInputRoundtrip(t *testing.T) {
	erc20, ok := DefaultInterface("IERC20")
	require.True(t, ok)
	to := common.HexToAddress("0xA73BC58956dC002Ab777452aa0b60d37B4f6d637")
	amount := big.NewInt(1000000000000000000)

	data, err := erc20.PackInput("transfer", to, amount)
	require.NoError(t, err)
	require.Len(t, data, 4+2*32)
	assert.Equal(t, hexutils.HexToBytes("a9059cbb"), data[:4])

	var args struct {
		To     common.Address
		Amount *big.Int
	}
	require.NoError(t, erc20.UnpackInput(&args, "transfer", data[4:]))
	assert.Equal(t, to, args.To)
	assert.Equal(t, amount, args.Amount)
}
