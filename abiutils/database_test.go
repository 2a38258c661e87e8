package abiutils

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseSelector(t *testing.T) {
	db, err := NewDatabase(rawdb.NewMemoryDatabase())
	require.NoError(t, err)

	sig, err := db.Selector(hexutils.HexToBytes("a9059cbb"))
	require.NoError(t, err)
	assert.Equal(t, "transfer(address to, uint256 amount) returns (bool)", sig)

	_, err = db.Selector(hexutils.HexToBytes("aabb1337"))
	assert.Error(t, err)

	_, err = db.Selector([]byte{0xa9})
	assert.Error(t, err)
}

func TestDatabaseAddSelector(t *testing.T) {
	diskdb := rawdb.NewMemoryDatabase()
	db, err := NewDatabase(diskdb)
	require.NoError(t, err)

	calldata := hexutils.HexToBytes("aabb13370000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, db.AddSelector("frobnicate(uint256 knob)", calldata))

	sig, err := db.Selector(calldata[:4])
	require.NoError(t, err)
	assert.Equal(t, "frobnicate(uint256)", sig)

	// The entry must survive a reopen of the signature database.
	reopened, err := NewDatabase(diskdb)
	require.NoError(t, err)
	sig, err = reopened.Selector(calldata[:4])
	require.NoError(t, err)
	assert.Equal(t, "frobnicate(uint256)", sig)
}

func TestImportABIsData(t *testing.T) {
	testData := `{
		"4bytes": {
			"aabb1337": "frobnicate(uint256)",
			"23b872dd": [
			  "transferFrom(address,address,uint256)",
			  {
				"inputs": [
				  {"name": "_from", "type": "address"},
				  {"name": "_to", "type": "address"},
				  {"name": "_value", "type": "uint256"}
				],
				"name": "transferFrom",
				"outputs": [{"name": "", "type": "bool"}],
				"stateMutability": "nonpayable",
				"type": "function"
			  }
			]
		},
		"interfaces": {
			"IFrobnicator": ["frobnicate(uint256)", "defrobnicate()"]
		}
	}`

	diskdb := rawdb.NewMemoryDatabase()
	require.NoError(t, ImportABIsData(diskdb, strings.NewReader(testData), false))

	entries := readFourBytesABIs(diskdb, hexutils.HexToBytes("aabb1337"))
	require.Len(t, entries, 1)
	assert.Equal(t, "frobnicate(uint256)", entries[0].Identifier())

	loaded := loadInterfaces(diskdb)
	itf, ok := loaded["IFrobnicator"]
	require.True(t, ok)
	assert.Len(t, itf.Methods, 2)

	parser := NewParser(diskdb)
	_, ok = parser.Interface("IFrobnicator")
	assert.True(t, ok)
}

func TestABIElementsUnmarshalDedup(t *testing.T) {
	list := ABIElements{}
	entry, err := ParseMethodSig("transfer(address,uint256)")
	require.NoError(t, err)
	require.True(t, list.addUnique(entry))
	assert.False(t, list.addUnique(entry))
	assert.Len(t, list, 1)
}
