package abiutils

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/verichains/safekit/extdb"
)

//go:embed 4bytes.json
var embeddedJSON []byte

type ABIElements []ABIElement

func (list *ABIElements) addUnique(item ABIElement) bool {
	for _, entry := range *list {
		if item.Identifier() == entry.Identifier() {
			return false
		}
	}
	*list = append(*list, item)
	return true
}

func (list *ABIElements) UnmarshalJSON(data []byte) error {
	if text, err := strconv.Unquote(string(data)); err == nil {
		if entry, err := ParseMethodSig(text); err == nil {
			*list = append(*list, entry)
		}
		return nil
	}

	rawEntries := []json.RawMessage{}
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		return err
	}
	for _, raw := range rawEntries {
		var (
			entry ABIElement
			err   error
		)
		if text, qerr := strconv.Unquote(string(raw)); qerr == nil {
			entry, err = ParseMethodSig(text)
		} else {
			err = json.Unmarshal(raw, &entry)
		}
		if err != nil {
			return err
		}
		*list = append(*list, entry)
	}
	return nil
}

func UnmarshalABI(data []byte) ([]ABIElement, error) {
	list := ABIElements{}
	err := json.Unmarshal(data, &list)
	return list, err
}

// Database resolves 4-byte method ids to method signatures. It merges an
// immutable embedded set with a mutable set persisted in the extdb
// key-value store. The mutable set grows through AddSelector and the ABI
// import command.
type Database struct {
	embedded map[string]string
	db       ethdb.Database
}

func NewDatabase(db ethdb.Database) (*Database, error) {
	embedded := make(map[string]string)
	if err := json.Unmarshal(embeddedJSON, &embedded); err != nil {
		return nil, err
	}
	return &Database{embedded: embedded, db: db}, nil
}

// Size returns the number of entries in the embedded set.
func (d *Database) Size() int {
	return len(d.embedded)
}

// Selector returns the method signature registered for the given 4-byte id.
func (d *Database) Selector(id []byte) (string, error) {
	if len(id) < 4 {
		return "", fmt.Errorf("expected 4-byte method id, got %d bytes", len(id))
	}
	sig := hex.EncodeToString(id[:4])
	if selector, exists := d.embedded[sig]; exists {
		return selector, nil
	}
	if d.db != nil {
		if entries := readFourBytesABIs(d.db, id[:4]); len(entries) > 0 {
			return entries[0].Identifier(), nil
		}
	}
	return "", fmt.Errorf("method signature %v not found", sig)
}

// AddSelector registers the signature of the calldata's 4-byte id in the
// mutable set. Known ids are left untouched.
func (d *Database) AddSelector(sig string, data []byte) error {
	if len(data) < 4 || d.db == nil {
		return nil
	}
	if _, err := d.Selector(data[:4]); err == nil {
		return nil
	}
	entry, err := ParseMethodSig(sig)
	if err != nil {
		return err
	}
	entries := readFourBytesABIs(d.db, data[:4])
	if !entries.addUnique(entry) {
		return nil
	}
	blob, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	extdb.WriteFourBytesABIs(d.db, data[:4], blob)
	return nil
}

func readFourBytesABIs(db ethdb.Database, fourbytes []byte) ABIElements {
	ret := ABIElements{}
	data := extdb.ReadFourBytesABIs(db, fourbytes)
	json.Unmarshal(data, &ret)
	return ret
}

func import4BytesABIs(db ethdb.Database, abis map[string]ABIElements, override bool) (int, error) {
	if len(abis) == 0 {
		return 0, nil
	}
	imported := 0
	batch := db.NewBatch()
	for id, list := range abis {
		fourbytes, err := hex.DecodeString(id)
		if err != nil || len(fourbytes) != 4 {
			continue
		}
		entries := list
		if !override {
			entries = readFourBytesABIs(db, fourbytes)
			modified := false
			for _, entry := range list {
				modified = entries.addUnique(entry) || modified
			}
			if !modified {
				entries = nil
			}
		}
		if len(entries) > 0 {
			data, err := json.Marshal(entries)
			if err != nil {
				return 0, err
			}
			extdb.WriteFourBytesABIs(batch, fourbytes, data)
			imported += len(entries)
		}
	}
	return imported, batch.Write()
}

// rawInterface is the storage layout of a named contract interface.
type rawInterface struct {
	Name string       `json:"name"` // Name of interface
	ABI  []ABIElement `json:"abi"`  // List of signatures of methods, events, errors
}

func readInterfaceABIs(db ethdb.Database) []rawInterface {
	it := db.NewIterator(extdb.InterfaceABIPrefix, nil)
	defer it.Release()
	ret := make([]rawInterface, 0)
	for it.Next() {
		if bytes.HasSuffix(it.Key(), extdb.InterfaceABISuffix) {
			raw := rawInterface{}
			if err := json.Unmarshal(it.Value(), &raw); err != nil {
				log.Error("could not load interface abi", "key", hexutil.Encode(it.Key()))
				continue
			}
			ret = append(ret, raw)
		}
	}
	return ret
}

func loadInterfaces(db ethdb.Database) map[string]Interface {
	interfaces := make(map[string]Interface)
	for _, raw := range readInterfaceABIs(db) {
		item, err := NewInterface(raw.Name, raw.ABI)
		if err != nil {
			log.Error("Invalid contract interface", "name", raw.Name, "error", err)
			continue
		}
		interfaces[item.Name] = item
	}
	return interfaces
}

func importInterfaces(db ethdb.Database, ifs map[string]ABIElements, override bool) (int, int, error) {
	batch := db.NewBatch()
	importList := []rawInterface{}
	for name, item := range ifs {
		raw := rawInterface{name, item}
		if override {
			importList = append(importList, raw)
		} else if exists, _ := db.Has(extdb.InterfaceABIKey(name)); !exists {
			importList = append(importList, raw)
		}
	}
	numEntries := 0
	for _, item := range importList {
		data, _ := json.Marshal(item)
		extdb.WriteInterfaceABI(batch, item.Name, data)
		numEntries += len(item.ABI)
	}
	return len(importList), numEntries, batch.Write()
}

// ImportABIsData imports a JSON dump of 4-byte signatures and named
// interfaces into the store. The dump format is:
//
//	{"4bytes": {"a9059cbb": "transfer(address,uint256)", ...},
//	 "interfaces": {"IERC20": [...], ...}}
func ImportABIsData(db ethdb.Database, reader io.Reader, override bool) error {
	dec := json.NewDecoder(reader)
	var data struct {
		FourBytes  map[string]ABIElements `json:"4bytes"`     // 4-bytes sigs to abi list
		Interfaces map[string]ABIElements `json:"interfaces"` // interface name to abi list
	}
	if err := dec.Decode(&data); err != nil {
		return err
	}

	abiCount, err := import4BytesABIs(db, data.FourBytes, override)
	if err != nil {
		log.Error("Could not import 4-bytes ABI entries", "error", err)
		return err
	}
	log.Info(fmt.Sprintf("Imported %d 4-bytes ABI entries", abiCount))

	ifCount, abiCount, err := importInterfaces(db, data.Interfaces, override)
	if err != nil {
		log.Error("Could not import contract interfaces", "error", err)
		return err
	}
	log.Info(fmt.Sprintf("Imported %d contract interfaces, total ABI entries: %d", ifCount, abiCount))
	return nil
}
