package abiutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/ethdb"
)

var methodSigRegex = regexp.MustCompile(`(\w+)\(([^\(\)]*)\)(?:\s*returns\s*\(([^\(\)]*)\))?$`)

func parseArguments(str string) (abi.Arguments, error) {
	args := make(abi.Arguments, 0)
	if len(strings.TrimSpace(str)) == 0 {
		return args, nil
	}
	argArr := strings.Split(str, ",")
	for _, arg := range argArr {
		tokens := strings.Fields(arg)
		if len(tokens) == 0 || len(tokens) > 2 {
			return nil, fmt.Errorf("invalid arguments")
		}
		var name string
		typeStr := tokens[0]
		if len(tokens) == 2 {
			name = tokens[1]
		}
		argType, err := abi.NewType(typeStr, typeStr, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid arguments")
		}
		args = append(args, abi.Argument{
			Name:    name,
			Type:    argType,
			Indexed: false,
		})
	}
	return args, nil
}

// ParseMethodSig parses a method identifier string such as
// "transfer(address to, uint256 amount) returns (bool)" into an ABIElement.
func ParseMethodSig(str string) (ABIElement, error) {
	matches := methodSigRegex.FindStringSubmatch(str)
	if matches == nil || len(matches) < 3 {
		return ABIElement{}, fmt.Errorf("invalid method signature")
	}
	name := matches[1]
	var inputs, outputs abi.Arguments
	var err error
	if inputs, err = parseArguments(matches[2]); err != nil {
		return ABIElement{}, err
	}
	if len(matches) == 4 {
		if outputs, err = parseArguments(matches[3]); err != nil {
			return ABIElement{}, err
		}
	}
	return ABIElement{
		Type:    "function",
		Name:    name,
		Inputs:  inputs,
		Outputs: outputs,
	}, nil
}

// ABIParser resolves 4-byte method ids against the known contract
// interface catalogue and the backing signature database.
type ABIParser struct {
	db         *Database
	interfaces map[string]Interface
}

func NewParser(db ethdb.Database) *ABIParser {
	sigdb, _ := NewDatabase(db)
	interfaces := make(map[string]Interface)
	for name, itf := range defaultInterfaces {
		interfaces[name] = itf
	}
	if db != nil {
		for name, itf := range loadInterfaces(db) {
			interfaces[name] = itf
		}
	}
	return &ABIParser{
		db:         sigdb,
		interfaces: interfaces,
	}
}

func (p *ABIParser) Interface(name string) (Interface, bool) {
	itf, ok := p.interfaces[name]
	return itf, ok
}

// ParseInterfaces matches a set of 4-byte method ids (hex encoded) against
// the interface catalogue. An interface matches only when every function it
// declares is present. The second return value lists the input ids that no
// matched interface accounts for, preserving input order.
func (p *ABIParser) ParseInterfaces(sigs []string) ([]Interface, []string) {
	present := make(map[string]bool, len(sigs))
	for _, sig := range sigs {
		present[strings.ToLower(sig)] = true
	}
	matched := make([]Interface, 0)
	covered := make(map[string]bool)
	for _, itf := range p.interfaces {
		full := true
		for _, id := range itf.MethodIds() {
			if !present[strings.ToLower(id.String())] {
				full = false
				break
			}
		}
		if full && len(itf.Methods) > 0 {
			matched = append(matched, itf)
			for _, id := range itf.MethodIds() {
				covered[strings.ToLower(id.String())] = true
			}
		}
	}
	remaining := make([]string, 0)
	for _, sig := range sigs {
		if !covered[strings.ToLower(sig)] {
			remaining = append(remaining, sig)
		}
	}
	return matched, remaining
}

// MethodById looks the method id up in the interface catalogue first, then
// falls back to the signature database.
func (p *ABIParser) MethodById(id MethodId) (*abi.Method, error) {
	for _, itf := range p.interfaces {
		if method, err := itf.ABI.MethodById(id[:]); err == nil {
			return method, nil
		}
	}
	sig, err := p.db.Selector(id[:])
	if err != nil {
		return nil, err
	}
	entry, err := ParseMethodSig(sig)
	if err != nil {
		return nil, err
	}
	method := abi.NewMethod(entry.Name, entry.Name, abi.Function, entry.StateMutability, false, false, entry.Inputs, entry.Outputs)
	return &method, nil
}
