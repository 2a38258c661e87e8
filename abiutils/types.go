package abiutils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/status-im/keycard-go/hexutils"
)

type MethodId [4]byte

func (id MethodId) String() string {
	return hexutils.BytesToHex(id[:])
}

func HexToMethodId(s string) MethodId {
	id := MethodId{}
	copy(id[:], hexutils.HexToBytes(s))
	return id
}

// MethodIdOf extracts the leading 4-byte method id from calldata.
func MethodIdOf(data []byte) (MethodId, bool) {
	if len(data) < 4 {
		return MethodId{}, false
	}
	id := MethodId{}
	copy(id[:], data[:4])
	return id, true
}

func SigToId(sig string) MethodId {
	id := MethodId{}
	hash := crypto.Keccak256([]byte(sig))
	copy(id[:], hash[:4])
	return id
}

// ABIElement describes a single entry of a contract ABI: a function, an
// event or an error declaration.
type ABIElement struct {
	Type    string
	Name    string
	Inputs  []abi.Argument
	Outputs []abi.Argument

	// Status indicator which can be: "pure", "view",
	// "nonpayable" or "payable".
	StateMutability string

	// Event relevant indicator represents the event is
	// declared as anonymous.
	Anonymous bool
}

// Identifier returns the canonical solidity signature of the element,
// e.g. "transfer(address,uint256)".
func (e *ABIElement) Identifier() string {
	types := make([]string, len(e.Inputs))
	for i, arg := range e.Inputs {
		types[i] = arg.Type.String()
	}
	return fmt.Sprintf("%v(%v)", e.Name, strings.Join(types, ","))
}

func (e *ABIElement) Id() MethodId {
	return SigToId(e.Identifier())
}

type argumentMarshaling struct {
	Name         string               `json:"name"`
	Type         string               `json:"type"`
	InternalType string               `json:"internalType,omitempty"`
	Components   []argumentMarshaling `json:"components,omitempty"`
	Indexed      bool                 `json:"indexed,omitempty"`
}

type abiElementMarshaling struct {
	Type            string               `json:"type"`
	Name            string               `json:"name"`
	Inputs          []argumentMarshaling `json:"inputs,omitempty"`
	Outputs         []argumentMarshaling `json:"outputs,omitempty"`
	StateMutability string               `json:"stateMutability,omitempty"`
	Anonymous       bool                 `json:"anonymous,omitempty"`
}

func marshalArguments(args []abi.Argument) []argumentMarshaling {
	ret := make([]argumentMarshaling, 0, len(args))
	for _, arg := range args {
		ret = append(ret, argumentMarshaling{
			Name:         arg.Name,
			Type:         arg.Type.String(),
			InternalType: arg.Type.String(),
			Indexed:      arg.Indexed,
		})
	}
	return ret
}

func (e *ABIElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(abiElementMarshaling{
		Type:            e.Type,
		Name:            e.Name,
		Inputs:          marshalArguments(e.Inputs),
		Outputs:         marshalArguments(e.Outputs),
		StateMutability: e.StateMutability,
		Anonymous:       e.Anonymous,
	})
}

func (e *ABIElement) UnmarshalJSON(data []byte) error {
	var raw abiElementMarshaling
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	unmarshalArguments := func(args []argumentMarshaling) ([]abi.Argument, error) {
		ret := make([]abi.Argument, 0, len(args))
		for _, arg := range args {
			argType, err := abi.NewType(arg.Type, arg.InternalType, argumentMarshalings(arg.Components).toABI())
			if err != nil {
				return nil, err
			}
			ret = append(ret, abi.Argument{Name: arg.Name, Type: argType, Indexed: arg.Indexed})
		}
		return ret, nil
	}
	inputs, err := unmarshalArguments(raw.Inputs)
	if err != nil {
		return err
	}
	outputs, err := unmarshalArguments(raw.Outputs)
	if err != nil {
		return err
	}
	e.Type = raw.Type
	e.Name = raw.Name
	e.Inputs = inputs
	e.Outputs = outputs
	e.StateMutability = raw.StateMutability
	e.Anonymous = raw.Anonymous
	return nil
}

type argumentMarshalings []argumentMarshaling

func (list argumentMarshalings) toABI() []abi.ArgumentMarshaling {
	if len(list) == 0 {
		return nil
	}
	ret := make([]abi.ArgumentMarshaling, 0, len(list))
	for _, arg := range list {
		ret = append(ret, abi.ArgumentMarshaling{
			Name:         arg.Name,
			Type:         arg.Type,
			InternalType: arg.InternalType,
			Components:   argumentMarshalings(arg.Components).toABI(),
			Indexed:      arg.Indexed,
		})
	}
	return ret
}

// Interface is a named collection of ABI entries a contract may implement.
type Interface struct {
	abi.ABI
	Name string
}

func NewInterface(name string, entries []ABIElement) (Interface, error) {
	methods := make(map[string]abi.Method)
	events := make(map[string]abi.Event)
	errors := make(map[string]abi.Error)
	for _, entry := range entries {
		switch entry.Type {
		case "function":
			isPayable := entry.StateMutability == "payable"
			isConst := entry.StateMutability == "view" || entry.StateMutability == "pure"
			// Overloaded method names get an index suffix, same as abi.JSON.
			name := entry.Name
			for idx := 0; ; idx++ {
				if _, ok := methods[name]; !ok {
					break
				}
				name = fmt.Sprintf("%s%d", entry.Name, idx)
			}
			methods[name] = abi.NewMethod(name, entry.Name, abi.Function, entry.StateMutability, isConst, isPayable, entry.Inputs, entry.Outputs)
		case "event":
			events[entry.Name] = abi.NewEvent(entry.Name, entry.Name, entry.Anonymous, entry.Inputs)
		case "error":
			errors[entry.Name] = abi.NewError(entry.Name, entry.Inputs)
		default:
			return Interface{}, fmt.Errorf("invalid abi entry type: %v", entry.Type)
		}
	}
	return Interface{
		ABI: abi.ABI{
			Methods: methods,
			Events:  events,
			Errors:  errors,
		},
		Name: name,
	}, nil
}

// MethodIds returns the 4-byte ids of every function the interface declares.
func (itf Interface) MethodIds() []MethodId {
	ids := make([]MethodId, 0, len(itf.Methods))
	for _, method := range itf.Methods {
		id := MethodId{}
		copy(id[:], method.ID)
		ids = append(ids, id)
	}
	return ids
}

// UnpackInput decodes the argument section of calldata (without the 4-byte
// method id) for the named method into the fields of v.
func (itf Interface) UnpackInput(v interface{}, name string, input []byte) error {
	method, ok := itf.Methods[name]
	if !ok {
		return fmt.Errorf("method %v not found in interface %v", name, itf.Name)
	}
	values, err := method.Inputs.UnpackValues(input)
	if err != nil {
		return err
	}
	return method.Inputs.Copy(v, values)
}

// PackInput encodes a full calldata payload (method id followed by the ABI
// encoded arguments) for the named method.
func (itf Interface) PackInput(name string, args ...interface{}) ([]byte, error) {
	method, ok := itf.Methods[name]
	if !ok {
		return nil, fmt.Errorf("method %v not found in interface %v", name, itf.Name)
	}
	data, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, err
	}
	return append(method.ID[:4:4], data...), nil
}
