//
// Created on 2024/3/18 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package decode

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallType classifies what a calldata payload does at the top level.
type CallType string

const (
	EthTransfer   CallType = "ETH_TRANSFER"
	TokenTransfer CallType = "TOKEN_TRANSFER"
	ContractCall  CallType = "CONTRACT_CALL"
	UnknownCall   CallType = "UNKNOWN"
)

// RiskLevel is a coarse triage tag for reviewers, not a security verdict.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

// Call is the raw transaction payload handed to the decoder.
type Call struct {
	ChainId   uint64
	To        common.Address
	Value     *big.Int
	Data      []byte
	Operation uint8
}

// Param is one decoded argument rendered for display.
type Param struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DecodedCall is the human-reviewable description of a call. Inner holds
// the decoded payload of a wrapped multisig call, Fallback marks results
// produced by the word heuristic rather than a known ABI.
type DecodedCall struct {
	Type         CallType       `json:"type"`
	Description  string         `json:"description"`
	Method       string         `json:"method,omitempty"`
	ContractName string         `json:"contractName,omitempty"`
	To           common.Address `json:"to"`
	Value        *big.Int       `json:"value,omitempty"`
	Params       []Param        `json:"params,omitempty"`
	Risk         RiskLevel      `json:"risk"`
	RiskReasons  []string       `json:"riskReasons,omitempty"`
	Inner        *DecodedCall   `json:"inner,omitempty"`
	Fallback     bool           `json:"fallback,omitempty"`
}

// Print writes an indented multi-line rendering of the decoded call,
// descending into wrapped inner calls.
func (dc *DecodedCall) Print(w io.Writer) {
	dc.print(w, 0)
}

func (dc *DecodedCall) print(w io.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\n", indent, dc.Description)
	if dc.Method != "" {
		target := dc.To.Hex()
		if dc.ContractName != "" {
			target = fmt.Sprintf("%s (%s)", dc.ContractName, target)
		}
		fmt.Fprintf(w, "%s  method: %s @ %s\n", indent, dc.Method, target)
	}
	for _, param := range dc.Params {
		fmt.Fprintf(w, "%s  %s (%s): %s\n", indent, param.Name, param.Type, param.Value)
	}
	if dc.Risk != RiskLow {
		fmt.Fprintf(w, "%s  risk: %s (%s)\n", indent, dc.Risk, strings.Join(dc.RiskReasons, ", "))
	}
	if dc.Inner != nil {
		fmt.Fprintf(w, "%s  wraps:\n", indent)
		dc.Inner.print(w, depth+2)
	}
}

// formatValue renders a decoded ABI value for display.
func formatValue(val interface{}) string {
	switch v := val.(type) {
	case common.Address:
		return v.Hex()
	case []byte:
		return hexutil.Encode(v)
	case [32]byte:
		return hexutil.Encode(v[:])
	case *big.Int:
		return v.String()
	case string:
		return v
	case bool:
		return fmt.Sprintf("%v", v)
	}
	if list, ok := asSlice(val); ok {
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprintf("%v", val)
}

func asSlice(val interface{}) ([]interface{}, bool) {
	switch v := val.(type) {
	case []interface{}:
		return v, true
	case []common.Address:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []*big.Int:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	return nil, false
}

// formatUnits renders an integer token amount as a decimal string using
// the given number of fractional digits, trimming trailing zeros.
func formatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, unit, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%0*s", int(decimals), frac.Abs(frac).String()), "0")
	return fmt.Sprintf("%s.%s", whole.String(), fracStr)
}
