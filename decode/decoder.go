//
// Created on 2024/3/18 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru"
	"github.com/verichains/safekit/abiutils"
	"github.com/verichains/safekit/extdb"
	"golang.org/x/sync/errgroup"
)

var (
	abiCacheHitMeter   = metrics.NewRegisteredMeter("safekit/decode/abicache/hit", nil)
	abiCacheMissMeter  = metrics.NewRegisteredMeter("safekit/decode/abicache/miss", nil)
	abiLookupFailMeter = metrics.NewRegisteredMeter("safekit/decode/abilookup/fail", nil)
)

// Safe operation values carried alongside calldata.
const (
	opCall         uint8 = 0
	opDelegateCall uint8 = 1
)

var (
	execTransactionId   = abiutils.HexToMethodId("6a761202")
	submitTransactionId = abiutils.HexToMethodId("c6427474")
	transferId          = abiutils.HexToMethodId("a9059cbb")
	transferFromId      = abiutils.HexToMethodId("23b872dd")
)

// VerifiedABI is the payload an ABISource returns for a verified contract.
type VerifiedABI struct {
	Name string `json:"name"`
	ABI  string `json:"abi"`
}

// ABISource fetches the verified ABI of a deployed contract, typically
// from an explorer API. Implementations must honor the context deadline.
type ABISource interface {
	ContractABI(ctx context.Context, chainId uint64, addr common.Address) (*VerifiedABI, error)
}

// TokenInfo is the display metadata of an ERC-20 token.
type TokenInfo struct {
	Symbol   string
	Decimals uint8
}

// TokenInfoReader resolves token display metadata via chain calls.
type TokenInfoReader interface {
	TokenInfo(ctx context.Context, chainId uint64, token common.Address) (*TokenInfo, error)
}

type Config struct {
	CacheSize      int           // number of verified ABIs kept in memory
	LookupTimeout  time.Duration // per remote ABI lookup
	MaxUnwrapDepth int           // bound on nested multisig unwrapping
	HighValueWei   *big.Int      // native value that flags a call high risk
	NativeSymbol   string
}

var DefaultConfig = Config{
	CacheSize:      256,
	LookupTimeout:  5 * time.Second,
	MaxUnwrapDepth: 3,
	HighValueWei:   new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)),
	NativeSymbol:   "ETH",
}

func (cfg Config) Sanitize() Config {
	if cfg.CacheSize <= 0 {
		log.Warn("Invalid decoder cache size, using default", "provided", cfg.CacheSize, "default", DefaultConfig.CacheSize)
		cfg.CacheSize = DefaultConfig.CacheSize
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultConfig.LookupTimeout
	}
	if cfg.MaxUnwrapDepth <= 0 {
		cfg.MaxUnwrapDepth = DefaultConfig.MaxUnwrapDepth
	}
	if cfg.HighValueWei == nil {
		cfg.HighValueWei = DefaultConfig.HighValueWei
	}
	if cfg.NativeSymbol == "" {
		cfg.NativeSymbol = DefaultConfig.NativeSymbol
	}
	return cfg
}

// Decoder turns raw calldata into reviewable descriptions. Decoding never
// fails, unknown payloads degrade to the 32-byte word heuristic.
type Decoder struct {
	cfg      Config
	db       ethdb.Database
	parser   *abiutils.ABIParser
	source   ABISource
	tokens   TokenInfoReader
	abiCache *lru.Cache // "<chainId>:<addr>" -> *abiutils.Interface, nil entry = not verified
}

func NewDecoder(db ethdb.Database, source ABISource, tokens TokenInfoReader, cfg Config) (*Decoder, error) {
	cfg = cfg.Sanitize()
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		cfg:      cfg,
		db:       db,
		parser:   abiutils.NewParser(db),
		source:   source,
		tokens:   tokens,
		abiCache: cache,
	}, nil
}

// Decode describes a single call. The result is always non-nil.
func (d *Decoder) Decode(ctx context.Context, call *Call) *DecodedCall {
	return d.decode(ctx, call, 0)
}

// DecodeBatch decodes a list of calls concurrently. Order of the result
// matches the input; the only shared state is the ABI cache.
func (d *Decoder) DecodeBatch(ctx context.Context, calls []*Call) []*DecodedCall {
	results := make([]*DecodedCall, len(calls))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(8)
	for i, call := range calls {
		i, call := i, call
		grp.Go(func() error {
			results[i] = d.decode(ctx, call, 0)
			return nil
		})
	}
	grp.Wait()
	return results
}

func (d *Decoder) decode(ctx context.Context, call *Call, depth int) *DecodedCall {
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	// Strategy 1: a plain native transfer carries no calldata.
	if len(call.Data) == 0 {
		dc := &DecodedCall{
			Type:        EthTransfer,
			Description: fmt.Sprintf("Send %s %s to %s", formatUnits(value, 18), d.cfg.NativeSymbol, call.To.Hex()),
			To:          call.To,
			Value:       value,
		}
		if value.Sign() == 0 {
			dc.Type = ContractCall
			dc.Description = fmt.Sprintf("Call %s with no data", call.To.Hex())
		}
		d.assessRisk(call, nil, dc)
		return dc
	}
	id, ok := abiutils.MethodIdOf(call.Data)
	if !ok {
		dc := &DecodedCall{
			Type:        UnknownCall,
			Description: fmt.Sprintf("Call %s with malformed calldata", call.To.Hex()),
			To:          call.To,
			Value:       value,
			Params:      []Param{{Name: "data", Type: "bytes", Value: formatValue(call.Data)}},
			Fallback:    true,
		}
		d.assessRisk(call, nil, dc)
		return dc
	}
	// Strategy 2: unwrap nested multisig execution payloads.
	if depth < d.cfg.MaxUnwrapDepth {
		if dc := d.decodeWrapped(ctx, call, id, depth); dc != nil {
			return dc
		}
	}
	// Strategy 3: known selector catalogue.
	if dc := d.decodeKnown(ctx, call, id); dc != nil {
		return dc
	}
	// Strategy 4: verified ABI lookup, cached, failures fall through.
	if dc := d.decodeVerified(ctx, call, id); dc != nil {
		return dc
	}
	// Strategy 5: word heuristic, last resort.
	return d.decodeHeuristic(call, id)
}

// decodeWrapped unwraps Safe execTransaction and legacy multisig wallet
// submitTransaction payloads and decodes the inner call.
func (d *Decoder) decodeWrapped(ctx context.Context, call *Call, id abiutils.MethodId, depth int) *DecodedCall {
	var (
		inner     Call
		methodSig string
	)
	switch id {
	case execTransactionId:
		itf, _ := abiutils.DefaultInterface("ISafe")
		method := itf.Methods["execTransaction"]
		values, err := method.Inputs.UnpackValues(call.Data[4:])
		if err != nil {
			return nil
		}
		inner = Call{
			ChainId:   call.ChainId,
			To:        values[0].(common.Address),
			Value:     values[1].(*big.Int),
			Data:      values[2].([]byte),
			Operation: values[3].(uint8),
		}
		methodSig = method.Sig
	case submitTransactionId:
		itf, _ := abiutils.DefaultInterface("IMultiSigWallet")
		method := itf.Methods["submitTransaction"]
		values, err := method.Inputs.UnpackValues(call.Data[4:])
		if err != nil {
			return nil
		}
		inner = Call{
			ChainId: call.ChainId,
			To:      values[0].(common.Address),
			Value:   values[1].(*big.Int),
			Data:    values[2].([]byte),
		}
		methodSig = method.Sig
	default:
		return nil
	}
	dc := &DecodedCall{
		Type:        ContractCall,
		Description: fmt.Sprintf("Execute wrapped call through multisig %s", call.To.Hex()),
		Method:      methodSig,
		To:          call.To,
		Value:       call.Value,
		Inner:       d.decode(ctx, &inner, depth+1),
	}
	d.assessRisk(call, nil, dc)
	return dc
}

// decodeKnown resolves the selector against the builtin interface
// catalogue and the 4-byte signature database.
func (d *Decoder) decodeKnown(ctx context.Context, call *Call, id abiutils.MethodId) *DecodedCall {
	method, err := d.parser.MethodById(id)
	if err != nil {
		return nil
	}
	return d.describeMethod(ctx, call, method, "")
}

// decodeVerified fetches the contract's verified ABI, first from the
// persistent store, then from the remote source. Lookups are cached per
// (chain, address); a failed remote fetch only degrades confidence.
func (d *Decoder) decodeVerified(ctx context.Context, call *Call, id abiutils.MethodId) *DecodedCall {
	itf := d.contractInterface(ctx, call.ChainId, call.To)
	if itf == nil {
		return nil
	}
	method, err := itf.ABI.MethodById(id[:])
	if err != nil {
		return nil
	}
	return d.describeMethod(ctx, call, method, itf.Name)
}

func (d *Decoder) contractInterface(ctx context.Context, chainId uint64, addr common.Address) *abiutils.Interface {
	cacheKey := fmt.Sprintf("%d:%x", chainId, addr)
	if cached, ok := d.abiCache.Get(cacheKey); ok {
		abiCacheHitMeter.Mark(1)
		itf, _ := cached.(*abiutils.Interface)
		return itf
	}
	abiCacheMissMeter.Mark(1)

	if d.db != nil {
		if blob := extdb.ReadContractABI(d.db, chainId, addr); len(blob) > 0 {
			if itf := buildVerifiedInterface(blob); itf != nil {
				d.abiCache.Add(cacheKey, itf)
				return itf
			}
		}
	}
	if d.source == nil {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, d.cfg.LookupTimeout)
	defer cancel()
	verified, err := d.source.ContractABI(lookupCtx, chainId, addr)
	if err != nil {
		abiLookupFailMeter.Mark(1)
		if errors.Is(err, ErrABINotVerified) {
			d.abiCache.Add(cacheKey, (*abiutils.Interface)(nil))
		} else {
			log.Warn("Verified ABI lookup failed", "chain", chainId, "address", addr, "err", err)
		}
		return nil
	}
	blob, err := json.Marshal(verified)
	if err != nil {
		return nil
	}
	itf := buildVerifiedInterface(blob)
	if itf == nil {
		return nil
	}
	if d.db != nil {
		extdb.WriteContractABI(d.db, chainId, addr, blob)
	}
	d.abiCache.Add(cacheKey, itf)
	return itf
}

func buildVerifiedInterface(blob []byte) *abiutils.Interface {
	var verified VerifiedABI
	if err := json.Unmarshal(blob, &verified); err != nil {
		return nil
	}
	entries, err := abiutils.UnmarshalABI([]byte(verified.ABI))
	if err != nil {
		return nil
	}
	// Constructors, fallback and receive entries carry no selector.
	functions := make([]abiutils.ABIElement, 0, len(entries))
	for _, entry := range entries {
		switch entry.Type {
		case "function", "event", "error":
			functions = append(functions, entry)
		}
	}
	itf, err := abiutils.NewInterface(verified.Name, functions)
	if err != nil {
		return nil
	}
	return &itf
}

// describeMethod renders a resolved method call, including the token
// transfer special case. Calldata whose argument section does not
// round-trip through the ABI encoder is treated as stuffed and rejected.
func (d *Decoder) describeMethod(ctx context.Context, call *Call, method *abi.Method, contractName string) *DecodedCall {
	values, err := method.Inputs.UnpackValues(call.Data[4:])
	if err != nil {
		return nil
	}
	if packed, err := method.Inputs.Pack(values...); err != nil || !bytes.Equal(packed, call.Data[4:]) {
		return nil
	}
	params := make([]Param, len(values))
	for i, arg := range method.Inputs {
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params[i] = Param{Name: name, Type: arg.Type.String(), Value: formatValue(values[i])}
	}
	dc := &DecodedCall{
		Type:         ContractCall,
		Method:       method.Sig,
		ContractName: contractName,
		To:           call.To,
		Value:        call.Value,
		Params:       params,
	}
	switch abiutils.SigToId(method.Sig) {
	case transferId:
		dc.Type = TokenTransfer
		dc.Description = d.describeTokenTransfer(ctx, call, values[0].(common.Address), values[1].(*big.Int))
	case transferFromId:
		dc.Type = TokenTransfer
		dc.Description = d.describeTokenTransfer(ctx, call, values[1].(common.Address), values[2].(*big.Int))
	default:
		dc.Description = fmt.Sprintf("Call %s on %s", method.Sig, call.To.Hex())
	}
	d.assessRisk(call, method, dc)
	return dc
}

func (d *Decoder) describeTokenTransfer(ctx context.Context, call *Call, to common.Address, amount *big.Int) string {
	symbol := "tokens"
	var decimals uint8
	if d.tokens != nil {
		if info, err := d.tokens.TokenInfo(ctx, call.ChainId, call.To); err == nil && info != nil {
			symbol, decimals = info.Symbol, info.Decimals
		}
	}
	return fmt.Sprintf("Send %s %s to %s", formatUnits(amount, decimals), symbol, to.Hex())
}

// decodeHeuristic splits the argument section into 32-byte words and
// guesses their types. Left-padded words shaped like accounts render as
// addresses, everything else as integers or raw words.
func (d *Decoder) decodeHeuristic(call *Call, id abiutils.MethodId) *DecodedCall {
	args := call.Data[4:]
	params := make([]Param, 0, len(args)/32+1)
	for i := 0; i+32 <= len(args); i += 32 {
		word := args[i : i+32]
		params = append(params, heuristicParam(len(params), word))
	}
	if tail := len(args) % 32; tail != 0 {
		params = append(params, Param{
			Name:  fmt.Sprintf("param%d", len(params)),
			Type:  "bytes",
			Value: formatValue(args[len(args)-tail:]),
		})
	}
	dc := &DecodedCall{
		Type:        UnknownCall,
		Description: fmt.Sprintf("Call unknown method 0x%s on %s", id, call.To.Hex()),
		To:          call.To,
		Value:       call.Value,
		Params:      params,
		Fallback:    true,
	}
	d.assessRisk(call, nil, dc)
	return dc
}

func heuristicParam(idx int, word []byte) Param {
	name := fmt.Sprintf("param%d", idx)
	zeroPrefix := true
	for _, b := range word[:12] {
		if b != 0 {
			zeroPrefix = false
			break
		}
	}
	value := new(big.Int).SetBytes(word)
	if zeroPrefix && value.Sign() != 0 {
		// A left-padded 20-byte body reads like an account address.
		if value.BitLen() > 64 {
			return Param{Name: name, Type: "address", Value: common.BytesToAddress(word).Hex()}
		}
		return Param{Name: name, Type: "uint256", Value: value.String()}
	}
	if zeroPrefix {
		return Param{Name: name, Type: "uint256", Value: "0"}
	}
	return Param{Name: name, Type: "bytes32", Value: formatValue(word)}
}
