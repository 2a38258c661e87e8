package safetx

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Aggregator collects owner signatures for one transaction hash and
// assembles the execution bundle once enough have arrived. It is safe for
// concurrent use by multiple collection goroutines.
type Aggregator struct {
	tx      *SafeTx
	sighash common.Hash

	mtx    sync.Mutex
	sigs   map[common.Address]Signature
	notify chan struct{}
}

// NewAggregator computes the signing hash of tx once and collects
// signatures against it.
func NewAggregator(tx *SafeTx) (*Aggregator, error) {
	sighash, err := tx.SigningHash()
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		tx:      tx,
		sighash: sighash,
		sigs:    make(map[common.Address]Signature),
		notify:  make(chan struct{}),
	}, nil
}

// SigningHash returns the hash all collected signatures are verified
// against.
func (agg *Aggregator) SigningHash() common.Hash {
	return agg.sighash
}

// AddRaw normalizes and verifies raw signature bytes, then records them
// under the recovered signer address.
func (agg *Aggregator) AddRaw(raw []byte) (common.Address, error) {
	sig, err := ParseSignature(agg.sighash, raw)
	if err != nil {
		return common.Address{}, err
	}
	return sig.Signer, agg.Add(sig)
}

// Add records a signature whose declared signer must match the address
// recovered from the transaction hash. A second signature from the same
// owner is rejected, owners only count once toward the threshold.
func (agg *Aggregator) Add(sig *Signature) error {
	normalized, err := NormalizeV(sig.Data)
	if err != nil {
		return err
	}
	recovered, err := RecoverSigner(agg.sighash, normalized)
	if err != nil {
		return err
	}
	if recovered != sig.Signer {
		log.Warn("Signature signer mismatch", "declared", sig.Signer, "recovered", recovered)
		return ErrSignatureMismatch
	}

	agg.mtx.Lock()
	defer agg.mtx.Unlock()
	if _, exists := agg.sigs[sig.Signer]; exists {
		return ErrDuplicateSigner
	}
	agg.sigs[sig.Signer] = Signature{Signer: sig.Signer, Data: normalized}
	close(agg.notify)
	agg.notify = make(chan struct{})
	return nil
}

// Count returns the number of distinct owners collected so far.
func (agg *Aggregator) Count() int {
	agg.mtx.Lock()
	defer agg.mtx.Unlock()
	return len(agg.sigs)
}

// Signers returns the collected owner addresses in ascending order.
func (agg *Aggregator) Signers() []common.Address {
	agg.mtx.Lock()
	defer agg.mtx.Unlock()
	signers := make([]common.Address, 0, len(agg.sigs))
	for signer := range agg.sigs {
		signers = append(signers, signer)
	}
	sort.Slice(signers, func(i, j int) bool {
		return bytes.Compare(signers[i][:], signers[j][:]) < 0
	})
	return signers
}

// Bundle concatenates the collected signatures ordered by ascending signer
// address, the layout the Safe contract checks owners against. It fails
// unless at least threshold distinct owners have signed. The result does
// not depend on arrival order.
func (agg *Aggregator) Bundle(threshold int) ([]byte, error) {
	agg.mtx.Lock()
	defer agg.mtx.Unlock()
	if len(agg.sigs) < threshold {
		return nil, ErrThresholdNotMet
	}
	return agg.assemble(), nil
}

// PartialBundle assembles whatever signatures are present, regardless of
// any threshold. Useful for inspecting an in-flight collection round.
func (agg *Aggregator) PartialBundle() []byte {
	agg.mtx.Lock()
	defer agg.mtx.Unlock()
	return agg.assemble()
}

// assemble builds the sorted concatenation. Callers must hold mtx.
func (agg *Aggregator) assemble() []byte {
	signers := make([]common.Address, 0, len(agg.sigs))
	for signer := range agg.sigs {
		signers = append(signers, signer)
	}
	sort.Slice(signers, func(i, j int) bool {
		return bytes.Compare(signers[i][:], signers[j][:]) < 0
	})
	bundle := make([]byte, 0, len(signers)*SignatureLength)
	for _, signer := range signers {
		bundle = append(bundle, agg.sigs[signer].Data...)
	}
	return bundle
}

// Wait blocks until threshold distinct owners have signed, then returns
// the assembled bundle. It returns early with the context error if ctx is
// cancelled first.
func (agg *Aggregator) Wait(ctx context.Context, threshold int) ([]byte, error) {
	for {
		agg.mtx.Lock()
		if len(agg.sigs) >= threshold {
			bundle := agg.assemble()
			agg.mtx.Unlock()
			return bundle, nil
		}
		notify := agg.notify
		agg.mtx.Unlock()
		select {
		case <-notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// BuildBundle is the one-shot form of signature aggregation: verify each
// signature against the transaction hash and return the sorted bundle.
func BuildBundle(tx *SafeTx, sigs []*Signature, threshold int) ([]byte, error) {
	agg, err := NewAggregator(tx)
	if err != nil {
		return nil, err
	}
	for _, sig := range sigs {
		if err := agg.Add(sig); err != nil {
			return nil, err
		}
	}
	return agg.Bundle(threshold)
}
