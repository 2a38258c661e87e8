//
// Created on 2024/3/21 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package pending

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/verichains/safekit/safetx"
)

// EntryStatus tells whether a pool entry can be executed right now.
type EntryStatus string

const (
	StatusReady   EntryStatus = "ready"   // enough signatures, nonce current or queued
	StatusPending EntryStatus = "pending" // still collecting signatures
)

// PoolEntry is one proposed transaction sitting in a Safe's off-chain
// queue together with the signatures collected for it so far.
type PoolEntry struct {
	TxHash     common.Hash        `json:"txHash"`
	Tx         *safetx.SafeTx     `json:"tx"`
	Signatures []safetx.Signature `json:"signatures"`
	Proposer   common.Address     `json:"proposer"`
	Status     EntryStatus        `json:"status,omitempty"`
}

// Nonce returns the Safe nonce the entry is queued for.
func (e *PoolEntry) Nonce() uint64 {
	return e.Tx.Nonce
}

// NonceReader reads the current nonce of a Safe account from chain state.
type NonceReader interface {
	SafeNonce(ctx context.Context, safe common.Address) (uint64, error)
}

// Result is the reconciled view of a pending pool. Degraded marks a
// result produced without a live on-chain nonce, in which case Entries is
// the unfiltered queue.
type Result struct {
	Entries   []*PoolEntry `json:"entries"`
	NonceUsed uint64       `json:"nonceUsed"`
	Degraded  bool         `json:"degraded"`
}

// Reconciler prunes stale entries from an off-chain queue against the
// Safe's on-chain nonce.
type Reconciler struct {
	nonces NonceReader
}

func NewReconciler(nonces NonceReader) *Reconciler {
	return &Reconciler{nonces: nonces}
}

// Reconcile drops entries whose nonce the chain has already consumed and
// returns the rest in ascending nonce order, tagged ready or pending
// against the signature threshold. If the nonce cannot be read the full
// queue is returned untouched and flagged degraded; dropping nothing is
// safer than dropping live transactions on a guess.
func (r *Reconciler) Reconcile(ctx context.Context, safe common.Address, entries []*PoolEntry, threshold int) *Result {
	tagged := make([]*PoolEntry, 0, len(entries))
	for _, entry := range entries {
		entry.Status = StatusPending
		if len(entry.Signatures) >= threshold {
			entry.Status = StatusReady
		}
		tagged = append(tagged, entry)
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		return tagged[i].Nonce() < tagged[j].Nonce()
	})

	nonce, err := r.nonces.SafeNonce(ctx, safe)
	if err != nil {
		log.Warn("Could not read Safe nonce, returning unfiltered pool", "safe", safe, "err", err)
		return &Result{Entries: tagged, Degraded: true}
	}

	kept := make([]*PoolEntry, 0, len(tagged))
	for _, entry := range tagged {
		if entry.Nonce() < nonce {
			continue
		}
		kept = append(kept, entry)
	}
	if dropped := len(tagged) - len(kept); dropped > 0 {
		log.Info("Pruned executed entries from pending pool", "safe", safe, "nonce", nonce, "dropped", dropped)
	}
	return &Result{Entries: kept, NonceUsed: nonce}
}
