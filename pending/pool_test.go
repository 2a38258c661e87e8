package pending

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verichains/safekit/safetx"
)

type stubNonceReader struct {
	nonce uint64
	err   error
}

func (r *stubNonceReader) SafeNonce(ctx context.Context, safe common.Address) (uint64, error) {
	return r.nonce, r.err
}

func poolEntry(nonce uint64, sigCount int) *PoolEntry {
	sigs := make([]safetx.Signature, sigCount)
	return &PoolEntry{
		Tx: &safetx.SafeTx{
			ChainId: math.NewHexOrDecimal256(1),
			Safe:    common.HexToAddress("0x5afe3855358e112b5647b952709e6165e1c1eeee"),
			Nonce:   nonce,
		},
		Signatures: sigs,
	}
}

func TestReconcilePrunesExecuted(t *testing.T) {
	reconciler := NewReconciler(&stubNonceReader{nonce: 5})
	entries := []*PoolEntry{
		poolEntry(6, 1),
		poolEntry(3, 2),
		poolEntry(5, 2),
		poolEntry(4, 2),
	}

	result := reconciler.Reconcile(context.Background(), entries[0].Tx.Safe, entries, 2)
	assert.False(t, result.Degraded)
	assert.Equal(t, uint64(5), result.NonceUsed)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, uint64(5), result.Entries[0].Nonce())
	assert.Equal(t, uint64(6), result.Entries[1].Nonce())
	assert.Equal(t, StatusReady, result.Entries[0].Status)
	assert.Equal(t, StatusPending, result.Entries[1].Status)
}

func TestReconcileKeepsFutureNonces(t *testing.T) {
	reconciler := NewReconciler(&stubNonceReader{nonce: 0})
	entries := []*PoolEntry{poolEntry(2, 0), poolEntry(0, 3), poolEntry(1, 3)}

	result := reconciler.Reconcile(context.Background(), entries[0].Tx.Safe, entries, 2)
	require.Len(t, result.Entries, 3)
	for i, entry := range result.Entries {
		assert.Equal(t, uint64(i), entry.Nonce())
	}
}

func TestReconcileFailsOpen(t *testing.T) {
	reconciler := NewReconciler(&stubNonceReader{err: errors.New("rpc unreachable")})
	entries := []*PoolEntry{poolEntry(3, 2), poolEntry(1, 0)}

	result := reconciler.Reconcile(context.Background(), entries[0].Tx.Safe, entries, 2)
	assert.True(t, result.Degraded)
	// Nothing may be dropped without a trusted nonce.
	require.Len(t, result.Entries, 2)
	assert.Equal(t, uint64(1), result.Entries[0].Nonce())
	assert.Equal(t, uint64(3), result.Entries[1].Nonce())
	assert.Equal(t, StatusPending, result.Entries[0].Status)
	assert.Equal(t, StatusReady, result.Entries[1].Status)
}

func TestReconcileEmptyPool(t *testing.T) {
	reconciler := NewReconciler(&stubNonceReader{nonce: 9})
	result := reconciler.Reconcile(context.Background(), common.Address{}, nil, 2)
	assert.False(t, result.Degraded)
	assert.Empty(t, result.Entries)
}
