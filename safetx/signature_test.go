package safetx

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeV(t *testing.T) {
	tests := []struct {
		v       byte
		want    byte
		wantErr error
	}{
		{v: 0, want: 27},
		{v: 1, want: 28},
		{v: 27, want: 27},
		{v: 28, want: 28},
		{v: 31, want: 27},
		{v: 32, want: 28},
		{v: 2, wantErr: ErrInvalidRecoveryId},
		{v: 26, wantErr: ErrInvalidRecoveryId},
		{v: 29, wantErr: ErrInvalidRecoveryId},
		{v: 255, wantErr: ErrInvalidRecoveryId},
	}
	for _, test := range tests {
		sig := make([]byte, SignatureLength)
		sig[64] = test.v
		out, err := NormalizeV(sig)
		if test.wantErr != nil {
			assert.ErrorIs(t, err, test.wantErr, "v=%d", test.v)
			continue
		}
		require.NoError(t, err, "v=%d", test.v)
		assert.Equal(t, test.want, out[64], "v=%d", test.v)
		// The input slice must not be mutated.
		assert.Equal(t, test.v, sig[64])
	}

	_, err := NormalizeV(make([]byte, 64))
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)
}

func TestSignRecoverRoundtrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)

	tx := testEtherTransferTx()
	sig, err := NewKeySigner(key).SignTx(tx)
	require.NoError(t, err)
	assert.Equal(t, owner, sig.Signer)
	require.Len(t, sig.Data, SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig.Data[64])

	sighash, err := tx.SigningHash()
	require.NoError(t, err)
	recovered, err := RecoverSigner(sighash, sig.Data)
	require.NoError(t, err)
	assert.Equal(t, owner, recovered)

	// Signing the precomputed digest must yield the same signature as
	// signing through the typed data path.
	digestSig, err := NewKeySigner(key).SignDigest(sighash)
	require.NoError(t, err)
	assert.Equal(t, sig.Data, digestSig.Data)
	assert.Equal(t, sig.Signer, digestSig.Signer)
}

func TestParseSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)

	tx := testEtherTransferTx()
	sighash, err := tx.SigningHash()
	require.NoError(t, err)
	raw, err := crypto.Sign(sighash[:], key)
	require.NoError(t, err)

	// Raw recovery ids from crypto.Sign are accepted and normalized.
	sig, err := ParseSignature(sighash, raw)
	require.NoError(t, err)
	assert.Equal(t, owner, sig.Signer)
	assert.Contains(t, []byte{27, 28}, sig.Data[64])

	// The eth_sign offset normalizes to the same signature.
	shifted := make([]byte, SignatureLength)
	copy(shifted, raw)
	shifted[64] += 31
	sig2, err := ParseSignature(sighash, shifted)
	require.NoError(t, err)
	assert.Equal(t, sig.Data, sig2.Data)

	bogus := make([]byte, SignatureLength)
	copy(bogus, raw)
	bogus[64] = 9
	_, err = ParseSignature(sighash, bogus)
	assert.ErrorIs(t, err, ErrInvalidRecoveryId)
}

func TestRecoverSignerRejectsRawV(t *testing.T) {
	sig := make([]byte, SignatureLength)
	sig[64] = 0
	_, err := RecoverSigner(common.HexToHash("0xdeadbeef"), sig)
	assert.ErrorIs(t, err, ErrInvalidRecoveryId)
}
