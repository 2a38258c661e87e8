package safetx

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TypedDataSigner signs a Safe transaction through its EIP-712 typed data
// representation. Wallet backends that re-derive the hash themselves
// implement this.
type TypedDataSigner interface {
	SignTx(tx *SafeTx) (*Signature, error)
}

// DigestSigner signs a precomputed 32-byte signing hash. Raw key holders
// and HSM-style backends implement this.
type DigestSigner interface {
	SignDigest(sighash common.Hash) (*Signature, error)
}

// KeySigner signs with an in-memory secp256k1 private key. It implements
// both signing interfaces and both paths produce the same signature for
// the same transaction.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// Address returns the owner account the signer controls.
func (s *KeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *KeySigner) SignTx(tx *SafeTx) (*Signature, error) {
	sighash, err := tx.SigningHash()
	if err != nil {
		return nil, err
	}
	return s.SignDigest(sighash)
}

func (s *KeySigner) SignDigest(sighash common.Hash) (*Signature, error) {
	sig, err := crypto.Sign(sighash[:], s.key)
	if err != nil {
		return nil, err
	}
	// crypto.Sign emits the raw recovery id {0, 1}.
	sig[64] += 27
	return &Signature{Signer: s.Address(), Data: sig}, nil
}
