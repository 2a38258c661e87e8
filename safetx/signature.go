package safetx

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// SignatureLength is the byte length of an ECDSA signature in the
// r ‖ s ‖ v layout the Safe contract consumes.
const SignatureLength = 65

// Signature is one owner's approval of a transaction hash.
type Signature struct {
	Signer common.Address `json:"signer"`
	Data   hexutil.Bytes  `json:"signature"`
}

// NormalizeV maps the recovery id at sig[64] onto the contract form
// {27, 28}. Accepted aliases are the raw ids {0, 1} and the eth_sign
// offsets {31, 32}. Anything else is rejected so the offending party can
// re-sign, rather than silently flipping a bit and breaking on-chain
// verification.
func NormalizeV(sig []byte) ([]byte, error) {
	if len(sig) != SignatureLength {
		return nil, ErrInvalidSignatureLength
	}
	out := make([]byte, SignatureLength)
	copy(out, sig)
	switch sig[64] {
	case 0, 31:
		out[64] = 27
	case 1, 32:
		out[64] = 28
	case 27, 28:
	default:
		log.Warn("Rejecting signature with unknown recovery id", "v", sig[64])
		return nil, ErrInvalidRecoveryId
	}
	return out, nil
}

// ParseSignature normalizes raw signature bytes and recovers the signer
// address from the given signing hash.
func ParseSignature(sighash common.Hash, raw []byte) (*Signature, error) {
	sig, err := NormalizeV(raw)
	if err != nil {
		return nil, err
	}
	signer, err := RecoverSigner(sighash, sig)
	if err != nil {
		return nil, err
	}
	return &Signature{Signer: signer, Data: sig}, nil
}

// RecoverSigner returns the address whose key produced sig over sighash.
// The signature must already be in normalized {27, 28} form.
func RecoverSigner(sighash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, ErrInvalidSignatureLength
	}
	if sig[64] != 27 && sig[64] != 28 {
		return common.Address{}, ErrInvalidRecoveryId
	}
	// Recovery wants the raw id, not the contract offset.
	recsig := make([]byte, SignatureLength)
	copy(recsig, sig)
	recsig[64] -= 27
	pubkey, err := crypto.SigToPub(sighash[:], recsig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}
