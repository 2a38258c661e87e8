package safetx

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// DomainSeparator returns hashStruct(EIP712Domain), binding the signing
// hash to one chain and one Safe account.
func (tx *SafeTx) DomainSeparator() (common.Hash, error) {
	if err := tx.Validate(); err != nil {
		return common.Hash{}, err
	}
	typedData := tx.ToTypedData()
	sep, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(sep), nil
}

// StructHash returns hashStruct(SafeTx) over the typed transaction fields.
func (tx *SafeTx) StructHash() (common.Hash, error) {
	if err := tx.Validate(); err != nil {
		return common.Hash{}, err
	}
	typedData := tx.ToTypedData()
	hash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(hash), nil
}

// SigningHash computes the canonical signing payload
// keccak256(0x19 ‖ 0x01 ‖ domainSeparator ‖ structHash). Identical inputs
// always produce byte-identical hashes; any error here is fatal for the
// signing flow, the caller must never retry with patched fields.
func (tx *SafeTx) SigningHash() (common.Hash, error) {
	if err := tx.Validate(); err != nil {
		return common.Hash{}, err
	}
	sighash, _, err := apitypes.TypedDataAndHash(tx.ToTypedData())
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(sighash), nil
}
