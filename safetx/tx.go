package safetx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Operation types understood by the Safe contract.
const (
	OperationCall         uint8 = 0
	OperationDelegateCall uint8 = 1
)

// SafeTx is a single Safe multisig transaction together with the signing
// domain (chain id, verifying contract) its hash is bound to. The JSON
// layout follows the 'SafeMultisigTransaction' schema of the Safe
// transaction service, so pool dumps can be decoded directly.
type SafeTx struct {
	ChainId        *math.HexOrDecimal256 `json:"chainId"`
	Safe           common.Address        `json:"safe"`
	To             common.Address        `json:"to"`
	Value          math.Decimal256       `json:"value"`
	Data           *hexutil.Bytes        `json:"data"`
	Operation      uint8                 `json:"operation"`
	SafeTxGas      math.Decimal256       `json:"safeTxGas"`
	BaseGas        math.Decimal256       `json:"baseGas"`
	GasPrice       math.Decimal256       `json:"gasPrice"`
	GasToken       common.Address        `json:"gasToken"`
	RefundReceiver common.Address        `json:"refundReceiver"`
	Nonce          uint64                `json:"nonce"`
}

func (tx *SafeTx) Validate() error {
	if tx.ChainId == nil {
		return ErrMissingChainId
	}
	if tx.Operation != OperationCall && tx.Operation != OperationDelegateCall {
		return ErrInvalidOperation
	}
	return nil
}

// ToTypedData converts the tx to the EIP-712 typed data structure the Safe
// contract verifies signatures against.
func (tx *SafeTx) ToTypedData() apitypes.TypedData {
	var data hexutil.Bytes
	if tx.Data != nil {
		data = *tx.Data
	}
	value := big.Int(tx.Value)
	safeTxGas := big.Int(tx.SafeTxGas)
	baseGas := big.Int(tx.BaseGas)
	gasPrice := big.Int(tx.GasPrice)
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"SafeTx": []apitypes.Type{
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "data", Type: "bytes"},
				{Name: "operation", Type: "uint8"},
				{Name: "safeTxGas", Type: "uint256"},
				{Name: "baseGas", Type: "uint256"},
				{Name: "gasPrice", Type: "uint256"},
				{Name: "gasToken", Type: "address"},
				{Name: "refundReceiver", Type: "address"},
				{Name: "nonce", Type: "uint256"},
			},
		},
		Domain: apitypes.TypedDataDomain{
			VerifyingContract: tx.Safe.Hex(),
			ChainId:           tx.ChainId,
		},
		PrimaryType: "SafeTx",
		Message: apitypes.TypedDataMessage{
			"to":             tx.To.Hex(),
			"value":          value.String(),
			"data":           data,
			"operation":      new(big.Int).SetUint64(uint64(tx.Operation)).String(),
			"safeTxGas":      safeTxGas.String(),
			"baseGas":        baseGas.String(),
			"gasPrice":       gasPrice.String(),
			"gasToken":       tx.GasToken.Hex(),
			"refundReceiver": tx.RefundReceiver.Hex(),
			"nonce":          new(big.Int).SetUint64(tx.Nonce).String(),
		},
	}
}
