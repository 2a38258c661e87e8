package safetx

import (
	"errors"
)

var (
	ErrInvalidAddress         = errors.New("invalid account address")
	ErrMissingChainId         = errors.New("transaction has no chain id")
	ErrInvalidOperation       = errors.New("invalid operation type")
	ErrInvalidSignatureLength = errors.New("signature must be exactly 65 bytes")
	ErrInvalidRecoveryId      = errors.New("unrecognized signature recovery id")
	ErrSignatureMismatch      = errors.New("signature does not match declared signer")
	ErrDuplicateSigner        = errors.New("signer already provided a signature")
	ErrThresholdNotMet        = errors.New("not enough signatures to meet threshold")
)
