package decode

import (
	"errors"
)

var (
	// ErrExternalLookupFailed marks a failed verified-ABI fetch. It is
	// informational, the decoder degrades to the heuristic instead of
	// failing the call.
	ErrExternalLookupFailed = errors.New("external abi lookup failed")
	ErrABINotVerified       = errors.New("contract abi not verified")
)
