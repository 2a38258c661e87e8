package chain

import (
	"errors"
)

var (
	ErrEmptyCallResult = errors.New("contract call returned no data")
	ErrExplorerError   = errors.New("explorer api returned an error")
)
