package abiutils

import "fmt"

// Method signatures of the interfaces the decoder knows out of the box.
// Kept as plain signature strings so the catalogue stays greppable.
var defaultInterfaceSigs = map[string][]string{
	"IERC20": {
		"totalSupply() returns (uint256)",
		"balanceOf(address owner) returns (uint256)",
		"allowance(address owner, address spender) returns (uint256)",
		"transfer(address to, uint256 amount) returns (bool)",
		"approve(address spender, uint256 amount) returns (bool)",
		"transferFrom(address from, address to, uint256 amount) returns (bool)",
	},
	"IERC721": {
		"balanceOf(address owner) returns (uint256)",
		"ownerOf(uint256 tokenId) returns (address)",
		"getApproved(uint256 tokenId) returns (address)",
		"isApprovedForAll(address owner, address operator) returns (bool)",
		"approve(address to, uint256 tokenId)",
		"setApprovalForAll(address operator, bool approved)",
		"transferFrom(address from, address to, uint256 tokenId)",
		"safeTransferFrom(address from, address to, uint256 tokenId)",
		"safeTransferFrom(address from, address to, uint256 tokenId, bytes data)",
	},
	"ISafe": {
		"execTransaction(address to, uint256 value, bytes data, uint8 operation, uint256 safeTxGas, uint256 baseGas, uint256 gasPrice, address gasToken, address refundReceiver, bytes signatures) returns (bool)",
		"approveHash(bytes32 hashToApprove)",
		"addOwnerWithThreshold(address owner, uint256 threshold)",
		"removeOwner(address prevOwner, address owner, uint256 threshold)",
		"swapOwner(address prevOwner, address oldOwner, address newOwner)",
		"changeThreshold(uint256 threshold)",
		"getThreshold() returns (uint256)",
		"getOwners() returns (address[])",
		"nonce() returns (uint256)",
		"enableModule(address module)",
		"disableModule(address prevModule, address module)",
		"setGuard(address guard)",
	},
	"IMultiSigWallet": {
		"submitTransaction(address destination, uint256 value, bytes data) returns (uint256)",
		"confirmTransaction(uint256 transactionId)",
		"revokeConfirmation(uint256 transactionId)",
		"executeTransaction(uint256 transactionId)",
	},
	"IMultiSend": {
		"multiSend(bytes transactions)",
	},
}

var defaultInterfaces = mustBuildInterfaces(defaultInterfaceSigs)

func mustBuildInterfaces(sigs map[string][]string) map[string]Interface {
	interfaces := make(map[string]Interface, len(sigs))
	for name, methodSigs := range sigs {
		entries := make([]ABIElement, 0, len(methodSigs))
		for _, sig := range methodSigs {
			entry, err := ParseMethodSig(sig)
			if err != nil {
				panic(fmt.Sprintf("invalid builtin method signature %q: %v", sig, err))
			}
			entries = append(entries, entry)
		}
		itf, err := NewInterface(name, entries)
		if err != nil {
			panic(fmt.Sprintf("invalid builtin interface %q: %v", name, err))
		}
		interfaces[name] = itf
	}
	return interfaces
}

// DefaultInterface returns one of the builtin interfaces by name.
func DefaultInterface(name string) (Interface, bool) {
	itf, ok := defaultInterfaces[name]
	return itf, ok
}
