//
// Created on 2024/3/12 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package extdb

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

var (
	SchemaVersionKey = []byte("SchemaVersion") // SchemaVersionKey tracks the layout version of the store.

	FourBytesMethodPrefix = []byte("4b") // FourBytesMethodPrefix + selector -> ABI entries json
	InterfaceABIPrefix    = []byte("if") // InterfaceABIPrefix + name + InterfaceABISuffix -> interface abi json
	InterfaceABISuffix    = []byte("-abi")
	ContractABIPrefix     = []byte("ca") // ContractABIPrefix + chainId + address -> verified contract abi json
)

func FourBytesABIsKey(fourbytes []byte) []byte {
	return append(FourBytesMethodPrefix, fourbytes[:4]...)
}

func InterfaceABIKey(name string) []byte {
	key := append(InterfaceABIPrefix, []byte(name)...)
	return append(key, InterfaceABISuffix...)
}

func ContractABIKey(chainId uint64, addr common.Address) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, ContractABIPrefix)
	binary.Write(buf, binary.BigEndian, chainId)
	binary.Write(buf, binary.BigEndian, addr.Bytes())
	return buf.Bytes()
}
