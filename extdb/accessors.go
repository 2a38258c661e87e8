//
// Created on 2024/3/12 by khanghh
// Project: github.com/verichains/safekit
// Copyright (c) 2024 Verichains Lab
//

package extdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

func ReadFourBytesABIs(db ethdb.KeyValueReader, fourbytes []byte) []byte {
	data, _ := db.Get(FourBytesABIsKey(fourbytes))
	return data
}

func WriteFourBytesABIs(db ethdb.KeyValueWriter, fourbytes []byte, data []byte) {
	if err := db.Put(FourBytesABIsKey(fourbytes), data); err != nil {
		log.Crit("Failed to store 4-bytes ABI entries", "err", err)
	}
}

func ReadInterfaceABI(db ethdb.KeyValueReader, name string) []byte {
	data, _ := db.Get(InterfaceABIKey(name))
	return data
}

func WriteInterfaceABI(db ethdb.KeyValueWriter, name string, data []byte) {
	if err := db.Put(InterfaceABIKey(name), data); err != nil {
		log.Crit("Failed to store interface ABI", "err", err)
	}
}

func ReadContractABI(db ethdb.KeyValueReader, chainId uint64, addr common.Address) []byte {
	data, _ := db.Get(ContractABIKey(chainId, addr))
	return data
}

func WriteContractABI(db ethdb.KeyValueWriter, chainId uint64, addr common.Address, data []byte) {
	if err := db.Put(ContractABIKey(chainId, addr), data); err != nil {
		log.Crit("Failed to store verified contract ABI", "err", err)
	}
}
