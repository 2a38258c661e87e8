package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/naoina/toml"
	"github.com/verichains/safekit/chain"
	"github.com/verichains/safekit/decode"
	"gopkg.in/urfave/cli.v1"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

func loadTOMLConfig(filename string, conf interface{}) error {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return tomlSettings.Unmarshal(buf, conf)
}

type appConfig struct {
	DataDir string
	Chain   chain.Config
	Decoder decode.Config
}

// makeAppConfig reads the provided TOML configuration file, if config file
// is not specified default config is used. Command line flags override the
// file values.
func makeAppConfig(ctx *cli.Context) *appConfig {
	config := appConfig{
		Chain:   chain.DefaultConfig,
		Decoder: decode.DefaultConfig,
	}
	if configFile := ctx.GlobalString(configFileFlag.Name); configFile != "" {
		if err := loadTOMLConfig(configFile, &config); err != nil {
			utils.Fatalf("Could not load config file %s: %v", configFile, err)
		}
	}
	if dataDir := ctx.GlobalString(dataDirFlag.Name); dataDir != "" {
		config.DataDir = dataDir
	}
	if rpcUrl := ctx.String(rpcUrlFlag.Name); rpcUrl != "" {
		config.Chain.RpcUrl = rpcUrl
	}
	if explorerUrl := ctx.String(explorerUrlFlag.Name); explorerUrl != "" {
		config.Chain.ExplorerUrl = explorerUrl
	}
	config.Chain = config.Chain.Sanitize()
	config.Decoder = config.Decoder.Sanitize()
	return &config
}

// makeABIDatabase opens the persistent ABI store, or an in-memory one when
// no data directory is configured.
func makeABIDatabase(config *appConfig) ethdb.Database {
	if config.DataDir == "" {
		return rawdb.NewMemoryDatabase()
	}
	db, err := rawdb.NewLevelDBDatabase(config.DataDir, 16, 16, "safekit", false)
	if err != nil {
		utils.Fatalf("Could not open ABI database at %s: %v", config.DataDir, err)
	}
	return db
}
