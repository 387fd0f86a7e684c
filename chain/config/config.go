// Package config defines the immutable configuration value threaded
// through every chain constructor, replacing the source's singleton
// config() accessor.
package config

import (
	"github.com/Time0o/buenzlicoin/chain/block"
	"github.com/Time0o/buenzlicoin/chain/difficulty"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

// BlockGen holds the consensus-timing knobs loaded from the
// "block_gen" TOML table.
type BlockGen struct {
	Interval                 int64   `mapstructure:"interval"`
	DifficultyInit           float64 `mapstructure:"difficulty_init"`
	DifficultyAdjustAfter    uint64  `mapstructure:"difficulty_adjust_after"`
	DifficultyAdjustFactorLimit float64 `mapstructure:"difficulty_adjust_factor_limit"`
	TimeMaxDelta             int64   `mapstructure:"time_max_delta"`
}

// Transaction holds the optional "transaction" TOML table, only
// meaningful when the transaction variant (UTXO/PoW) is enabled.
type Transaction struct {
	NumPerBlock  uint   `mapstructure:"num_per_block"`
	RewardAmount uint64 `mapstructure:"reward_amount"`
}

// Config is the fully resolved, immutable configuration for a node.
// It is constructed once at startup (see cmd/node) and passed by
// value into every constructor that needs it; nothing reaches back
// into a global.
type Config struct {
	BlockGen    BlockGen
	Transaction Transaction

	// PoWEnabled selects the transaction+UTXO+PoW variant over the
	// plain data-chain variant. This is a configuration flag, not a
	// compile-time switch.
	PoWEnabled bool
}

// Default returns sane defaults matching the values used throughout
// the testable-properties scenarios in the absence of a supplied
// TOML file.
func Default() Config {
	return Config{
		BlockGen: BlockGen{
			Interval:                    10_000,
			DifficultyInit:              2,
			DifficultyAdjustAfter:       10,
			DifficultyAdjustFactorLimit: 16,
			TimeMaxDelta:                60_000,
		},
		Transaction: Transaction{
			NumPerBlock:  10,
			RewardAmount: 50,
		},
		PoWEnabled: true,
	}
}

// BlockParams derives block.Params from the resolved configuration.
func (c Config) BlockParams() block.Params {
	return block.Params{
		TimeMaxDelta: c.BlockGen.TimeMaxDelta,
		Params:       c.TransactionParams(),
	}
}

// TransactionParams derives txn.Params from the resolved
// configuration.
func (c Config) TransactionParams() txn.Params {
	return txn.Params{
		NumPerBlock:  c.Transaction.NumPerBlock,
		RewardAmount: c.Transaction.RewardAmount,
	}
}

// DifficultyParams derives difficulty.Params from the resolved
// configuration.
func (c Config) DifficultyParams() difficulty.Params {
	return difficulty.Params{
		Interval:           c.BlockGen.Interval,
		InitialDifficulty:  c.BlockGen.DifficultyInit,
		AdjustAfter:        c.BlockGen.DifficultyAdjustAfter,
		FactorLimit:        c.BlockGen.DifficultyAdjustFactorLimit,
	}
}
