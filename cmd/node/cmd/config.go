package cmd

import (
	"github.com/spf13/viper"

	chainconfig "github.com/Time0o/buenzlicoin/chain/config"
)

// resolvedConfig is the chain configuration resolved from defaults
// and an optional TOML file, ready to convert into a
// chain/config.Config.
type resolvedConfig struct {
	chainconfig.Config
}

// defaultConfigValues mirrors chain/config.Default() as a flat
// viper-key map so a config file only has to override what it needs
// to change.
func defaultConfigValues() map[string]any {
	d := chainconfig.Default()

	return map[string]any{
		"pow_enabled":                              d.PoWEnabled,
		"block_gen.interval":                       d.BlockGen.Interval,
		"block_gen.difficulty_init":                d.BlockGen.DifficultyInit,
		"block_gen.difficulty_adjust_after":         d.BlockGen.DifficultyAdjustAfter,
		"block_gen.difficulty_adjust_factor_limit":  d.BlockGen.DifficultyAdjustFactorLimit,
		"block_gen.time_max_delta":                  d.BlockGen.TimeMaxDelta,
		"transaction.num_per_block":                 d.Transaction.NumPerBlock,
		"transaction.reward_amount":                 d.Transaction.RewardAmount,
	}
}

// decodeConfig reads the resolved viper values (defaults overridden
// by any loaded file) into a chain/config.Config.
func decodeConfig(v *viper.Viper) (resolvedConfig, error) {
	cfg := chainconfig.Config{
		PoWEnabled: v.GetBool("pow_enabled"),
		BlockGen: chainconfig.BlockGen{
			Interval:                    v.GetInt64("block_gen.interval"),
			DifficultyInit:              v.GetFloat64("block_gen.difficulty_init"),
			DifficultyAdjustAfter:       uint64(v.GetInt64("block_gen.difficulty_adjust_after")),
			DifficultyAdjustFactorLimit: v.GetFloat64("block_gen.difficulty_adjust_factor_limit"),
			TimeMaxDelta:                v.GetInt64("block_gen.time_max_delta"),
		},
		Transaction: chainconfig.Transaction{
			NumPerBlock:  uint(v.GetUint("transaction.num_per_block")),
			RewardAmount: v.GetUint64("transaction.reward_amount"),
		},
	}

	return resolvedConfig{Config: cfg}, nil
}
