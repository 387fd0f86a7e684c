// Package cmd implements the node's command-line entry point: flag
// parsing via cobra, config-file loading via viper, and the
// construction/teardown of the two server reactors.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var build = "develop"

// SetBuild records the build version reported by the debug/liveness
// endpoint and the startup log line.
func SetBuild(b string) {
	build = b
}

var (
	flagName           string
	flagWebsocketHost  string
	flagWebsocketPort  uint16
	flagHTTPHost       string
	flagHTTPPort       uint16
	flagBlockchainFile string
	flagConfigFile     string
	flagVerbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "node",
	Short: "Run a peer in the gossip network",
	RunE:  runE,
}

func init() {
	rootCmd.Flags().StringVar(&flagName, "name", "node", "Human-readable name for this node, used only in log output.")
	rootCmd.Flags().StringVar(&flagWebsocketHost, "websocket-host", "0.0.0.0", "Host the peer gossip WebSocket server listens on.")
	rootCmd.Flags().Uint16Var(&flagWebsocketPort, "websocket-port", 9080, "Port the peer gossip WebSocket server listens on.")
	rootCmd.Flags().StringVar(&flagHTTPHost, "http-host", "0.0.0.0", "Host the administrative REST server listens on.")
	rootCmd.Flags().Uint16Var(&flagHTTPPort, "http-port", 8080, "Port the administrative REST server listens on.")
	rootCmd.Flags().StringVar(&flagBlockchainFile, "blockchain", "", "Optional path to an initial chain JSON file.")
	rootCmd.Flags().StringVar(&flagConfigFile, "config", "", "Path to a TOML config file (block_gen/transaction tables).")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug-level logging.")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func runE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := runOptions{
		Name:          flagName,
		WebsocketHost: flagWebsocketHost,
		WebsocketPort: flagWebsocketPort,
		HTTPHost:      flagHTTPHost,
		HTTPPort:      flagHTTPPort,
		BlockchainFile: flagBlockchainFile,
		Verbose:       flagVerbose,
		Config:        cfg,
	}

	return run(opts)
}

// loadConfig reads the optional TOML config file via viper into a
// chain/config.Config, falling back to config.Default() for any table
// or key the file doesn't set.
func loadConfig(path string) (resolvedConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	defaults := defaultConfigValues()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return resolvedConfig{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return decodeConfig(v)
}
