package main

import (
	"fmt"
	"os"

	"github.com/danmuck/zusictl/internal/logging"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zusictl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zusictl",
		Short: "Client for the Zusi 3 TCP data interface",
		Long: `zusictl connects to a Zusi 3 simulator over its TCP interface,
performs the HELLO handshake, subscribes to cab display and program
data with NEEDED_DATA and prints the pushed readings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.ConfigureRuntime()
		},
	}

	rootCmd.AddCommand(
		connectCmd(),
		dumpCmd(),
		configCmd(),
		versionCmd(),
	)
	return rootCmd
}
