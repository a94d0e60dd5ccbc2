package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"go-markov/config"
	"go-markov/debug"
	"go-markov/store"
)

var (
	// Global flags
	configPath string
	storeDir   string
	seed       uint64
	debugMode  bool
	debugPath  string
)

var rootCmd = &cobra.Command{
	Use:   "go-markov",
	Short: "Compose music with weighted random choices",
	Long: `go-markov - compose short pieces by weighted random choice.

A melody is drawn note by note, harmony voices are fitted against it, and
measures are repeated to give the piece structure. Pieces can be written as
Standard MIDI Files, played on a MIDI port, or saved for later.

Settings live in ~/.config/go-markov/config.yaml ('go-markov config init'
writes the defaults). Saved pieces live in ~/.config/go-markov/projects/.

Examples:
  go-markov generate -o song.mid
  go-markov generate --seed 42 --save demo/first
  go-markov play --load demo
  go-markov tui`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !debugMode {
			return nil
		}
		return debug.Enable(debugPath)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/go-markov/config.yaml)")
	flags.StringVar(&storeDir, "store", "", "projects directory (default ~/.config/go-markov/projects)")
	flags.Uint64Var(&seed, "seed", 0, "random seed (0 = from the clock)")
	flags.BoolVar(&debugMode, "debug", false, "write a debug log")
	flags.StringVar(&debugPath, "debug-log", "", "debug log path (default ~/.config/go-markov/debug.log)")
}

// loadConfig reads the config file and applies the global overrides
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, nil
}

func openStore() (*store.Store, error) {
	if storeDir != "" {
		return store.New(storeDir), nil
	}
	return store.Open()
}

// splitRef splits "project/name" into its parts; the name may be empty
func splitRef(ref string) (project, name string) {
	project, name, _ = strings.Cut(ref, "/")
	return project, name
}
