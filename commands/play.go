package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go-markov/config"
	"go-markov/midi"
	"go-markov/music"
	"go-markov/player"
)

var (
	playPort     string
	playLoad     string
	playVelocity uint8
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a piece on a MIDI output port",
	Long: `Compose a piece (or load a saved one) and play it on a MIDI output.
Each voice gets its own channel with the patch of its instrument.
Ctrl-C stops playback and releases sounding notes.

Examples:
  go-markov play
  go-markov play --port fluid
  go-markov play --load demo/2024-01-15_14-30-00_take-1.mpk`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := pieceToPlay(cmd, cfg)
		if err != nil {
			return err
		}

		port := playPort
		if port == "" {
			port = cfg.Player.Port
		}
		velocity := cfg.Player.Velocity
		if playVelocity > 0 {
			velocity = min(playVelocity, 127)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out, err := midi.OpenOutput(ctx, port)
		if err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer out.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "playing on %s: %d notes, %.1fs\n", out.Name(), len(p.Notes), p.Duration())
		pl := player.New(out.Send)
		pl.Velocity = velocity
		if err := pl.Play(ctx, p); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				return nil
			}
			return err
		}
		return nil
	},
}

func pieceToPlay(cmd *cobra.Command, cfg *config.Config) (*music.Piece, error) {
	if playLoad == "" {
		p, usedSeed, err := compose(cfg)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "composed with seed %d\n", usedSeed)
		return p, nil
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}
	project, filename := splitRef(playLoad)
	snap, err := st.Load(project, filename)
	if err != nil {
		return nil, err
	}
	return snap.Piece, nil
}

func init() {
	playCmd.Flags().StringVar(&playPort, "port", "", "output port name or part of it (default from config, else the first port)")
	playCmd.Flags().StringVar(&playLoad, "load", "", "play a saved piece: project[/file], latest save when file is omitted")
	playCmd.Flags().Uint8Var(&playVelocity, "velocity", 0, "note velocity 1-127 (default from config)")
	rootCmd.AddCommand(playCmd)
}
