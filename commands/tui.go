package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-markov/midi"
	"go-markov/theme"
	"go-markov/tui"
)

var (
	tuiPalette string
	tuiProject string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive composer",
	Long: `Open the interactive composer: regenerate pieces, change key and tempo,
play them, write MIDI files and save the ones you like.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}

		var palette *theme.Palette
		if tuiPalette != "" {
			if palette, err = theme.LoadGPL(tuiPalette); err != nil {
				return err
			}
		}
		th := theme.New(palette)

		// Watch MIDI ports in background (handles hot-plug)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		watcher := midi.NewWatcher()
		go watcher.Run(ctx)
		defer midi.CloseDriver()

		m := tui.NewModel(cfg, st, th, watcher, tui.DialMIDI)
		if tuiProject != "" {
			m.Project = tuiProject
		}
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiPalette, "palette", "", "GIMP palette file for colors")
	tuiCmd.Flags().StringVar(&tuiProject, "project", "", "project that 's' saves into (default \"tui\")")
	rootCmd.AddCommand(tuiCmd)
}
