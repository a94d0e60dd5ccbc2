package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-markov/config"
	"go-markov/markov"
	"go-markov/midifile"
	"go-markov/music"
)

var (
	genOutput   string
	genSave     string
	genMeasures int
	genTempo    float64
	genKey      int
	genNoRepeat bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Compose a piece and write it as a MIDI file",
	Long: `Compose a piece from the config and write it as a Standard MIDI File.

Examples:
  go-markov generate
  go-markov generate -o song.mid --measures 16 --tempo 90
  go-markov generate --seed 7 --save demo/take-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if genMeasures > 0 {
			cfg.Melody.Measures = genMeasures
		}
		if genTempo > 0 {
			cfg.Tempo = genTempo
		}
		if genKey >= 0 {
			cfg.Key = genKey
		}
		if genNoRepeat {
			cfg.Repeat.Enabled = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		p, usedSeed, err := compose(cfg)
		if err != nil {
			return err
		}

		out := genOutput
		if out == "" {
			out = cfg.Output
		}
		if err := midifile.WriteFile(out, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d notes, %d voices, %.1fs, seed %d\n",
			out, len(p.Notes), p.NumSequences(), p.Duration(), usedSeed)

		if genSave == "" {
			return nil
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		project, name := splitRef(genSave)
		info, err := st.Save(project, name, p, usedSeed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s/%s\n", project, info.Filename)
		return nil
	},
}

// compose builds a piece from cfg and reports the seed that produced it
func compose(cfg *config.Config) (*music.Piece, uint64, error) {
	src := markov.NewRandSource(cfg.Seed)
	p, err := markov.Compose(cfg.Plan(), src)
	if err != nil {
		return nil, 0, err
	}
	return p, src.Seed(), nil
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "MIDI file to write (default from config)")
	generateCmd.Flags().StringVar(&genSave, "save", "", "also save the piece as project[/name]")
	generateCmd.Flags().IntVar(&genMeasures, "measures", 0, "melody length in measures")
	generateCmd.Flags().Float64Var(&genTempo, "tempo", 0, "tempo in beats per minute")
	generateCmd.Flags().IntVar(&genKey, "key", -1, "key, 0-11 (0 = C)")
	generateCmd.Flags().BoolVar(&genNoRepeat, "no-repeat", false, "skip the repetition pass")
	rootCmd.AddCommand(generateCmd)
}
