package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-markov/midifile"
)

var exportOutput string

var savesCmd = &cobra.Command{
	Use:   "saves [project]",
	Short: "List projects, or the saves of one project",
	Long: `List saved projects. With a project name, list its saves newest first.

Examples:
  go-markov saves
  go-markov saves demo
  go-markov saves export demo -o demo.mid
  go-markov saves rename demo 2024-01-15_14-30-00.mpk keeper
  go-markov saves delete demo 2024-01-15_14-30-00_keeper.mpk`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			projects, err := st.ListProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "no projects")
				return nil
			}
			for _, p := range projects {
				fmt.Fprintln(out, p)
			}
			return nil
		}

		saves, err := st.ListSaves(args[0])
		if err != nil {
			return err
		}
		if len(saves) == 0 {
			fmt.Fprintf(out, "no saves in %s\n", args[0])
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tNAME\tSAVED")
		for _, s := range saves {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Filename, s.Name, s.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var savesExportCmd = &cobra.Command{
	Use:   "export <project> [file]",
	Short: "Write a saved piece as a MIDI file (latest save when file is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		filename := ""
		if len(args) == 2 {
			filename = args[1]
		}
		snap, err := st.Load(args[0], filename)
		if err != nil {
			return err
		}
		if err := midifile.WriteFile(exportOutput, snap.Piece); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (seed %d)\n", exportOutput, snap.Seed)
		return nil
	},
}

var savesRenameCmd = &cobra.Command{
	Use:   "rename <project> <file> <name>",
	Short: "Rename a save, keeping its timestamp",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		newFilename, err := st.RenameSave(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed to %s\n", newFilename)
		return nil
	},
}

var savesDeleteCmd = &cobra.Command{
	Use:     "delete <project> [file]",
	Aliases: []string{"rm"},
	Short:   "Delete a save, or a whole project when file is omitted",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if err := st.DeleteProject(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted project %s\n", args[0])
			return nil
		}
		if err := st.DeleteSave(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	savesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "export.mid", "MIDI file to write")
	savesCmd.AddCommand(savesExportCmd, savesRenameCmd, savesDeleteCmd)
	rootCmd.AddCommand(savesCmd)
}
