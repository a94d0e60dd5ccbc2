package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-markov/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "(waiting up to 3 seconds...)")
		ports, err := midi.OutPorts(cmd.Context())
		if err != nil {
			return err
		}
		defer midi.CloseDriver()

		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI output ports")
			return nil
		}
		for i, name := range midi.PortNames(ports) {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
