package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/wlanbench/wireless"
)

var modesCmd = &cobra.Command{
	Use:   "modes [standard]",
	Short: "List the supported standards and their modes.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := wireless.StandardNames()
		if len(args) == 1 {
			names = args
		}

		for _, name := range names {
			s, err := wireless.LookupStandard(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%g MHz)\n", s.Name, s.Frequency)

			for _, m := range s.Modes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %8s Mbps  %2.0f MHz\n",
					m.Name,
					strconv.FormatFloat(m.DataRate/1e6, 'f', -1, 64),
					m.ChannelWidth)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
