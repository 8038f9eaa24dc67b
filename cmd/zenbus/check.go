package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenterm/zenbus/event"
)

func newCheckPatternCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-pattern <pattern> <key>",
		Short: "Report whether a subscription pattern matches an event key",
		Args:  cobra.ExactArgs(2),
		// no config or logger needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, err := event.ParsePattern(args[0])
			if err != nil {
				return err
			}
			if err := event.ValidateKey(args[1]); err != nil {
				return err
			}
			if pattern.Matches(args[1]) {
				fmt.Fprintf(cmd.OutOrStdout(), "match: %s matches %s\n", pattern, args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "no match: %s does not match %s\n", pattern, args[1])
			}
			return nil
		},
	}
}
