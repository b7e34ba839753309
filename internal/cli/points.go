package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Change a team's points (admin)",
		Long: `Change a team's points. Totals never drop below zero:
subtracting more than a team holds leaves it at 0.`,
	}

	for _, op := range []struct{ name, short string }{
		{"set", "Set a team's points to an exact value"},
		{"add", "Add points to a team"},
		{"subtract", "Subtract points from a team"},
	} {
		cmd.AddCommand(newPointsOpCmd(op.name, op.short))
	}

	return cmd
}

func newPointsOpCmd(operation, short string) *cobra.Command {
	return &cobra.Command{
		Use:   operation + " <team-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be a whole number: %w", err)
			}

			req := map[string]any{
				"points":    amount,
				"operation": operation,
			}
			var result Team
			if err := client.Patch(cmd.Context(), teamPath(args[0])+"/points", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
