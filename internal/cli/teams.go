package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func teamPath(id string) string {
	return "/api/v1/teams/" + url.PathEscape(id)
}

func newTeamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team commands",
	}

	cmd.AddCommand(newTeamsListCmd())
	cmd.AddCommand(newTeamsGetCmd())
	cmd.AddCommand(newTeamsCreateCmd())
	cmd.AddCommand(newTeamsUpdateCmd())
	cmd.AddCommand(newTeamsDeleteCmd())

	return cmd
}

func newTeamsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams by points",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Team
			if err := client.Get(cmd.Context(), "/api/v1/teams", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Team
			if err := client.Get(cmd.Context(), teamPath(args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamsCreateCmd() *cobra.Command {
	var name, status, color string
	var points int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"name": name}
			if cmd.Flags().Changed("points") {
				req["points"] = points
			}
			if status != "" {
				req["status"] = status
			}
			if color != "" {
				req["color"] = color
			}

			var result Team
			if err := client.Post(cmd.Context(), "/api/v1/teams", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Team name (required)")
	cmd.Flags().Int64Var(&points, "points", 0, "Starting points")
	cmd.Flags().StringVar(&status, "status", "", "Status: active, inactive, disqualified")
	cmd.Flags().StringVar(&color, "color", "", "Display color, e.g. #3B82F6")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTeamsUpdateCmd() *cobra.Command {
	var name, status, color string
	var points int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a team's fields (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only send what was asked for
			req := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req["name"] = name
			}
			if flags.Changed("points") {
				req["points"] = points
			}
			if flags.Changed("status") {
				req["status"] = status
			}
			if flags.Changed("color") {
				req["color"] = color
			}

			var result Team
			if err := client.Put(cmd.Context(), teamPath(args[0]), req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().Int64Var(&points, "points", 0, "New points total")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&color, "color", "", "New color")

	return cmd
}

func newTeamsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a team (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DeleteTeamResult
			if err := client.Delete(cmd.Context(), teamPath(args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
