package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func challengePath(id string) string {
	return "/api/v1/challenges/" + url.PathEscape(id)
}

func newChallengesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "Challenge commands",
	}

	cmd.AddCommand(newChallengesListCmd())
	cmd.AddCommand(newChallengesGetCmd())
	cmd.AddCommand(newChallengesCreateCmd())
	cmd.AddCommand(newChallengesUpdateCmd())
	cmd.AddCommand(newChallengesDeleteCmd())

	return cmd
}

func newChallengesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List challenges, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Challenge
			if err := client.Get(cmd.Context(), "/api/v1/challenges", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newChallengesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Challenge
			if err := client.Get(cmd.Context(), challengePath(args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newChallengesCreateCmd() *cobra.Command {
	var title, description, status string
	var points int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a challenge (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"title":  title,
				"points": points,
			}
			if description != "" {
				req["description"] = description
			}
			if status != "" {
				req["status"] = status
			}

			var result Challenge
			if err := client.Post(cmd.Context(), "/api/v1/challenges", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().Int64Var(&points, "points", 0, "Points awarded (required)")
	cmd.Flags().StringVar(&status, "status", "", "Status: active, completed, cancelled")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("points")

	return cmd
}

func newChallengesUpdateCmd() *cobra.Command {
	var title, description, status string
	var points int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a challenge's fields (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("title") {
				req["title"] = title
			}
			if flags.Changed("description") {
				req["description"] = description
			}
			if flags.Changed("points") {
				req["points"] = points
			}
			if flags.Changed("status") {
				req["status"] = status
			}

			var result Challenge
			if err := client.Put(cmd.Context(), challengePath(args[0]), req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().Int64Var(&points, "points", 0, "New points")
	cmd.Flags().StringVar(&status, "status", "", "New status")

	return cmd
}

func newChallengesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a challenge (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DeleteChallengeResult
			if err := client.Delete(cmd.Context(), challengePath(args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
