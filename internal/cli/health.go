package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 500 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Check server health. With --wait, retry until the server reports ok or the wait elapses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pollHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "keep retrying for up to this long (e.g. 30s)")
	return cmd
}

// pollHealth asks the server for its health until it answers ok or wait runs out
func pollHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)

	for {
		var result HealthResult
		err := client.Get(ctx, "/api/v1/health", &result)
		if err == nil && result.Status != "ok" {
			err = fmt.Errorf("server reported status %q", result.Status)
		}
		if err == nil || time.Now().Add(healthPollInterval).After(deadline) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(healthPollInterval):
		}
	}
}
