package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
)

func newSyncCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge the remote quotes into the collection once",
		Long: `Fetch the remote collection and merge it. Quotes whose text is already
stored keep their local category; new remote quotes are appended.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				svc, err := s.syncService()
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if timeout := s.cfg.Sync.Timeout; timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				report, err := svc.Sync(ctx)
				if err != nil {
					return err
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), dto.NewSyncResponse(report))
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, added %d, %d quotes in %s\n",
					report.Fetched, report.Added, report.Total, report.Duration.Round(time.Millisecond))

				return err
			})
		},
	}
}
