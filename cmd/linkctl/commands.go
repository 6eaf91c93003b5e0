package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(a.db, a.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func expireCmd(a *app) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire active payment links older than gateway.link_expires_in",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			expired, err := a.useCases.PaymentLinks.ExpireStale(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d payment link(s)\n", expired)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Reference time in RFC3339 (default now)")
	return cmd
}

func cancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [link-id]",
		Short: "Cancel a payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid link id %q", args[0])
			}

			link, err := a.useCases.PaymentLinks.Cancel(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Link %d of order %d is %s\n", link.ID, link.OrderID, link.Status)
			return nil
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard summary for the last 30 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.useCases.Dashboard.Summary(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			sellers, err := a.useCases.Dashboard.SellerStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"summary": summary,
					"sellers": sellers,
				})
			}

			fmt.Fprintf(out, "Period:          %s to %s\n", summary.PeriodStart.Format("2006-01-02"), summary.PeriodEnd.Format("2006-01-02"))
			fmt.Fprintf(out, "Received:        R$ %s\n", entity.FormatMoney(summary.TotalReceived))
			fmt.Fprintf(out, "Canceled:        R$ %s\n", entity.FormatMoney(summary.TotalCanceled))
			fmt.Fprintf(out, "Open:            R$ %s\n", entity.FormatMoney(summary.OpenValue))
			fmt.Fprintf(out, "Average ticket:  R$ %s\n", entity.FormatMoney(summary.AverageTicket))
			fmt.Fprintf(out, "Conversion:      %s%%\n", summary.ConversionRate.String())
			fmt.Fprintf(out, "Weekly growth:   %s%%\n", summary.WeeklyGrowth.String())
			fmt.Fprintf(out, "Links created:   %d (active %d, used %d, expired %d)\n",
				summary.Links.Created, summary.Links.Active, summary.Links.Used, summary.Links.Expired)

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SELLER\tPAID\tPENDING\tCANCELED\tFAILED\tPAID TOTAL")
			for _, s := range sellers {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\tR$ %s\n", s.Name, s.Paid, s.Pending, s.Canceled, s.Failed, entity.FormatMoney(s.PaidTotal))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func webhooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Inspect and replay stored webhook deliveries",
	}

	var (
		maxRetries int
		limit      int
	)
	replay := &cobra.Command{
		Use:   "replay",
		Short: "Reprocess failed webhook deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.useCases.Webhooks.Replay(cmd.Context(), maxRetries, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d delivery(ies): %d succeeded, %d failed\n",
				report.Attempted, report.Succeeded, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d delivery(ies) failed again", report.Failed)
			}
			return nil
		},
	}
	replay.Flags().IntVar(&maxRetries, "max-retries", 5, "Skip deliveries that already failed this many times")
	replay.Flags().IntVar(&limit, "limit", 100, "Maximum deliveries to replay")

	cmd.AddCommand(replay)
	return cmd
}
