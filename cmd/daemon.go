package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/daemon"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonEventsBuffer int
	flagDaemonStatus       string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch the budget service and serve totals over HTTP/SSE",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	daemonCmd.Flags().DurationVar(&flagDaemonInterval, "interval", 30*time.Second, "Polling interval")
	daemonCmd.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	daemonCmd.Flags().StringVar(&flagDaemonStatus, "status", "", "Only count budgets with this status")

	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonStatus != "" {
		if err := validStatus(flagDaemonStatus); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := daemon.New(daemon.Config{
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
		StatusFilter: flagDaemonStatus,
		Timeout:      apiTimeout,
	}, rt.client, rt.clock, rt.log)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  bplan daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Fprintf(out, "  Polling %s every %s\n", rt.baseURL, flagDaemonInterval)
	fmt.Fprintln(out, "  Stop with Ctrl+C.")

	return svc.Run(ctx)
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+flagDaemonAddr+"/v1/status", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(out, "  Daemon: not reachable at %s\n", flagDaemonAddr)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(out, "  Daemon: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("malformed daemon status: %w", err)
	}

	now := rt.clock.Now()
	s := st.Summary
	rows := [][]string{
		{"Address", "http://" + flagDaemonAddr},
		{"Started", cli.FormatAgo(st.StartedAt, now)},
		{"Last poll", cli.FormatAgo(st.LastPollAt, now)},
		{"Polls", fmt.Sprintf("%d every %ds", st.PollCount, st.PollIntervalSec)},
		{"---"},
		{"Budgets", fmt.Sprintf("%d (%d draft, %d approved, %d closed)", s.Budgets, s.Draft, s.Approved, s.Closed)},
		{"Planned", cli.FormatAmount(s.Planned)},
		{"Actual", cli.FormatAmount(s.Actual)},
		{"Variance", cli.FormatSignedAmount(s.Variance)},
		{"Over budget", fmt.Sprintf("%d", s.OverBudget)},
	}
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", st.LastError})
	}
	fmt.Fprintln(out, cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows, LeftCols: 2}))
	return nil
}
