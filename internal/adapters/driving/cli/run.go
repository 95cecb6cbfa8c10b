package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/zotcast/zotcast/internal/core/domain"
	"github.com/zotcast/zotcast/internal/core/ports/driving"
)

var (
	runDryRun   bool
	runSchedule string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect changes and deliver notifications",
	Long: `Run one notification pass: list each watched collection, detect records
and notes newer than the collection's watermark, post the rendered
messages, and advance the watermark. With --schedule the pass repeats
on a cron expression until interrupted.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print messages instead of delivering, leave state untouched")
	runCmd.Flags().StringVar(&runSchedule, "schedule", "", "cron expression, e.g. \"0 8 * * *\"; runs once when empty")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if notifierService == nil {
		if err := wireServices(); err != nil {
			return err
		}
		if !runDryRun {
			if err := appConfig.ValidateDelivery(); err != nil {
				return err
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runSchedule == "" {
		return runOnce(ctx, cmd)
	}
	return runOnSchedule(ctx, cmd)
}

func runOnce(ctx context.Context, cmd *cobra.Command) error {
	report, err := notifierService.Run(ctx, driving.RunOptions{DryRun: runDryRun})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	printReport(cmd, report)
	return nil
}

// runOnSchedule repeats the pass until the context is cancelled. The
// expression is validated before anything is delivered. The first pass runs
// immediately and its failure is fatal; failures on later ticks are reported
// and the schedule keeps going. A tick that fires while the previous pass is
// still running is skipped.
func runOnSchedule(ctx context.Context, cmd *cobra.Command) error {
	var busy atomic.Bool
	c := cron.New()
	_, err := c.AddFunc(runSchedule, func() {
		if !busy.CompareAndSwap(false, true) {
			cmd.Println("Previous pass still running, skipping this tick.")
			return
		}
		defer busy.Store(false)
		if err := runOnce(ctx, cmd); err != nil {
			cmd.PrintErrf("Pass failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", runSchedule, err)
	}

	if err := runOnce(ctx, cmd); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func printReport(cmd *cobra.Command, report domain.RunReport) {
	if report.DryRun {
		cmd.Printf("Dry run: %d collections scanned, %d messages would be sent. State untouched.\n", report.Collections, report.Posted)
		return
	}
	cmd.Printf("%d collections scanned: %d messages posted, %d failed.\n", report.Collections, report.Posted, report.Failed)
}
