package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zotcast/zotcast/internal/core/ports/driving"
)

var attachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "Manage item attachments",
	Long:  `Curation operations on attachments, starting with pruning stale ones.`,
}

var attachmentsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old attachments",
	Long: `Deletes attachments added before the cutoff date. Only attachments of
the selected content type are removed; the default targets PDFs. Items
whose children cannot be listed are skipped and reported as failures,
never deleted blind.`,
	RunE: runAttachmentsPrune,
}

// Flags for the prune command.
var (
	pruneBefore      string
	pruneCollection  string
	pruneContentType string
	pruneDryRun      bool
)

func init() {
	attachmentsPruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Cutoff date, YYYY-MM-DD or RFC 3339")
	attachmentsPruneCmd.Flags().StringVar(&pruneCollection, "collection", "", "Restrict to one collection key")
	attachmentsPruneCmd.Flags().StringVar(&pruneContentType, "content-type", "", "MIME type to prune (default application/pdf)")
	attachmentsPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report matches without deleting")
	_ = attachmentsPruneCmd.MarkFlagRequired("before")

	attachmentsCmd.AddCommand(attachmentsPruneCmd)
	rootCmd.AddCommand(attachmentsCmd)
}

func runAttachmentsPrune(cmd *cobra.Command, args []string) error {
	if curatorService == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}

	cutoff, err := parseCutoff(pruneBefore)
	if err != nil {
		return err
	}

	ctx := context.Background()

	report, err := curatorService.PruneAttachments(ctx, driving.PruneOptions{
		Before:        cutoff,
		CollectionKey: pruneCollection,
		ContentType:   pruneContentType,
		DryRun:        pruneDryRun,
	})
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}

	if pruneDryRun {
		cmd.Printf("%d items scanned: %d attachments would be deleted (dry run).\n", report.Scanned, report.Matched)
		return nil
	}
	cmd.Printf("%d items scanned: %d matched, %d deleted, %d failed.\n", report.Scanned, report.Matched, report.Deleted, report.Failed)
	return nil
}

// parseCutoff accepts a bare date or a full RFC 3339 timestamp.
func parseCutoff(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --before %q: use YYYY-MM-DD or RFC 3339", s)
}
