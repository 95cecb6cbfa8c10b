package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect library items",
	Long:  `List recent items, or show one item together with its child notes.`,
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent items",
	RunE:  runItemsList,
}

var itemsShowCmd = &cobra.Command{
	Use:   "show [item-key]",
	Short: "Show item info and notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsShow,
}

// Flags for the list command.
var (
	itemsCollection string
	itemsType       string
	itemsLimit      int
)

func init() {
	itemsListCmd.Flags().StringVar(&itemsCollection, "collection", "", "Restrict to one collection key")
	itemsListCmd.Flags().StringVar(&itemsType, "type", "", "Item type filter; prefix with - to negate")
	itemsListCmd.Flags().IntVarP(&itemsLimit, "limit", "n", 10, "Maximum number of items")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsShowCmd)
	rootCmd.AddCommand(itemsCmd)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	if curatorService == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}

	ctx := context.Background()

	records, err := curatorService.ListItems(ctx, driven.ItemQuery{
		CollectionKey: itemsCollection,
		ItemType:      itemsType,
		Limit:         itemsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No items found.")
		return nil
	}

	for i := range records {
		cmd.Printf("  %s\n", records[i].Key)
		cmd.Printf("    Title: %s\n", records[i].Title)
		cmd.Printf("    Type: %s\n", records[i].ItemType)
		if records[i].DateModified != "" {
			cmd.Printf("    Modified: %s\n", records[i].DateModified)
		}
		if records[i].NumChildren > 0 {
			cmd.Printf("    Children: %d\n", records[i].NumChildren)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d items\n", len(records))
	return nil
}

func runItemsShow(cmd *cobra.Command, args []string) error {
	if curatorService == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}

	key := args[0]
	ctx := context.Background()

	record, notes, err := curatorService.ShowItem(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to show item: %w", err)
	}

	cmd.Printf("Item: %s\n\n", record.Key)
	cmd.Printf("  Title:    %s\n", record.Title)
	cmd.Printf("  Type:     %s\n", record.ItemType)
	if record.Date != "" {
		cmd.Printf("  Date:     %s\n", record.Date)
	}
	if record.DOI != "" {
		cmd.Printf("  DOI:      %s\n", record.DOI)
	}
	if record.URL != "" {
		cmd.Printf("  URL:      %s\n", record.URL)
	}
	if record.AddedBy != "" {
		cmd.Printf("  Added by: %s\n", record.AddedBy)
	}
	cmd.Printf("  Added:    %s\n", record.DateAdded)
	cmd.Printf("  Modified: %s\n", record.DateModified)

	cmd.Printf("\n  Notes (%d):\n", len(notes))
	for i := range notes {
		when := notes[i].DateModified
		if when == "" {
			when = notes[i].DateAdded
		}
		cmd.Printf("    [%s] modified %s\n", notes[i].Key, when)
	}

	return nil
}
