package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexia/kurai/lexia"
)

var (
	itemData       string
	itemPriority   int
	itemStatus     string
	nextStatus     string
	priorityOrder  bool
	markProcessing bool
	mergeMode      string
	etapa          string
	finishResult   string
	progress       int
	period         string
)

// queuesCmd groups work-queue commands
var queuesCmd = &cobra.Command{
	Use:     "queues",
	Aliases: []string{"queue"},
	Short:   "Add, fetch and complete work-queue items",
}

var addItemCmd = &cobra.Command{
	Use:     "add QUEUE",
	Short:   "Add an item to a queue",
	Example: `  kurai queues add invoices --data '{"invoice":"F-001"}' --priority 2`,
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runAddItem,
}

var nextItemCmd = &cobra.Command{
	Use:     "next QUEUE",
	Short:   "Fetch the next item of a queue",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runNextItem,
}

var updateItemCmd = &cobra.Command{
	Use:     "update ITEM",
	Short:   "Update the data, status or stage of a queue item",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runUpdateItem,
}

var finishItemCmd = &cobra.Command{
	Use:     "finish ITEM",
	Short:   "Mark a queue item as completed",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runFinishItem,
}

var deleteItemsCmd = &cobra.Command{
	Use:     "delete ITEM...",
	Short:   "Delete queue items",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: connect,
	RunE:    runDeleteItems,
}

var analyticsCmd = &cobra.Command{
	Use:     "analytics",
	Short:   "Show queue analytics for a period",
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runAnalytics,
}

func init() {
	rootCmd.AddCommand(queuesCmd)
	queuesCmd.AddCommand(addItemCmd, nextItemCmd, updateItemCmd, finishItemCmd, deleteItemsCmd, analyticsCmd)

	addItemCmd.Flags().StringVar(&itemData, "data", "", "item data as a JSON object")
	addItemCmd.Flags().IntVar(&itemPriority, "priority", int(lexia.PriorityMedium), "priority: 0 low, 1 medium, 2 high")

	nextItemCmd.Flags().StringVar(&nextStatus, "status", lexia.QueueStatusNew, "status of the item to fetch")
	nextItemCmd.Flags().BoolVar(&priorityOrder, "priority-order", true, "fetch by priority before age")
	nextItemCmd.Flags().BoolVar(&markProcessing, "mark-processing", false, "mark the item as in progress")

	updateItemCmd.Flags().StringVar(&itemData, "data", "", "item data as a JSON object")
	updateItemCmd.Flags().StringVar(&itemStatus, "status", "", "new status: New, In Progress, Successful or Failed")
	updateItemCmd.Flags().StringVar(&mergeMode, "merge-mode", lexia.MergeModeUpdate, "update merges into existing data, replace overwrites it")
	updateItemCmd.Flags().StringVar(&etapa, "etapa", "", "processing stage")

	finishItemCmd.Flags().StringVar(&finishResult, "result", "", "output data as a JSON object")
	finishItemCmd.Flags().IntVar(&progress, "progress", 100, "final progress percentage")
	finishItemCmd.Flags().StringVar(&etapa, "etapa", "", "final processing stage")

	analyticsCmd.Flags().StringVar(&period, "period", lexia.Period24Hours, "period: 24h, 7d or 30d")
}

// parseObject parses a JSON object flag. An empty value yields nil.
func parseObject(flag, value string) (lexia.Object, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()

	var obj lexia.Object
	if err := dec.Decode(&obj); err != nil {
		return nil, inputErrorf("--%s must be a JSON object: %v", flag, err)
	}
	if obj == nil {
		return nil, inputErrorf("--%s must be a JSON object, got null", flag)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, inputErrorf("--%s must contain a single JSON object", flag)
	}
	return obj, nil
}

func runAddItem(cmd *cobra.Command, args []string) error {
	data, err := parseObject("data", itemData)
	if err != nil {
		return err
	}
	if itemPriority < int(lexia.PriorityLow) || itemPriority > int(lexia.PriorityHigh) {
		return inputErrorf("--priority must be 0, 1 or 2, got %d", itemPriority)
	}
	priority := lexia.Priority(itemPriority)

	logger.Info().Str("queue", args[0]).Str("priority", priority.String()).Msg("Adding queue item")
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.AddQueueItem(ctx, args[0], data, priority)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		var item queueItemView
		if err := decodeView(nestedObject(result, "item"), &item); err != nil || item.ID == "" {
			return writeText(w, result)
		}
		fmt.Fprintln(w, "✓ Item added")
		printItem(w, item)
		return nil
	})
}

func runNextItem(cmd *cobra.Command, args []string) error {
	params := lexia.NewNextItemParams(args[0])
	params.Status = nextStatus
	params.PriorityOrder = priorityOrder
	params.MarkAsProcessing = markProcessing

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetNextQueueItem(ctx, params)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		inner, ok := result["item"].(map[string]any)
		if !ok || len(inner) == 0 {
			if _, present := result["item"]; present {
				fmt.Fprintf(w, "No %q items in queue %s.\n", params.Status, params.Queue)
				return nil
			}
			return writeText(w, result)
		}
		return writeText(w, inner)
	})
}

func runUpdateItem(cmd *cobra.Command, args []string) error {
	data, err := parseObject("data", itemData)
	if err != nil {
		return err
	}
	if data == nil && itemStatus == "" && etapa == "" {
		return inputErrorf("nothing to update: set --data, --status or --etapa")
	}

	params := lexia.UpdateItemParams{
		ItemID:    args[0],
		Data:      data,
		Status:    itemStatus,
		MergeMode: mergeMode,
		Etapa:     etapa,
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.UpdateQueueItem(ctx, params)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runFinishItem(cmd *cobra.Command, args []string) error {
	output, err := parseObject("result", finishResult)
	if err != nil {
		return err
	}

	params := lexia.FinishItemParams{
		Output: output,
		Etapa:  etapa,
	}
	if cmd.Flags().Changed("progress") {
		p := progress
		params.Progress = &p
	}

	logger.Info().Str("item_id", args[0]).Msg("Finishing queue item")
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.FinishQueueItem(ctx, args[0], params)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runDeleteItems(cmd *cobra.Command, args []string) error {
	logger.Info().Strs("item_ids", args).Msg("Deleting queue items")
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.BulkDeleteQueueItems(ctx, args)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetQueueAnalytics(ctx, period)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		var view analyticsView
		if _, ok := result["summary"].(map[string]any); !ok {
			return writeText(w, result)
		}
		if err := decodeView(result, &view); err != nil {
			return writeText(w, result)
		}
		if view.Period == "" {
			view.Period = period
		}

		fmt.Fprintf(w, "Queue analytics (%s)\n", view.Period)
		fmt.Fprintf(w, "  Total:     %d\n", view.Summary.TotalItems)
		fmt.Fprintf(w, "  Pending:   %d\n", view.Summary.PendingItems)
		fmt.Fprintf(w, "  Processed: %d\n", view.Summary.ProcessedItems)
		fmt.Fprintf(w, "  Failed:    %d\n", view.Summary.FailedItems)
		return nil
	})
}

func printItem(w io.Writer, item queueItemView) {
	fmt.Fprintf(w, "  ID: %s\n", item.ID)
	if item.Queue != "" {
		fmt.Fprintf(w, "  Queue: %s\n", item.Queue)
	}
	if item.Reference != "" {
		fmt.Fprintf(w, "  Reference: %s\n", item.Reference)
	}
	if item.Priority != "" {
		fmt.Fprintf(w, "  Priority: %s\n", item.Priority)
	}
	if item.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", item.Status)
	}
}
