package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lexia/kurai/lexia"
)

var (
	areaID      int64
	description string
	process     bool
	concurrency int

	page    int
	perPage int
	status  string

	openURL bool
)

// documentsCmd groups document commands
var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Upload documents and read their extracted data",
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload one or more documents into an area",
	Long: `Upload documents into an area. With --process the documents are processed
right after upload. Several files are uploaded concurrently; results are
printed in argument order.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: connect,
	RunE:    runUpload,
}

var documentDataCmd = &cobra.Command{
	Use:     "data ID...",
	Short:   "Show the data extracted from one or more documents",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: connect,
	RunE:    runDocumentData,
}

var listDocumentsCmd = &cobra.Command{
	Use:     "list",
	Short:   "List processed documents",
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runListDocuments,
}

var documentURLCmd = &cobra.Command{
	Use:     "url ID",
	Short:   "Show the download URL of a document",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runDocumentURL,
}

var deleteDocumentsCmd = &cobra.Command{
	Use:     "delete ID...",
	Short:   "Delete documents",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: connect,
	RunE:    runDeleteDocuments,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(uploadCmd, documentDataCmd, listDocumentsCmd, documentURLCmd, deleteDocumentsCmd)

	uploadCmd.Flags().Int64Var(&areaID, "area-id", 0, "area to upload into")
	uploadCmd.Flags().StringVar(&description, "description", "", "document description")
	uploadCmd.Flags().BoolVar(&process, "process", false, "process the documents after upload")
	uploadCmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum concurrent uploads (default from config)")
	_ = uploadCmd.MarkFlagRequired("area-id")

	listDocumentsCmd.Flags().IntVar(&page, "page", 1, "page number")
	listDocumentsCmd.Flags().IntVar(&perPage, "per-page", 50, "documents per page")
	listDocumentsCmd.Flags().Int64Var(&areaID, "area-id", 0, "only documents of this area")
	listDocumentsCmd.Flags().StringVar(&status, "status", "", "only documents with this status")
	addFilterFlags(listDocumentsCmd)

	documentURLCmd.Flags().BoolVar(&openURL, "open", false, "open the URL in the default browser")
}

// uploadResult is one line of a multi-file upload
type uploadResult struct {
	File   string       `json:"file"`
	Result lexia.Object `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	limit := cfg.Upload.Concurrency
	if cmd.Flags().Changed("concurrency") {
		if concurrency < 1 {
			return inputErrorf("--concurrency must be at least 1")
		}
		limit = concurrency
	}

	upload := client.UploadDocument
	if process {
		upload = client.UploadAndProcessDocument
	}

	results := make([]lexia.Object, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range args {
		g.Go(func() error {
			logger.Info().Str("file", path).Int64("area_id", areaID).Msg("Uploading document")
			results[i], errs[i] = call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
				return upload(ctx, path, areaID, description)
			})
			if errs[i] != nil {
				logger.Error().Err(errs[i]).Str("file", path).Msg("Upload failed")
			}
			// Every file is attempted; the first error is reported after all finish
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	for _, err := range errs {
		if err != nil {
			firstErr = err
			break
		}
	}

	if len(args) == 1 {
		if firstErr != nil {
			return firstErr
		}
		return render(cmd, results[0], func(w io.Writer) error {
			return printUpload(w, args[0], results[0])
		})
	}

	summary := make([]uploadResult, len(args))
	for i, path := range args {
		summary[i] = uploadResult{File: path, Result: results[i]}
		if errs[i] != nil {
			summary[i].Error = errs[i].Error()
		}
	}

	if err := render(cmd, map[string]any{"uploads": summary}, func(w io.Writer) error {
		for i, path := range args {
			if errs[i] != nil {
				fmt.Fprintf(w, "✗ %s: %v\n", path, errs[i])
				continue
			}
			if err := printUpload(w, path, results[i]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return firstErr
}

func printUpload(w io.Writer, path string, result lexia.Object) error {
	var doc documentView
	if err := decodeView(nestedObject(result, "document"), &doc); err != nil {
		return writeText(w, result)
	}

	verb := "uploaded"
	if process {
		verb = "uploaded and processing"
	}
	fmt.Fprintf(w, "✓ %s %s\n", path, verb)
	fmt.Fprintf(w, "  ID: %d\n", doc.ID)
	if doc.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", doc.Name)
	}
	if doc.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", doc.Status)
	}
	return nil
}

func runDocumentData(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	var result lexia.Object
	if len(ids) == 1 {
		result, err = call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
			return client.GetDocumentExtractedData(ctx, ids[0])
		})
	} else {
		result, err = call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
			return client.GetDocumentsExtractedDataBatch(ctx, ids)
		})
	}
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runListDocuments(cmd *cobra.Command, args []string) error {
	params := lexia.ListDocumentsParams{
		Page:    page,
		PerPage: perPage,
		AreaID:  areaID,
		Status:  status,
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.ListProcessedDocuments(ctx, params)
	})
	if err != nil {
		return err
	}

	result, err = applyFilter(cmd.Context(), result, "")
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runDocumentURL(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetDocumentURL(ctx, ids[0])
	})
	if err != nil {
		return err
	}

	link := documentLink(result)
	if openURL {
		if link == "" {
			return fmt.Errorf("response for document %d contains no URL", ids[0])
		}
		logger.Debug().Str("url", link).Msg("Opening document in browser")
		if err := browser.OpenURL(link); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
	}

	return render(cmd, result, func(w io.Writer) error {
		if link == "" {
			return writeText(w, result)
		}
		_, err := fmt.Fprintln(w, link)
		return err
	})
}

// documentLink finds the URL member of a document URL response
func documentLink(result lexia.Object) string {
	for _, key := range []string{"url", "download_url", "signed_url", "document_url"} {
		if s, ok := result[key].(string); ok && strings.HasPrefix(s, "http") {
			return s
		}
	}
	if inner, ok := result["document"].(map[string]any); ok && len(inner) > 0 {
		return documentLink(inner)
	}
	return ""
}

func runDeleteDocuments(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	logger.Info().Ints64("document_ids", ids).Msg("Deleting documents")
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.BulkDeleteDocuments(ctx, ids)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, inputErrorf("invalid id %q: must be a positive integer", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
