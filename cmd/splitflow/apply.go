package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/misid"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func applyCommand() *cobra.Command {
	var (
		row      int
		misID    string
		tag      string
		noAppend bool
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write a MIS ID to a sheet row through the backend",
		Long: `Apply one MIS ID to a sheet row, or a batch of them from a file.

Approvals made in a review session never outlive it, so apply always takes
explicit coordinates: --row, --id and --tag for a single write, or
--from-file with one "row tag mis-id" entry per line for a batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := newBackendClient(ctx, store)
			if err != nil {
				return err
			}

			if fromFile != "" {
				return applyBatch(ctx, client, store, fromFile, !noAppend)
			}

			if row < 2 || misID == "" {
				return fmt.Errorf("either --from-file or both --row (>= 2) and --id are required")
			}
			if err := validateTag(tag); err != nil {
				return err
			}

			return applyOne(ctx, client, store, api.ApplySplitIDRequest{
				GoogleRow: row,
				NewMISID:  misID,
				Tag:       tag,
				Append:    !noAppend,
			})
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "sheet row number to write to")
	cmd.Flags().StringVar(&misID, "id", "", "MIS ID to apply")
	cmd.Flags().StringVar(&tag, "tag", string(model.KindPart2), "step tag (part2, gap, patch)")
	cmd.Flags().BoolVar(&noAppend, "no-append", false, "replace the cell contents instead of appending")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "apply a batch of entries from a file")

	cmd.AddCommand(applyHistoryCmd())
	return cmd
}

func applyHistoryCmd() *cobra.Command {
	var row int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the apply audit trail for a sheet row",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if row < 2 {
				return fmt.Errorf("--row (>= 2) is required")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.GetApplyHistory(ctx, row)
			if err != nil {
				return fmt.Errorf("failed to read apply history: %w", err)
			}
			if len(records) == 0 {
				fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("No applies recorded for row %d.", row)))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("When"),
				cli.TableHeaderStyle.Render("Tag"),
				cli.TableHeaderStyle.Render("MIS ID"),
				cli.TableHeaderStyle.Render("Outcome"),
				cli.TableHeaderStyle.Render("Detail"))
			for _, record := range records {
				outcome := cli.SuccessStyle.Render(record.Outcome)
				if record.Outcome != service.OutcomeSuccess {
					outcome = cli.ErrorStyle.Render(record.Outcome)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					record.AppliedAt.Local().Format(time.DateTime),
					record.Tag,
					record.MISID,
					outcome,
					record.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "sheet row number")
	return cmd
}

func validateTag(tag string) error {
	switch model.StepKind(tag) {
	case model.KindPart2, model.KindGap, model.KindPatch:
		return nil
	default:
		return fmt.Errorf("invalid tag %q: must be part2, gap or patch", tag)
	}
}

func applyOne(ctx context.Context, client *api.Client, store service.Storage, req api.ApplySplitIDRequest) error {
	// IDs are often pasted straight from a tagged sheet cell; the backend
	// wants the bare identifier.
	req.NewMISID = misid.StripTag(req.NewMISID)

	resp, err := client.ApplySplitID(ctx, req)
	if err != nil {
		return err
	}

	outcome := service.OutcomeSuccess
	detail := ""
	if resp.Failed() {
		outcome = service.OutcomeFailure
		detail = resp.ErrorMessage()
	}
	recordErr := store.RecordApply(ctx, service.ApplyRecord{
		StepKey:   req.Tag,
		GoogleRow: req.GoogleRow,
		Tag:       req.Tag,
		MISID:     req.NewMISID,
		Outcome:   outcome,
		Detail:    detail,
		AppliedAt: time.Now().UTC(),
	})
	if recordErr != nil {
		fmt.Println(cli.FormatWarning("failed to write the audit log: " + recordErr.Error()))
	}

	if resp.Failed() {
		return fmt.Errorf("%s", resp.ErrorMessage())
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Applied %s to row %d (cell is now %q)",
		req.NewMISID, req.GoogleRow, resp.NewValue)))
	return nil
}

// batchEntry is one parsed line of a --from-file batch.
type batchEntry struct {
	req  api.ApplySplitIDRequest
	line int
}

func applyBatch(ctx context.Context, client *api.Client, store service.Storage, path string, appendMode bool) error {
	entries, err := parseBatchFile(path, appendMode)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries found in %s", path)
	}

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Applying MIS IDs...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var failures []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := applyOne(ctx, client, store, entry.req); err != nil {
			failures = append(failures, fmt.Sprintf("line %d (row %d): %v", entry.line, entry.req.GoogleRow, err))
		}
		_ = bar.Add(1)
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Println(cli.FormatError(failure))
		}
		return fmt.Errorf("%d of %d applies failed", len(failures), len(entries))
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Applied %d MIS IDs", len(entries))))
	return nil
}

// parseBatchFile reads "row tag mis-id" entries, one per line. Blank lines
// and lines starting with # are skipped.
func parseBatchFile(path string, appendMode bool) ([]batchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var entries []batchEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected \"row tag mis-id\", got %q", lineNo, line)
		}

		row, err := strconv.Atoi(fields[0])
		if err != nil || row < 2 {
			return nil, fmt.Errorf("line %d: invalid row %q", lineNo, fields[0])
		}
		if err := validateTag(fields[1]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		entries = append(entries, batchEntry{
			line: lineNo,
			req: api.ApplySplitIDRequest{
				GoogleRow: row,
				Tag:       fields[1],
				NewMISID:  fields[2],
				Append:    appendMode,
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}
