package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/locvowork/sheetexport/internal/bootstrap"
	"github.com/locvowork/sheetexport/internal/config"
	"github.com/locvowork/sheetexport/internal/jobs"
	"github.com/locvowork/sheetexport/internal/service"
	"github.com/locvowork/sheetexport/internal/source"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "sheetexport",
		Short:        "Export nested tabular data to merged spreadsheets and CSV",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", nil, "env files to load (default .env)")

	cmd.AddCommand(newRunCmd(opts), newLayoutCmd(opts), newConvertCmd(opts))
	return cmd
}

// setup boots the shared application pieces without the HTTP server.
func setup(ctx context.Context, opts *rootOptions) (*bootstrap.App, error) {
	app := bootstrap.NewApp()
	if err := app.Setup(ctx, opts.envFiles...); err != nil {
		return nil, err
	}
	return app, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "run JOBFILE",
		Short: "Run the export jobs of a YAML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			file, err := jobs.LoadFile(args[0])
			if err != nil {
				return err
			}
			n := config.DefaultEnvConfig.JOB_WORKERS
			if file.Workers > 0 {
				n = file.Workers
			}
			if workers > 0 {
				n = workers
			}

			outcomes, err := jobs.NewRunner(app.Service, n).Run(ctx, file.Jobs)
			if err != nil {
				return err
			}
			printOutcomes(cmd.OutOrStdout(), outcomes)
			if failed := jobs.Failed(outcomes); failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent jobs (overrides JOB_WORKERS and the job file)")
	return cmd
}

func printOutcomes(w io.Writer, outcomes []jobs.Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", o.Job, o.Err)
			continue
		}
		fmt.Fprintf(w, "ok   %s -> %s (%d bytes, %s)\n", o.Job, o.Output, o.Bytes, o.Duration)
	}
}

// readRequest loads an export request from a JSON or YAML file. A JSON
// array is taken as the rows of a single sheet.
func readRequest(path string) (service.ExportRequest, error) {
	var req service.ExportRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("decode %s: %w", path, err)
		}
		return req, nil
	}

	trimmed := strings.TrimSpace(string(data))
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if strings.HasPrefix(trimmed, "[") {
		var rows [][]interface{}
		if err := dec.Decode(&rows); err != nil {
			return req, err
		}
		req.Sheets = []service.SheetRequest{{Rows: rows}}
		return req, nil
	}
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout REQUEST",
		Short: "Print the merge regions an export request would produce, as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			svc := service.NewExportService(nil, source.Clients{})
			if hasSources(req) {
				app, err := setup(ctx, opts)
				if err != nil {
					return err
				}
				defer app.Close()
				svc = app.Service
			}

			regions, stats, err := svc.Preview(ctx, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"sheets":  stats,
				"regions": regions,
			})
		},
	}
}

func hasSources(req service.ExportRequest) bool {
	for _, s := range req.Sheets {
		if s.Source != nil && s.Source.Type != source.TypeInline {
			return true
		}
	}
	return false
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var (
		output   string
		format   string
		encoding string
	)
	cmd := &cobra.Command{
		Use:   "convert REQUEST",
		Short: "Export a JSON/YAML request (or a JSON array of rows) to xlsx or csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			if format != "" {
				req.Format = format
			} else if req.Format == "" && output != "" {
				req.Format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			if cmd.Flags().Changed("encoding") {
				req.Overrides.Encoding = &encoding
			}

			res, err := app.Service.Export(ctx, req)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(res.Data)
				return err
			}
			return os.WriteFile(output, res.Data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "xlsx or csv (default from output extension)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "csv encoding, e.g. utf-8-sig or cp1252")
	return cmd
}
