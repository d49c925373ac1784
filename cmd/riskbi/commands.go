package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/riskbi-backend/internal/customdata"
	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/ingest"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/services"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

const cliUID = "cli"

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "riskbi",
		Short:         "Offline access to the risk BI dataset registry and query engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.New(logLevel, logger.NewConsoleHandler)
			cmd.SetContext(logger.ToContext(cmd.Context(), log))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newDatasetsCmd(),
		newSchemaCmd(),
		newRecommendCmd(),
		newQueryCmd(),
		newIngestCmd(),
	)
	return root
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDatasetsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List built-in datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, e := range datasets.Builtin().All() {
				if category != "" && string(e.Meta.Category) != category {
					continue
				}
				fmt.Fprintf(w, "%-18s %-10s %-8s %s\n", e.Meta.ID, e.Meta.Category, e.Meta.DefaultChart, e.Meta.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list datasets in this category")
	return cmd
}

func lookupSchema(id string) (models.Schema, error) {
	e, ok := datasets.Builtin().Lookup(id)
	if !ok {
		return models.Schema{}, fmt.Errorf("unknown dataset %q", id)
	}
	return e.Schema, nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <dataset-id>",
		Short: "Print a dataset's column schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, schema)
		},
	}
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <dataset-id>",
		Short: "Print recommended chart types for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, dto.RecommendationResponse{DatasetID: args[0], Charts: services.Recommend(schema)})
		},
	}
}

const fileDatasetID = models.CustomDatasetPrefix + "file"

// loadFile parses a CSV/TSV file into a custom dataset for this run only.
func loadFile(path string) (models.ParsedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ParsedFile{}, err
	}
	defer f.Close()
	return ingest.Parse(filepath.Base(path), f)
}

// parseFilter reads column=value, column>=value, column<=value or
// column~value.
func parseFilter(expr string) (models.Filter, error) {
	for _, op := range []struct {
		sep string
		op  models.FilterOperator
	}{{">=", models.OpGte}, {"<=", models.OpLte}, {"~", models.OpContains}, {"=", models.OpEq}} {
		if col, val, ok := strings.Cut(expr, op.sep); ok && col != "" {
			return models.Filter{Column: col, Operator: op.op, Value: val}, nil
		}
	}
	return models.Filter{}, fmt.Errorf("invalid filter %q", expr)
}

func newQueryCmd() *cobra.Command {
	var (
		datasetID string
		file      string
		from, to  string
		groupBy   string
		limit     int
		filters   []string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query against a built-in dataset or a local CSV/TSV file",
		Example: `  riskbi query --dataset npl-trend --from 2025-06 --to 2025-12
  riskbi query --dataset sector-exposure --filter "sector~제조"
  riskbi query --file branches.csv --filter amount>=100 --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime := customdata.NewRuntime(nil)
			if file != "" {
				parsed, err := loadFile(file)
				if err != nil {
					return err
				}
				runtime.Load(cliUID, []models.CustomDatasetEntry{{
					Dataset:    models.DatasetMeta{ID: fileDatasetID, Label: parsed.FileName, Category: models.CategoryCustom},
					SourceType: models.SourceExcel,
					ParsedFile: &parsed,
				}})
				datasetID = fileDatasetID
			}
			if datasetID == "" {
				return fmt.Errorf("--dataset or --file is required")
			}

			cfg := dto.QueryConfig{DatasetID: datasetID, GroupBy: groupBy, Limit: limit}
			if from != "" || to != "" {
				cfg.DateRange = &models.DateRange{From: from, To: to}
			}
			for _, expr := range filters {
				f, err := parseFilter(expr)
				if err != nil {
					return err
				}
				cfg.Filters = append(cfg.Filters, f)
			}

			engine := services.NewQueryEngine(datasets.Builtin(), runtime)
			result, err := engine.Execute(cmd.Context(), cliUID, cfg)
			if err != nil {
				return err
			}
			logger.FromContext(cmd.Context()).Debug("query executed", "dataset_id", datasetID, "total", result.Meta.Total)
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&datasetID, "dataset", "", "built-in dataset id")
	cmd.Flags().StringVar(&file, "file", "", "CSV or TSV file to query instead of a built-in dataset")
	cmd.Flags().StringVar(&from, "from", "", "date range start (YYYY-MM or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "date range end (YYYY-MM or YYYY-MM-DD)")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "column to group by")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter expression (col=v, col>=v, col<=v, col~v); repeatable")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Preview how an uploaded file would be parsed and typed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := loadFile(args[0])
			if err != nil {
				return err
			}
			schema := customdata.InferSchema(fileDatasetID, parsed.Columns, parsed.Rows)
			preview := parsed.Rows
			if rows >= 0 && len(preview) > rows {
				preview = preview[:rows]
			}
			return writeJSON(cmd, map[string]any{
				"fileName":    parsed.FileName,
				"totalRows":   len(parsed.Rows),
				"schema":      schema,
				"charts":      services.Recommend(schema),
				"previewRows": preview,
			})
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 8, "number of rows to preview")
	return cmd
}
