package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/blob"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/internal/spreadsheet"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/ingesting"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/utils"
)

type importOptions struct {
	file   string
	month  string
	dryRun bool
}

func newRootCmd() *cobra.Command {
	opts := &importOptions{}

	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Import a receivables spreadsheet",
		Long:          "Parse an .xlsx or .csv file and upsert its rows by customer code into the store selected by STORE_DRIVER.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.file, "file", "f", "", "Spreadsheet to import (.xlsx or .csv)")
	rootCmd.Flags().StringVarP(&opts.month, "month", "m", "", "Period label attached to new records, e.g. 2024-01")
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and print the rows without writing")
	_ = rootCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(newListCmd())

	return rootCmd
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	content, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}
	filename := filepath.Base(opts.file)

	if opts.dryRun {
		rows, err := spreadsheet.Parse(filename, content)
		if err != nil {
			return err
		}
		keyed := 0
		for _, row := range rows {
			if _, ok := domain.CustomerCodeOf(row); ok {
				keyed++
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(map[string]any{
			"totalRows":   len(rows),
			"keyedRows":   keyed,
			"skippedRows": len(rows) - keyed,
			"rows":        rows,
		}))
		return nil
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log.Setup(cfg.App.LogLevel)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Store.Driver == config.StoreDriverMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: STORE_DRIVER=memory, records are discarded when the importer exits")
	}

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	var ingestOpts []ingesting.Option
	if cfg.Upload.ArchiveEnabled {
		archive, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return err
		}
		ingestOpts = append(ingestOpts, ingesting.WithArchive(archive))
	}

	result, err := ingesting.NewService(stores.Records, ingestOpts...).Upload(ctx, domain.UploadRequest{
		Filename: filename,
		Content:  content,
		Month:    opts.month,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(result))
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			log.Setup(cfg.App.LogLevel)

			stores, err := repository.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			records, err := stores.Records.List(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(records))
			return nil
		},
	}
}
