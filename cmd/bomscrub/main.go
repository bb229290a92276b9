package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bomscrub/internal/config"
	"bomscrub/internal/grid"
	"bomscrub/internal/logging"
	"bomscrub/internal/pipeline"
	"bomscrub/internal/storage"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	cfg config.Config
	tpl config.Template
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bomscrub",
	Short: "Extract, normalize, and validate BOM workbooks",
	Long: `bomscrub locates the parts table inside messy BOM workbooks, renames the
columns to a canonical vocabulary, normalizes component categories, and
validates quantity and designator integrity before export or upload.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		tpl, err = config.LoadTemplate(cfg.TemplatePath)
		if err != nil {
			return err
		}
		log, err = logging.New(cfg.LogLevel, cfg.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var (
	scrubInput  string
	scrubOutput string
	scrubMode   string
	scrubNoDB   bool
)

var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Run the full pipeline over one workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := pipeline.ParseMode(scrubMode)
		if err != nil {
			return err
		}

		var db *storage.DB
		if !scrubNoDB {
			db, err = storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		svc := pipeline.NewProcessingService(cfg, tpl, db, log)
		result, err := svc.ProcessWorkbook(scrubInput, mode)
		if err != nil {
			return err
		}

		output := scrubOutput
		if output == "" {
			base := strings.TrimSuffix(filepath.Base(scrubInput), filepath.Ext(scrubInput))
			output = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.xlsx", base, mode))
		}
		if err := pipeline.ExportBomToXLSX(result.Bom, result.Flags, output); err != nil {
			return err
		}

		fmt.Printf("run %s: boards=%d records=%d split=%d merged=%d review=%d -> %s\n",
			result.RunID, result.Counts.Boards, result.Counts.Records,
			result.Counts.Split, result.Counts.Merged, result.Counts.Reviewed, output)
		return nil
	},
}

var inspectInput string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Classify a workbook's sheets without transforming anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sheets []grid.Sheet
		var err error
		if strings.EqualFold(filepath.Ext(inspectInput), ".html") || strings.EqualFold(filepath.Ext(inspectInput), ".htm") {
			file, openErr := os.Open(inspectInput)
			if openErr != nil {
				return openErr
			}
			defer file.Close()
			sheets, err = pipeline.ReadHTMLTables(file)
		} else {
			sheets, err = pipeline.ReadWorkbook(inspectInput)
		}
		if err != nil {
			return err
		}

		for _, sheet := range sheets {
			unmatched := grid.UnmatchedLabelsInBestRow(sheet.Grid, tpl.RequiredLabels)
			if len(unmatched) == 0 {
				fmt.Printf("%s: board sheet\n", sheet.Name)
				continue
			}
			fmt.Printf("%s: skipped, missing identifiers: %s\n", sheet.Name, strings.Join(unmatched, ", "))
		}
		return nil
	},
}

var (
	exportRunID  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export a stored run to xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if exportRunID == "" {
			runs, err := db.ListRuns()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return fmt.Errorf("no stored runs in %s", cfg.DBPath)
			}
			for _, run := range runs {
				fmt.Printf("%s  %s  mode=%s boards=%d records=%d  %s\n",
					run.ID, run.FileName, run.Mode, run.Counts.Boards, run.Counts.Records, run.CreatedAt)
			}
			return nil
		}

		bom, err := db.LoadBom(exportRunID)
		if err != nil {
			return err
		}
		flags, err := db.ListFlags(exportRunID)
		if err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			base := strings.TrimSuffix(bom.FileName, filepath.Ext(bom.FileName))
			output = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_export.xlsx", base))
		}
		if err := pipeline.ExportBomToXLSX(bom, flags, output); err != nil {
			return err
		}
		fmt.Printf("exported run %s to %s\n", exportRunID, output)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bomscrub %s (%s)\n", Version, runtime.Version())
	},
}

func init() {
	scrubCmd.Flags().StringVar(&scrubInput, "input", "", "input workbook path")
	scrubCmd.Flags().StringVar(&scrubOutput, "output", "", "output xlsx path (default derived from input)")
	scrubCmd.Flags().StringVar(&scrubMode, "mode", string(pipeline.ModeCostWalk), "costwalk|db")
	scrubCmd.Flags().BoolVar(&scrubNoDB, "no-db", false, "skip recording the run in the database")
	_ = scrubCmd.MarkFlagRequired("input")

	inspectCmd.Flags().StringVar(&inspectInput, "input", "", "input workbook or html path")
	_ = inspectCmd.MarkFlagRequired("input")

	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run id to export (omit to list runs)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output xlsx path")

	rootCmd.AddCommand(scrubCmd, inspectCmd, exportCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
