package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdm0006/custodian/pkg/clean"
	c "github.com/wdm0006/custodian/pkg/custodian"
	csvio "github.com/wdm0006/custodian/pkg/io/csvio"
	jsonlio "github.com/wdm0006/custodian/pkg/io/jsonlio"
	parquetio "github.com/wdm0006/custodian/pkg/io/parquetio"
	"github.com/wdm0006/custodian/pkg/mask"
	"github.com/wdm0006/custodian/pkg/pii"
	"github.com/wdm0006/custodian/pkg/profile"
	"github.com/wdm0006/custodian/pkg/report"
	"github.com/wdm0006/custodian/pkg/rules"
)

var version = "0.1.0-dev"

func setupLogging(level string) *logrus.Logger {
	logger := logrus.New()
	if level == "" {
		level = os.Getenv("CUSTODIAN_LOG_LEVEL")
		if level == "" {
			level = "info"
		}
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	return logger
}

func loadEnv(envFile string, logger *logrus.Logger) {
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
	} else {
		logger.Infof("Loaded environment variables from %s", envFile)
	}
}

func readTable(path, delimiter string, logger *logrus.Logger) (*c.Table, error) {
	opt := csvio.ReaderOptions{}
	if delimiter != "" {
		opt.Delimiter = rune(delimiter[0])
	}
	r, err := csvio.Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	t, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if w := r.Warnings(); w != "" {
		logger.Warningf("CSV repairs while reading %s: %s", path, w)
	}
	logger.Infof("Loaded %d rows from %s", t.Rows(), path)
	return t, nil
}

func main() {
	var (
		logLevel  string
		envFile   string
		delimiter string
		output    string
		failures  string
		actions   string
		parquet   string
		showLog   bool
	)

	var logger *logrus.Logger

	rootCmd := &cobra.Command{
		Use:     "custodian",
		Short:   "Audit and remediate customer CSV datasets",
		Version: version,
		Long: `Custodian

Validates, profiles, cleans and masks customer record datasets. Every
command reads a CSV with the standard customer columns and reports or
repairs data quality problems without hiding them.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = setupLogging(logLevel)
			loadEnv(envFile, logger)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&delimiter, "delimiter", "", "CSV delimiter (default: sniffed)")

	validateCmd := &cobra.Command{
		Use:   "validate <input.csv>",
		Short: "Run all column rules and print the validation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0], delimiter, logger)
			if err != nil {
				return err
			}
			reg := rules.DefaultRegistry()
			byCol, err := reg.Validate(t)
			if err != nil {
				return err
			}
			fmt.Print(report.Validation(t.Rows(), byCol))
			if failures != "" {
				flat := []rules.Failure{}
				for _, col := range rules.ColumnOrder {
					flat = append(flat, byCol[col]...)
				}
				if err := jsonlio.WriteAll(failures, flat); err != nil {
					return err
				}
				logger.Infof("Wrote %d failure record(s) to %s", len(flat), failures)
			}
			if rules.Total(byCol) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	validateCmd.Flags().StringVar(&failures, "failures", "", "Write failures as JSONL to this path")

	profileCmd := &cobra.Command{
		Use:   "profile <input.csv>",
		Short: "Print the data quality profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0], delimiter, logger)
			if err != nil {
				return err
			}
			rep, err := profile.Run(t, rules.DefaultRegistry())
			if err != nil {
				return err
			}
			fmt.Print(rep.Text())
			return nil
		},
	}

	piiCmd := &cobra.Command{
		Use:   "pii <input.csv>",
		Short: "Scan for personally identifiable information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0], delimiter, logger)
			if err != nil {
				return err
			}
			f, err := pii.Scan(t)
			if err != nil {
				return err
			}
			fmt.Print(f.Text(t.Rows()))
			return nil
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean <input.csv>",
		Short: "Normalize, fill and remediate, then write the cleaned CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0], delimiter, logger)
			if err != nil {
				return err
			}
			cl := clean.New(rules.DefaultRegistry())
			res, err := cl.Clean(t)
			if err != nil {
				return err
			}
			if showLog {
				fmt.Println(strings.Join(res.Log, "\n"))
			}
			logger.Infof("Cleaning made %d change(s); failures %d -> %d",
				len(res.Actions), res.BeforeFailures, res.AfterFailures)
			if output != "" {
				if err := csvio.WriteAll(output, res.Table, csvio.WriterOptions{}); err != nil {
					return err
				}
				logger.Infof("Wrote cleaned dataset to %s", output)
			}
			if actions != "" {
				if err := jsonlio.WriteAll(actions, res.Actions); err != nil {
					return err
				}
			}
			if parquet != "" {
				if err := parquetio.WriteAll(parquet, res.Table); err != nil {
					return err
				}
				logger.Infof("Wrote parquet snapshot to %s", parquet)
			}
			return nil
		},
	}
	cleanCmd.Flags().StringVarP(&output, "output", "o", "", "Write cleaned CSV to this path")
	cleanCmd.Flags().StringVar(&actions, "actions", "", "Write cleaning actions as JSONL to this path")
	cleanCmd.Flags().StringVar(&parquet, "parquet", "", "Write cleaned table as Parquet to this path")
	cleanCmd.Flags().BoolVar(&showLog, "log", false, "Print the cleaning log to stdout")

	var maskOut string
	maskCmd := &cobra.Command{
		Use:   "mask <input.csv>",
		Short: "Mask PII columns and write the masked CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0], delimiter, logger)
			if err != nil {
				return err
			}
			masked := mask.Apply(t)
			if maskOut == "" {
				maskOut = "-"
			}
			return csvio.WriteAll(maskOut, masked, csvio.WriterOptions{})
		},
	}
	maskCmd.Flags().StringVarP(&maskOut, "output", "o", "", "Write masked CSV to this path (default stdout)")

	var configPath string
	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full audit pipeline from a YAML or TOML config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadRunConfig(configPath)
			if err != nil {
				return err
			}
			return runPipeline(cfg, logger)
		},
	}
	pipelineCmd.Flags().StringVar(&configPath, "config", "custodian.yaml", "Pipeline config (.yaml, .yml or .toml)")

	rootCmd.AddCommand(validateCmd, profileCmd, piiCmd, cleanCmd, maskCmd, pipelineCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runPipeline chains profile, PII scan, validation, cleaning and masking
// over a single input, writing whichever artifacts the config names.
func runPipeline(cfg *RunConfig, logger *logrus.Logger) error {
	t, err := readTable(cfg.Input.Path, cfg.Input.Delimiter, logger)
	if err != nil {
		return err
	}
	reg := rules.DefaultRegistry()

	if cfg.Reports.Profile {
		rep, err := profile.Run(t, reg)
		if err != nil {
			return err
		}
		fmt.Print(rep.Text())
		fmt.Println()
	}
	if cfg.Reports.PII {
		f, err := pii.Scan(t)
		if err != nil {
			return err
		}
		fmt.Print(f.Text(t.Rows()))
		fmt.Println()
	}

	byCol, err := reg.Validate(t)
	if err != nil {
		return err
	}
	if cfg.Reports.Validation {
		fmt.Print(report.Validation(t.Rows(), byCol))
		fmt.Println()
	}

	cl := clean.New(reg)
	res, err := cl.Clean(t)
	if err != nil {
		return err
	}
	if cfg.Reports.CleanLog {
		fmt.Println(strings.Join(res.Log, "\n"))
	}
	logger.Infof("Cleaning made %d change(s); failures %d -> %d",
		len(res.Actions), res.BeforeFailures, res.AfterFailures)

	if cfg.Output.Failures != "" {
		flat := []rules.Failure{}
		for _, col := range rules.ColumnOrder {
			flat = append(flat, byCol[col]...)
		}
		if err := jsonlio.WriteAll(cfg.Output.Failures, flat); err != nil {
			return err
		}
	}
	if cfg.Output.Actions != "" {
		if err := jsonlio.WriteAll(cfg.Output.Actions, res.Actions); err != nil {
			return err
		}
	}
	if cfg.Output.Cleaned != "" {
		if err := csvio.WriteAll(cfg.Output.Cleaned, res.Table, csvio.WriterOptions{}); err != nil {
			return err
		}
		logger.Infof("Wrote cleaned dataset to %s", cfg.Output.Cleaned)
	}
	if cfg.Output.Parquet != "" {
		if err := parquetio.WriteAll(cfg.Output.Parquet, res.Table); err != nil {
			return err
		}
		logger.Infof("Wrote parquet snapshot to %s", cfg.Output.Parquet)
	}
	if cfg.Output.Masked != "" {
		masked := mask.Apply(res.Table)
		if err := csvio.WriteAll(cfg.Output.Masked, masked, csvio.WriterOptions{}); err != nil {
			return err
		}
		logger.Infof("Wrote masked dataset to %s", cfg.Output.Masked)
	}
	return nil
}
