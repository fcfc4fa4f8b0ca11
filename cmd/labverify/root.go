package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/macrossfev/report-verification/pkg/calibration"
	"github.com/macrossfev/report-verification/pkg/logging"
	"github.com/macrossfev/report-verification/pkg/verify"
)

const defaultOutputName = "待确认问题清单.txt"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labverify [directory]",
		Short: "Verify water-quality laboratory reports against the original record",
		Long: `labverify scans a directory of laboratory report spreadsheets plus the
original-record workbook beside them, cross-checks values, naming,
numbering, dates and physical consistency, and writes a categorized
issue list for human review.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runVerify,
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "output file path (default: <dir>/"+defaultOutputName+")")
	flags.Bool("registry-only", false, "check the original record only, skip report cross-checks")
	flags.Bool("json", false, "write line-delimited JSON records instead of the text report")
	flags.String("calibration", "", "YAML calibration file overriding default thresholds and aliases")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.Int("workers", 0, "concurrent report parsers (0 = number of CPUs)")

	viper.SetEnvPrefix("LABVERIFY")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	log := logging.NewLoggerFromConfig(&logging.Config{
		Level:  viper.GetString("log-level"),
		Format: "console",
		Output: "stderr",
	})
	logging.SetDefault(log)

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("目录不存在：%s", dir)
	}

	cal := calibration.Default()
	if path := viper.GetString("calibration"); path != "" {
		cal, err = calibration.Load(path)
		if err != nil {
			return err
		}
		log.Info().Str("calibration", path).Msg("loaded calibration overrides")
	}

	ctx := logging.WithLogger(cmd.Context(), &log)
	res, err := verify.Run(ctx, verify.Config{
		Dir:          dir,
		RegistryOnly: viper.GetBool("registry-only"),
		Calibration:  cal,
		Workers:      viper.GetInt("workers"),
	})
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	if output == "" {
		output = filepath.Join(dir, defaultOutputName)
	}

	var payload []byte
	if viper.GetBool("json") {
		payload, err = res.MarshalRecords()
		if err != nil {
			return err
		}
	} else {
		payload = []byte(res.Render())
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "分析完成！共发现 %d 项待确认问题。\n结果已写入：%s\n", len(res.Issues), output)
	return nil
}
