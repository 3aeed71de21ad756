package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/notargets/DGPost/internal/config"
	"github.com/notargets/DGPost/internal/telemetry"
	"github.com/notargets/DGPost/postprocess"
	"github.com/notargets/DGPost/postprocess/library"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile   string
	format       string
	outPath      string
	debug        bool
	otlpEndpoint string
	plotField    string
	plotHeight   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dgpost",
		Short:        "derived quantities from nodal DG fields",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/gRPC trace endpoint")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evaluate the configured postprocessors and write the result",
		RunE:  runPostprocess,
	}
	runCmd.Flags().StringVar(&format, "format", "", "output format (csv, yaml); overrides config")
	runCmd.Flags().StringVar(&outPath, "out", "", "output file; overrides config")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list available postprocessors",
		RunE:  listPostprocessors,
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot one derived quantity",
		RunE:  plotOutput,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "output name to plot (default: first)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

// setup loads config, logger and tracing shared by every subcommand
func setup(ctx context.Context) (*config.Config, *zap.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	shutdown, err := telemetry.Setup(ctx, otlpEndpoint, "dgpost")
	if err != nil {
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("telemetry: %w", err)
	}
	return cfg, logger, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
		logger.Sync()
	}, nil
}

func runPostprocess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, done, err := setup(ctx)
	if err != nil {
		return err
	}
	defer done()
	if format != "" {
		cfg.Output.Format = format
	}
	if outPath != "" {
		cfg.Output.Path = outPath
	}

	out, err := postprocessField(ctx, cfg, logger)
	if err != nil {
		logger.Error("Postprocessing failed", zap.Error(err))
		return err
	}

	if cfg.Output.Path == "" {
		err = writeOutput(out, cfg.Output.Format, nopCloser{os.Stdout})
	} else {
		var f *os.File
		if f, err = os.Create(cfg.Output.Path); err != nil {
			return err
		}
		err = writeOutput(out, cfg.Output.Format, f)
	}
	if err != nil {
		logger.Error("Writing output failed", zap.String("path", cfg.Output.Path), zap.Error(err))
		return err
	}
	logger.Info("Output written",
		zap.String("format", cfg.Output.Format),
		zap.String("path", cfg.Output.Path),
		zap.Strings("names", out.Names))
	return nil
}

func listPostprocessors(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOUTPUTS (1D SCALAR)\tFLAGS")
	for _, name := range library.Names() {
		pp, err := library.Lookup(name, 1, 1)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t%v\n", name, err)
			continue
		}
		decl, err := postprocess.Declare(pp)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, strings.Join(decl.Names, ","), decl.Flags)
	}
	return tw.Flush()
}

func plotOutput(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, done, err := setup(ctx)
	if err != nil {
		return err
	}
	defer done()

	out, err := postprocessField(ctx, cfg, logger)
	if err != nil {
		return err
	}
	name := plotField
	if name == "" && len(out.Names) > 0 {
		name = out.Names[0]
	}
	series, err := column(out, name)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("output %q is empty", name)
	}
	graph := asciigraph.Plot(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s of %s over [%g, %g]", name, cfg.Field, cfg.Mesh.XMin, cfg.Mesh.XMax)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}
