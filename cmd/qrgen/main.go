package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qrgen/internal/cli"
	"qrgen/internal/engine/qr"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/config"
)

const (
	flagSize        = "size"
	flagFormat      = "format"
	flagOutput      = "output"
	flagInteractive = "interactive"
	flagASCII       = "ascii"
	flagConfig      = "config"
)

// newGenerator is swapped in tests.
var newGenerator = func(cfg *config.Config) cli.Generator {
	return qr.NewGenerator(
		qr.NewHTTPRenderer(cfg.Renderer.Timeout),
		cfg.Renderer.Endpoint,
		qr.WithMargin(cfg.Renderer.Margin),
	)
}

func newRootCommand(in io.Reader) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "qrgen [url]",
		Short:         "Generate QR codes from URLs",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString(flagFormat)
			if _, err := qr.ValidateFormat(format); err != nil {
				return fmt.Errorf("invalid argument %q for \"-f, --%s\" flag: must be one of png, svg, eps, pdf", format, flagFormat)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString(flagConfig)
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logCfg := cfg.Logging
			if logCfg.Output != "file" {
				logCfg.Output = "stderr"
				logCfg.Format = "text"
				logCfg.Level = "warn"
			}
			logger.Init(logCfg)

			gen := newGenerator(cfg)
			out := cmd.OutOrStdout()
			interactive, _ := cmd.Flags().GetBool(flagInteractive)

			if interactive || len(args) == 0 {
				res, _ := cli.Interactive(cmd.Context(), in, out, gen)
				printPreview(cmd, res)
				return nil
			}

			size, _ := cmd.Flags().GetString(flagSize)
			format, _ := cmd.Flags().GetString(flagFormat)
			dir, _ := cmd.Flags().GetString(flagOutput)

			res, err := gen.Generate(cmd.Context(), qr.Request{
				URL:        args[0],
				Size:       size,
				Format:     format,
				Background: true,
				OutputDir:  dir,
				Source:     cli.SourceCLI,
			})
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(out, "\nQR code saved to: %s\n", res.Path)
			printPreview(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringP(flagSize, "s", cli.DefaultSize, "Size in format WIDTHxHEIGHT or single number")
	cmd.Flags().StringP(flagFormat, "f", cli.DefaultFormat, "Output format: png, svg, eps or pdf")
	cmd.Flags().StringP(flagOutput, "o", cli.DefaultOutputDir, "Output folder")
	cmd.Flags().BoolP(flagInteractive, "i", false, "Run in interactive mode")
	cmd.Flags().Bool(flagASCII, false, "Also print the QR code in the terminal")
	cmd.Flags().String(flagConfig, "", "Path to config file (defaults to $CONFIG_PATH)")

	return cmd
}

func printPreview(cmd *cobra.Command, res *qr.Result) {
	ascii, _ := cmd.Flags().GetBool(flagASCII)
	if !ascii || res == nil {
		return
	}
	art, err := qr.TerminalPreview(res.URL)
	if err != nil {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "Preview unavailable: %v\n", err)
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), "\n"+art)
}

func execute(ctx context.Context, args []string, in io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(in)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(stderr, "Error: %s\n", strings.TrimSpace(err.Error()))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
