package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tsawler/deckparse"
	"github.com/tsawler/deckparse/internal/config"
	"github.com/tsawler/deckparse/internal/render"
	"github.com/tsawler/deckparse/internal/watcher"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type extractOptions struct {
	Input      string
	Output     string
	Format     string
	Workers    int
	Slides     []int
	ProbeMedia bool
	OCR        bool
	Lang       string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deckparse",
		Short: "Extract structured content from PowerPoint presentations",
		Long: `deckparse reads .pptx files and emits their slides as a structured
document: formatted text runs with the resolved theme, master and layout
styles, tables, charts with their embedded data, SmartArt, animation
timing trees, speaker notes and a media inventory.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", config.DefaultFile, "Config file path")
	root.AddCommand(newExtractCmd(), newWatchCmd(), newVersionCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file.pptx>",
		Short: "Extract one presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := readExtractOptions(cmd, args, cfg)
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringP("format", "f", "json", "Output format: json, text, markdown or html")
	f.StringP("output", "o", "", "Output file path (default: stdout)")
	f.IntP("workers", "w", 0, "Slides extracted concurrently (default: GOMAXPROCS)")
	f.IntSlice("slides", nil, "Only emit these 1-indexed slides")
	f.Bool("probe-media", true, "Decode image headers in the media inventory")
	f.Bool("ocr", false, "Run OCR over embedded images (requires the ocr build tag)")
	f.String("lang", "eng", "OCR language")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Extract every presentation dropped into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				cfg.Watch.Dir, _ = cmd.Flags().GetString("dir")
			}
			if cmd.Flags().Changed("out") {
				cfg.Watch.OutputDir, _ = cmd.Flags().GetString("out")
			}
			if cmd.Flags().Changed("format") {
				cfg.Extract.Format, _ = cmd.Flags().GetString("format")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return watcher.New(cfg, nil).Start(cmd.Context())
		},
	}
	cmd.Flags().String("dir", "", "Directory to watch (default from config)")
	cmd.Flags().String("out", "", "Directory for rendered output (default from config)")
	cmd.Flags().StringP("format", "f", "", "Output format (default from config)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deckparse %s\n", version)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// readExtractOptions merges the config with the flags the user set
// explicitly.
func readExtractOptions(cmd *cobra.Command, args []string, cfg *config.Config) (extractOptions, error) {
	opts := extractOptions{
		Input:      args[0],
		Format:     cfg.Extract.Format,
		Workers:    cfg.Extract.Workers,
		ProbeMedia: cfg.Extract.ProbeMedia,
		OCR:        cfg.Extract.OCR,
		Lang:       cfg.Extract.OCRLang,
	}
	f := cmd.Flags()
	opts.Output, _ = f.GetString("output")
	opts.Slides, _ = f.GetIntSlice("slides")
	if f.Changed("format") {
		opts.Format, _ = f.GetString("format")
	}
	if f.Changed("workers") {
		opts.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("probe-media") {
		opts.ProbeMedia, _ = f.GetBool("probe-media")
	}
	if f.Changed("ocr") {
		opts.OCR, _ = f.GetBool("ocr")
	}
	if f.Changed("lang") {
		opts.Lang, _ = f.GetString("lang")
	}

	check := config.Config{Extract: config.ExtractConfig{Workers: opts.Workers, Format: opts.Format}}
	if err := check.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// runExtract writes the rendered document to opts.Output (stdout when empty
// or "-") and one line per skipped slide to stderr.
func runExtract(ctx context.Context, opts extractOptions, stdout, stderr io.Writer) error {
	e := deckparse.Open(opts.Input).Workers(opts.Workers)
	if len(opts.Slides) > 0 {
		e = e.Slides(opts.Slides...)
	}
	if opts.ProbeMedia {
		e = e.ProbeMedia()
	}
	if opts.OCR {
		e = e.WithOCR(opts.Lang)
	}

	doc, warnings, err := e.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(stderr, "skipped %s\n", w)
	}

	if opts.Output == "" || opts.Output == "-" {
		return render.Write(stdout, doc, opts.Format)
	}
	if dir := filepath.Dir(opts.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	if err := render.Write(out, doc, opts.Format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %d slides to %s", len(doc.Slides), opts.Output)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
