package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/dermascan-api/internal/analysis"
	"github.com/Brownie44l1/dermascan-api/internal/config"
	"github.com/Brownie44l1/dermascan-api/internal/features"
	"github.com/Brownie44l1/dermascan-api/internal/model"
	"github.com/Brownie44l1/dermascan-api/internal/questionnaire"
	"github.com/Brownie44l1/dermascan-api/internal/report"
)

var (
	// ErrNoAnswers is returned when --answers is missing.
	ErrNoAnswers = errors.New("no answers file: use --answers")

	// ErrUnknownFormat is returned for a --format other than text or markdown.
	ErrUnknownFormat = errors.New("unknown report format: use text or markdown")
)

type analyzeOptions struct {
	answersPath string
	format      report.Format
	outputPath  string
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze --answers FILE IMAGE...",
		Short: "Analyze up to five skin photographs",
		Long: `Analyze runs feature extraction and classification on each image,
infers conditions from the questionnaire answers and prints the report.

The answers file is YAML with the questionnaire fields, for example:
  age: 25
  gender: female
  acne: "yes"
  oiliness: "no"
  diet_score: 2
  stress: 5
  water_intake: 2`,
		Args: cobra.RangeArgs(1, analysis.DefaultMaxImages),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("answers", "a", "", "Questionnaire answers (YAML)")
	cmd.Flags().StringP("format", "f", string(report.FormatText), "Report format: text or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	opts, err := analyzeFlags(cmd)
	if err != nil {
		return err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sess, err := model.Load(cfg.Model.Path, cfg.Model.MetadataPath, cfg.Model.LibraryPath,
		features.Length, features.EdgeDensityScale)
	if err != nil {
		return err
	}
	defer sess.Close()

	pipeline := analysis.New(features.NewExtractor(), model.NewSessionClassifier(sess),
		analysis.WithLogger(logger),
		analysis.WithWorkers(cfg.Analysis.Workers),
		analysis.WithMaxImages(cfg.Analysis.MaxImages),
	)
	return analyzeImages(cmd.Context(), cmd.OutOrStdout(), pipeline, opts, args)
}

func analyzeFlags(cmd *cobra.Command) (analyzeOptions, error) {
	answers, _ := cmd.Flags().GetString("answers")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if answers == "" {
		return analyzeOptions{}, ErrNoAnswers
	}
	f := report.Format(format)
	if f != report.FormatText && f != report.FormatMarkdown {
		return analyzeOptions{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return analyzeOptions{answersPath: answers, format: f, outputPath: output}, nil
}

func analyzeImages(ctx context.Context, stdout io.Writer, pipeline *analysis.Analyzer, opts analyzeOptions, paths []string) error {
	answers, err := loadAnswers(opts.answersPath)
	if err != nil {
		return err
	}
	images, err := readImages(paths)
	if err != nil {
		return err
	}

	rep, err := pipeline.Analyze(ctx, analysis.Request{Answers: answers, Images: images})
	if err != nil {
		return err
	}
	return writeReport(rep, opts, stdout)
}

// loadAnswers reads a YAML answers file. Values are kept as their literal
// text and validated by the questionnaire parser.
func loadAnswers(path string) (questionnaire.Answers, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return questionnaire.Answers{}, fmt.Errorf("failed to read answers: %w", err)
	}

	fields := make(map[string]string)
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return questionnaire.Answers{}, fmt.Errorf("failed to parse answers: %w", err)
	}
	return questionnaire.Parse(fields)
}

func readImages(paths []string) ([]analysis.Image, error) {
	images := make([]analysis.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Clean(p))
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		images = append(images, analysis.Image{Name: filepath.Base(p), Data: data})
	}
	return images, nil
}

func writeReport(rep *report.Report, opts analyzeOptions, stdout io.Writer) error {
	if opts.outputPath == "" {
		_, err := report.NewWriter(opts.format, stdout).Write(rep)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.outputPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(filepath.Clean(opts.outputPath))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewWriter(opts.format, f).Write(rep); err != nil {
		return err
	}
	return f.Close()
}
