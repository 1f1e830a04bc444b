// Package config loads server settings from flags, OMR_* environment
// variables, an optional JSON config file and an optional .env file.
//
// Precedence, highest first: command-line flags, environment (including
// values loaded from .env), config file, defaults.
package config

import (
	"flag"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"

	"github.com/ironsheep/omr-tools-mcp/internal/artifact"
	"github.com/ironsheep/omr-tools-mcp/internal/logging"
	"github.com/ironsheep/omr-tools-mcp/internal/omr"
	"github.com/ironsheep/omr-tools-mcp/internal/perspective"
)

// EnvPrefix prefixes every environment variable, e.g. OMR_FILL_THRESHOLD.
const EnvPrefix = "OMR"

// Config is the complete server configuration.
type Config struct {
	// Grid layout
	Rows    int `validate:"min=1,max=500"`
	Columns int `validate:"min=1,max=50"`
	Options int `validate:"min=1,max=23"`
	Padding int `validate:"min=0"`

	// Mark thresholds
	BinarizeThreshold int     `validate:"min=0,max=255"`
	FillThreshold     float64 `validate:"gte=0,lte=1"`

	// Boundary detection
	BlurSigma     float64 `validate:"gte=0"`
	CannyLow      float64 `validate:"gte=0"`
	CannyHigh     float64 `validate:"gtefield=CannyLow"`
	MaxCandidates int     `validate:"min=1"`
	ApproxEpsilon float64 `validate:"gt=0,lt=1"`
	DetectMaxSide int     `validate:"min=0"`
	MinSide       int     `validate:"min=2"`

	// Artifacts
	ArtifactDir     string
	ArtifactFormat  string `validate:"oneof=png jpg jpeg"`
	ArtifactOverlay bool
	S3Bucket        string
	S3Region        string `validate:"required_with=S3Bucket"`
	S3Prefix        string
	KeepSamples     bool

	BatchConcurrency int `validate:"min=1,max=64"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

var validate = validator.New()

// Load parses args (without the program name) into a validated Config.
//
// A .env file in the working directory, or the file named by OMR_ENV_FILE,
// is loaded first; variables already set in the environment win over it.
func Load(args []string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("omr-mcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	register(fs, cfg)

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithAllowMissingConfigFile(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PrintDefaults writes every flag with its default value to w.
func PrintDefaults(w io.Writer) {
	fs := flag.NewFlagSet("omr-mcp", flag.ContinueOnError)
	register(fs, &Config{})
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func register(fs *flag.FlagSet, cfg *Config) {
	_ = fs.String("config", "", "config file (optional), json format")

	fs.IntVar(&cfg.Rows, "rows", 10, "questions per column-block")
	fs.IntVar(&cfg.Columns, "columns", 3, "column-blocks per sheet")
	fs.IntVar(&cfg.Options, "options", 4, "options per question")
	fs.IntVar(&cfg.Padding, "padding", 7, "pixels trimmed from each side of a bubble before sampling")

	fs.IntVar(&cfg.BinarizeThreshold, "binarize-threshold", omr.DefaultBinarizeThreshold, "luminance at or below which a pixel is a mark")
	fs.Float64Var(&cfg.FillThreshold, "fill-threshold", omr.DefaultFillThreshold, "fill ratio an option must exceed to be marked")

	fs.Float64Var(&cfg.BlurSigma, "blur-sigma", 1.0, "gaussian blur before edge detection")
	fs.Float64Var(&cfg.CannyLow, "canny-low", 10, "canny low hysteresis threshold")
	fs.Float64Var(&cfg.CannyHigh, "canny-high", 70, "canny high hysteresis threshold")
	fs.IntVar(&cfg.MaxCandidates, "max-candidates", 5, "largest contours examined for the sheet boundary")
	fs.Float64Var(&cfg.ApproxEpsilon, "approx-epsilon", 0.02, "polygon approximation tolerance as a fraction of perimeter")
	fs.IntVar(&cfg.DetectMaxSide, "detect-max-side", 1200, "downscale photos to this size for boundary detection, 0 disables")
	fs.IntVar(&cfg.MinSide, "min-side", 16, "smallest rectified width or height accepted")

	fs.StringVar(&cfg.ArtifactDir, "artifact-dir", "", "directory for diagnostic images, empty disables")
	fs.StringVar(&cfg.ArtifactFormat, "artifact-format", "png", "diagnostic image format: png or jpeg")
	fs.BoolVar(&cfg.ArtifactOverlay, "artifact-overlay", false, "also store the annotated rectified sheet")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket for diagnostic images, overrides artifact-dir")
	fs.StringVar(&cfg.S3Region, "s3-region", "", "AWS region of the S3 bucket")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", "scanned-omr", "key prefix for S3 artifacts")
	fs.BoolVar(&cfg.KeepSamples, "keep-samples", false, "include per-bubble fill ratios in grading reports")

	fs.IntVar(&cfg.BatchConcurrency, "batch-concurrency", 4, "sheets graded in parallel by omr_grade_batch")

	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", "", "also write logs to this file, rotated")
}

func loadDotEnv() error {
	file := os.Getenv(EnvPrefix + "_ENV_FILE")
	if file == "" {
		file = ".env"
		if _, err := os.Stat(file); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(file); err != nil {
		return errors.Wrapf(err, "failed to load %s", file)
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Layout returns the grid layout.
func (c *Config) Layout() omr.Layout {
	return omr.Layout{Rows: c.Rows, Columns: c.Columns, Options: c.Options, Padding: c.Padding}
}

// Pipeline converts the configuration to grading pipeline settings.
func (c *Config) Pipeline() (omr.Config, error) {
	enc, err := artifact.ParseEncoding(c.ArtifactFormat)
	if err != nil {
		return omr.Config{}, err
	}
	return omr.Config{
		Layout:            c.Layout(),
		BinarizeThreshold: uint8(c.BinarizeThreshold),
		FillThreshold:     c.FillThreshold,
		Perspective: perspective.Options{
			BlurSigma:     c.BlurSigma,
			CannyLow:      c.CannyLow,
			CannyHigh:     c.CannyHigh,
			Dilate:        1,
			MaxCandidates: c.MaxCandidates,
			ApproxEpsilon: c.ApproxEpsilon,
			DetectMaxSide: c.DetectMaxSide,
			MinSide:       c.MinSide,
		},
		ArtifactEncoding: enc,
		ArtifactOverlay:  c.ArtifactOverlay,
		KeepSamples:      c.KeepSamples,
	}, nil
}

// Store returns the configured artifact store: S3 when a bucket is set,
// a local directory when artifact-dir is set, otherwise nil.
func (c *Config) Store() (artifact.Store, error) {
	switch {
	case c.S3Bucket != "":
		store, err := artifact.NewS3Store(artifact.S3Options{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Prefix:          c.S3Prefix,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case c.ArtifactDir != "":
		store, err := artifact.NewLocalStore(c.ArtifactDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, nil
	}
}

// Logging returns the logger options.
func (c *Config) Logging() logging.Options {
	return logging.Options{Level: c.LogLevel, File: c.LogFile}
}
