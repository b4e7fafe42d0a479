package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Client defines the cut, concatenate, and tag capabilities consumed by the
// exporter.
type Client interface {
	Cut(ctx context.Context, inputPath string, start, end time.Duration, outputPath string) error
	Concat(ctx context.Context, inputPaths []string, outputPath string) error
	Tag(ctx context.Context, inputPath, outputPath string, meta Metadata) error
}

// Metadata holds the tags embedded into an exported chapter file.
type Metadata struct {
	Title  string
	Track  int
	Artist string
	Album  string
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds each ffmpeg invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Cut extracts [start, end) from inputPath into outputPath using a stream copy.
func (c *CLI) Cut(ctx context.Context, inputPath string, start, end time.Duration, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	if end <= start {
		return fmt.Errorf("invalid cut range [%v, %v)", start, end)
	}

	args := []string{
		"-v", "error", "-hide_banner", "-y",
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", inputPath,
		"-c", "copy",
		outputPath,
	}
	return c.run(ctx, args)
}

// Concat joins the input files in order into outputPath using the concat
// demuxer with a stream copy. All inputs must share a codec; mismatches
// surface as an ffmpeg error the caller treats as a failed concatenation.
func (c *CLI) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	if len(inputPaths) == 0 {
		return errors.New("at least one input required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	if len(inputPaths) == 1 {
		return os.Rename(inputPaths[0], outputPath)
	}

	listFile, err := writeConcatList(inputPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	args := []string{
		"-v", "error", "-hide_banner", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outputPath,
	}
	return c.run(ctx, args)
}

// Tag rewrites inputPath to outputPath with chapter metadata embedded,
// copying the audio stream untouched.
func (c *CLI) Tag(ctx context.Context, inputPath, outputPath string, meta Metadata) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-v", "error", "-hide_banner", "-y",
		"-i", inputPath,
		"-c", "copy",
		"-id3v2_version", "3",
		"-metadata", "title=" + meta.Title,
		"-metadata", "track=" + strconv.Itoa(meta.Track),
	}
	if meta.Artist != "" {
		args = append(args, "-metadata", "artist="+meta.Artist)
	}
	if meta.Album != "" {
		args = append(args, "-metadata", "album="+meta.Album)
	}
	args = append(args, outputPath)
	return c.run(ctx, args)
}

func (c *CLI) run(ctx context.Context, args []string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func writeConcatList(inputPaths []string, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	var b strings.Builder
	for _, path := range inputPaths {
		// Concat demuxer syntax: single quotes escaped by closing, quoting, reopening.
		escaped := strings.ReplaceAll(path, "'", `'\''`)
		b.WriteString("file '")
		b.WriteString(escaped)
		b.WriteString("'\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
