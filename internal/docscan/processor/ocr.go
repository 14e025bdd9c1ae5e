package processor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Runner lets us stub the tesseract binary in tests.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// OCRConfig configures the tesseract invocation.
type OCRConfig struct {
	Command  string
	Language string
	Timeout  time.Duration
}

// OCRProcessor reads images with tesseract and runs the field heuristic on the text.
// The image is streamed through stdin and never touches disk.
type OCRProcessor struct {
	runner Runner
	cfg    OCRConfig
	log    *logger.Logger
}

// NewOCRProcessor creates a tesseract-backed processor
func NewOCRProcessor(runner Runner, cfg OCRConfig, log *logger.Logger) *OCRProcessor {
	if cfg.Command == "" {
		cfg.Command = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &OCRProcessor{runner: runner, cfg: cfg, log: log}
}

func (p *OCRProcessor) Name() string { return "tesseract" }

func (p *OCRProcessor) CanProcess(doc domain.Document) bool {
	return strings.HasPrefix(doc.ContentType, "image/")
}

func (p *OCRProcessor) Process(ctx context.Context, doc domain.Document) (*domain.ExtractionResult, error) {
	start := time.Now()
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	// tesseract stdin stdout -l <lang>
	out, errb, err := p.runner.Run(ctx, doc.Data, p.cfg.Command, "stdin", "stdout", "-l", p.cfg.Language)
	if err != nil {
		p.log.Error().Err(err).
			Str("stderr", truncate(string(errb), 8<<10)).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("tesseract failed")
		return nil, fmt.Errorf("tesseract: %w", err)
	}

	p.log.Debug().
		Int("stdout_bytes", len(out)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("tesseract ok")

	return Analyze(string(out), doc.Type, p.Name(), start), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
