package imgfilter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wbrown/imgfilter/imageutil"
)

// ErrReferenceMismatch is returned when a result differs from its
// reference image by more than the comparison tolerance.
var ErrReferenceMismatch = errors.New("result does not match reference")

// Processor applies a pipeline of steps to image files.
type Processor struct {
	Steps []Step

	// ResizeWidth downscales inputs wider than this before filtering.
	// Zero keeps the original size.
	ResizeWidth int

	// ReferencePath is a reference image, or a directory of references
	// named like the outputs. Empty disables the check.
	ReferencePath string

	// SheetDir receives a contact sheet per input. Empty disables sheets.
	SheetDir string

	logger logrus.FieldLogger
}

// ProcessorOption is a functional option for configuring a Processor.
type ProcessorOption func(*Processor)

// NewProcessor creates a Processor for the given steps. By default it
// logs nothing, keeps the input size and skips reference checks and
// contact sheets.
func NewProcessor(steps []Step, opts ...ProcessorOption) *Processor {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	p := &Processor{
		Steps:  steps,
		logger: silent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger logrus.FieldLogger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithReferenceCheck compares each result with a reference image. path is
// either a single image or a directory holding one reference per output,
// matched by file name.
func WithReferenceCheck(path string) ProcessorOption {
	return func(p *Processor) {
		p.ReferencePath = path
	}
}

// WithResizeWidth downscales wider inputs to width before filtering.
func WithResizeWidth(width int) ProcessorOption {
	return func(p *Processor) {
		p.ResizeWidth = width
	}
}

// WithContactSheet writes a contact sheet of every stage into dir.
func WithContactSheet(dir string) ProcessorOption {
	return func(p *Processor) {
		p.SheetDir = dir
	}
}

// Stage is the image after one pipeline step. The first stage of a run
// holds the input and has no step.
type Stage struct {
	Label   string
	Image   *imageutil.PixelBuffer
	Elapsed time.Duration
}

// Job names one input and where its result goes.
type Job struct {
	Input  string
	Output string

	// FallbackToPNG writes a PNG beside Output, instead of failing, when
	// Output's format cannot hold the result.
	FallbackToPNG bool
}

// Comparison summarizes a reference check.
type Comparison struct {
	Reference     string
	Match         bool
	Differences   int
	MaxDifference int
}

// Result describes a processed image.
type Result struct {
	Job
	Stages     []Stage
	Comparison *Comparison
	Sheet      string
	Elapsed    time.Duration
}

// Final returns the last stage's image.
func (r *Result) Final() *imageutil.PixelBuffer {
	if len(r.Stages) == 0 {
		return nil
	}
	return r.Stages[len(r.Stages)-1].Image
}

// Run applies every step to img in order and returns the input followed
// by each step's output. The first failing step aborts the run.
func (p *Processor) Run(img *imageutil.PixelBuffer) ([]Stage, error) {
	stages := make([]Stage, 0, len(p.Steps)+1)
	stages = append(stages, Stage{Label: "input", Image: img})

	current := img
	for _, step := range p.Steps {
		start := time.Now()
		out, err := step.Apply(current)
		if err != nil {
			return stages, err
		}
		elapsed := time.Since(start)

		p.logger.WithFields(logrus.Fields{
			"step":     step.String(),
			"width":    out.Width(),
			"height":   out.Height(),
			"channels": out.Channels(),
			"elapsed":  elapsed,
		}).Debug("Applied step")

		stages = append(stages, Stage{Label: step.String(), Image: out, Elapsed: elapsed})
		current = out
	}
	return stages, nil
}

// ProcessFile loads job.Input, runs the pipeline, saves the result to
// job.Output and performs the configured reference check and contact
// sheet.
func (p *Processor) ProcessFile(job Job) (*Result, error) {
	start := time.Now()
	log := p.logger.WithField("input", job.Input)
	result := &Result{Job: job}

	img, err := imageutil.LoadImage(job.Input)
	if err != nil {
		return result, err
	}
	log.WithFields(logrus.Fields{
		"width":    img.Width(),
		"height":   img.Height(),
		"channels": img.Channels(),
	}).Debug("Loaded image")

	if p.ResizeWidth > 0 && img.Width() > p.ResizeWidth {
		img, err = imageutil.ResizeToWidth(img, p.ResizeWidth, imageutil.InterpolationArea)
		if err != nil {
			return result, fmt.Errorf("failed to resize: %w", err)
		}
	}

	output, err := p.outputPath(job, img.Channels())
	if err != nil {
		return result, err
	}
	if output != job.Output {
		log.WithFields(logrus.Fields{
			"requested": job.Output,
			"output":    output,
		}).Info("Output format cannot hold the result, writing PNG")
		job.Output = output
		result.Output = output
	}

	stages, err := p.Run(img)
	result.Stages = stages
	if err != nil {
		return result, err
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imageutil.SaveImage(result.Final(), job.Output); err != nil {
		return result, err
	}

	if p.SheetDir != "" {
		sheet, err := p.writeSheet(job, stages)
		if err != nil {
			return result, err
		}
		result.Sheet = sheet
	}

	if p.ReferencePath != "" {
		cmp, err := p.compare(job, result.Final())
		result.Comparison = cmp
		if err != nil {
			return result, err
		}
		log.WithFields(logrus.Fields{
			"reference":   cmp.Reference,
			"differences": cmp.Differences,
		}).Debug("Compared with reference")
		if !cmp.Match {
			return result, fmt.Errorf("%w: %s: %d bytes differ, max difference %d",
				ErrReferenceMismatch, cmp.Reference, cmp.Differences, cmp.MaxDifference)
		}
	}

	result.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"output":  job.Output,
		"elapsed": result.Elapsed,
	}).Info("Processed image")
	return result, nil
}

// outputPath checks, before any filtering, that job.Output can store what
// the pipeline makes of an input with the given channel count.
func (p *Processor) outputPath(job Job, channels int) (string, error) {
	channels = p.resultChannels(channels)
	format, err := imageutil.FormatFromPath(job.Output)
	if err == nil && format.SupportsChannels(channels) {
		return job.Output, nil
	}
	if job.FallbackToPNG {
		return strings.TrimSuffix(job.Output, filepath.Ext(job.Output)) + ".png", nil
	}
	if err != nil {
		return "", err
	}
	if !format.Writable() {
		return "", &imageutil.EncodeError{Format: format, Channels: channels,
			Err: fmt.Errorf("%w: no %s encoder", imageutil.ErrUnsupportedFormat, format)}
	}
	return "", &imageutil.EncodeError{Format: format, Channels: channels, Err: imageutil.ErrUnsupportedChannelLayout}
}

// resultChannels runs the steps over a single pixel to find the channel
// count they produce. Steps that fail are left for Run to report.
func (p *Processor) resultChannels(channels int) int {
	img, err := imageutil.NewPixelBuffer(1, 1, channels)
	if err != nil {
		return channels
	}
	for _, step := range p.Steps {
		out, err := step.Apply(img)
		if err != nil {
			break
		}
		img = out
	}
	return img.Channels()
}

// referenceFor resolves the reference image for a job.
func (p *Processor) referenceFor(job Job) string {
	if info, err := os.Stat(p.ReferencePath); err == nil && info.IsDir() {
		return filepath.Join(p.ReferencePath, filepath.Base(job.Output))
	}
	return p.ReferencePath
}

func (p *Processor) compare(job Job, result *imageutil.PixelBuffer) (*Comparison, error) {
	path := p.referenceFor(job)
	cmp := &Comparison{Reference: path}

	ref, err := imageutil.LoadImage(path)
	if err != nil {
		return cmp, fmt.Errorf("failed to load reference: %w", err)
	}
	// References are frequently stored without the alpha or color channels
	// the pipeline keeps; compare in the result's layout.
	if ref.Channels() != result.Channels() {
		ref = imageutil.FromImageChannels(imageutil.ToImage(ref), result.Channels())
	}

	if cmp.Differences, err = imageutil.CountDifferences(result, ref); err != nil {
		return cmp, fmt.Errorf("reference %s is %s, result is %s: %w", path, ref, result, err)
	}
	cmp.MaxDifference, _ = imageutil.MaxDifference(result, ref)
	cmp.Match = imageutil.ApproximatelyEqual(result, ref)
	return cmp, nil
}

func (p *Processor) writeSheet(job Job, stages []Stage) (string, error) {
	sheet, err := RenderContactSheet(stages, DefaultSheetOptions())
	if err != nil {
		return "", fmt.Errorf("failed to render contact sheet: %w", err)
	}
	if err := os.MkdirAll(p.SheetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create sheet directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(job.Input), filepath.Ext(job.Input))
	path := filepath.Join(p.SheetDir, base+"_sheet.png")
	if err := imageutil.SaveImage(sheet, path); err != nil {
		return "", err
	}
	return path, nil
}

// Failure records a job that could not be completed.
type Failure struct {
	Job
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Input, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// BatchReport collects the outcome of a batch.
type BatchReport struct {
	Results  []*Result
	Failures []Failure
}

// Failed reports whether any job failed.
func (b *BatchReport) Failed() bool {
	return len(b.Failures) > 0
}

// Err joins every failure, or returns nil.
func (b *BatchReport) Err() error {
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// ProcessBatch processes jobs in order. A failing job is logged and
// recorded; the remaining jobs still run.
func (p *Processor) ProcessBatch(jobs []Job) *BatchReport {
	report := &BatchReport{}
	for _, job := range jobs {
		result, err := p.ProcessFile(job)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"input": job.Input,
				"error": err,
			}).Error("Failed to process image")
			report.Failures = append(report.Failures, Failure{Job: job, Err: err})
			continue
		}
		report.Results = append(report.Results, result)
	}

	p.logger.WithFields(logrus.Fields{
		"processed": len(report.Results),
		"failed":    len(report.Failures),
	}).Info("Batch complete")
	return report
}
