package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbrown/imgfilter"
	"github.com/wbrown/imgfilter/imageutil"
)

func main() {
	inputFiles := flag.String("input", "",
		"Comma separated input image paths (required)")
	output := flag.String("output", "",
		"Output file, or directory when there are several inputs "+
			"(default: <input>_filtered next to each input)")
	steps := flag.String("steps", "",
		"Pipeline, e.g. \"grayscale,blur:2,sharpen:1,edges,invert\"")
	reference := flag.String("reference", "",
		"Reference image, or directory of references named like the outputs")
	sheetDir := flag.String("sheet", "",
		"Directory for contact sheets showing every stage")
	width := flag.Int("width", 0,
		"Downscale inputs wider than this before filtering (0 = keep size)")
	workers := flag.Int("workers", 0,
		"Convolution worker goroutines (0 = GOMAXPROCS)")
	list := flag.Bool("list", false,
		"List available filters and exit")
	debug := flag.Bool("debug", false,
		"Enable debug logging")
	flag.Parse()

	if *list {
		for _, name := range imgfilter.Filters() {
			f, _ := imgfilter.Lookup(name)
			level := ""
			if f.Leveled() {
				level = ":level"
			}
			fmt.Printf("  %-16s %s\n", name+level, f.Description())
		}
		return
	}

	logger := initLogger(*debug)

	if *inputFiles == "" {
		fmt.Println("Please provide at least one image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	pipeline, err := imgfilter.ParseSteps(*steps)
	if err != nil {
		logger.WithError(err).Error("Invalid -steps")
		os.Exit(1)
	}

	jobs, err := buildJobs(splitList(*inputFiles), *output)
	if err != nil {
		logger.WithError(err).Error("Invalid -output")
		os.Exit(1)
	}

	imageutil.SetParallelism(*workers)

	opts := []imgfilter.ProcessorOption{imgfilter.WithLogger(logger)}
	if *reference != "" {
		opts = append(opts, imgfilter.WithReferenceCheck(*reference))
	}
	if *sheetDir != "" {
		opts = append(opts, imgfilter.WithContactSheet(*sheetDir))
	}
	if *width > 0 {
		opts = append(opts, imgfilter.WithResizeWidth(*width))
	}
	processor := imgfilter.NewProcessor(pipeline, opts...)

	logger.WithFields(logrus.Fields{
		"inputs":  len(jobs),
		"steps":   imgfilter.FormatSteps(pipeline),
		"workers": imageutil.Parallelism(),
	}).Info("Starting")

	report := processor.ProcessBatch(jobs)
	for _, r := range report.Results {
		if r.Comparison != nil {
			fmt.Printf("%s: matches %s (%d exact differences)\n",
				r.Output, r.Comparison.Reference, r.Comparison.Differences)
		} else {
			fmt.Printf("%s -> %s\n", r.Input, r.Output)
		}
	}
	if report.Failed() {
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "Error: %v\n", f)
		}
		os.Exit(1)
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
