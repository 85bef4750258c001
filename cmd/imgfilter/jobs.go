package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/imgfilter"
	"github.com/wbrown/imgfilter/imageutil"
)

// buildJobs pairs each input with an output path. An empty output writes
// next to the input; several inputs, an existing directory or a path
// without an extension name a directory. Derived names keep the input's
// extension when it can be written and fall back to PNG otherwise.
func buildJobs(inputs []string, output string) ([]imgfilter.Job, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no inputs")
	}

	jobs := make([]imgfilter.Job, 0, len(inputs))
	switch {
	case output == "":
		for _, in := range inputs {
			base, ext := splitExt(in)
			jobs = append(jobs, imgfilter.Job{Input: in, Output: base + "_filtered" + ext, FallbackToPNG: true})
		}
	case isDir(output, len(inputs)):
		seen := make(map[string]string, len(inputs))
		for _, in := range inputs {
			base, ext := splitExt(filepath.Base(in))
			out := filepath.Join(output, base+ext)
			if prev, ok := seen[out]; ok {
				return nil, fmt.Errorf("%s and %s would both write %s", prev, in, out)
			}
			seen[out] = in
			jobs = append(jobs, imgfilter.Job{Input: in, Output: out, FallbackToPNG: true})
		}
	default:
		format, err := imageutil.FormatFromPath(output)
		if err != nil {
			return nil, err
		}
		if !format.Writable() {
			return nil, fmt.Errorf("%w: cannot write %s", imageutil.ErrUnsupportedFormat, format)
		}
		jobs = append(jobs, imgfilter.Job{Input: inputs[0], Output: output})
	}
	return jobs, nil
}

// splitExt splits path into its base and the extension to write, which is
// ".png" when the input's format cannot be encoded.
func splitExt(path string) (string, string) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if format, err := imageutil.FormatFromPath(path); err != nil || !format.Writable() {
		return base, ".png"
	}
	return base, ext
}

func isDir(path string, inputs int) bool {
	if inputs > 1 || filepath.Ext(path) == "" {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
