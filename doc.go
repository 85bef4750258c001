// Package imgfilter runs named filter pipelines over image files.
//
// The pixel work lives in package imageutil; this package adds the pieces
// a tool needs around it: parsing steps such as "grayscale,blur:2,edges",
// a registry of filters by name, a Processor that loads, filters, saves
// and optionally checks each image against a reference, and contact sheets
// that show every stage of a pipeline side by side.
//
// Basic usage:
//
//	steps, err := imgfilter.ParseSteps("grayscale,blur:2,edges")
//	if err != nil {
//		log.Fatal(err)
//	}
//	p := imgfilter.NewProcessor(steps, imgfilter.WithLogger(logger))
//	report := p.ProcessBatch([]imgfilter.Job{{Input: "in.png", Output: "out.png"}})
//	if err := report.Err(); err != nil {
//		log.Fatal(err)
//	}
package imgfilter
