// Package dataprocessing turns monitoring-well workbooks into trend test results.
//
// A workbook holds one sample per column: row 1 names the well, row 2 the sample
// date, and each following row one component (named in column A) with its readings.
// Not-detected markers such as "ND" are replaced by a configurable value and censored
// readings like "<0.01" lose their prefix.
//
// The pipeline is:
//
//	ds, err := dataprocessing.ParseFile("wells.xlsx", dataprocessing.DefaultParseOptions())
//	p := dataprocessing.NewProcessor(dataprocessing.ProcessorConfig{Workers: 4})
//	series, skipped := p.BuildSeries(ds)
//	rows, rejected, err := p.Run(ctx, series, nil)
//	summary := dataprocessing.Summarize(rows)
package dataprocessing
