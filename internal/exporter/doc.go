// Package exporter writes trend analysis results as Excel workbooks, CSV or JSON.
//
// Write encodes rows to any io.Writer in the requested Format. FileWriter stores a
// report under the reports directory, naming it with OutputFilename:
//
//	w := exporter.NewFileWriter(paths)
//	path, err := w.WriteReport("wells.xlsx", exporter.FormatCSV, report.Rows)
//
// CSV output starts with a UTF-8 BOM so that Excel detects the encoding.
package exporter
