// Package shared holds helpers used across mktrend packages that do not
// belong to any single layer.
//
// The testutil subpackage carries test fixtures: monitoring workbooks built
// with excelize and an slog handler that captures records so tests can assert
// on what a component logged.
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.BuildWorkbook(t, testutil.MonitoringRows())
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Workbook analyzed")
//	}
package shared
