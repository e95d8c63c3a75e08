// Package files discovers monitoring workbooks and generated trend reports on disk.
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	reports, err := discovery.FindReports(paths.ReportsDir)
//	latest, ok := files.GetLatestFile(reports)
package files
