// Package http implements the HTTP handlers of the mktrend web service.
// Handlers only parse requests, call the analysis or health service and
// format the response; all statistics live in the trend and services packages.
//
// # Routes
//
//	POST   /api/trend/test     Mann-Kendall test of one JSON series
//	POST   /api/trend/slope    Sen's slope of one JSON series
//	GET    /api/trend/cache    result cache statistics
//	DELETE /api/trend/cache    clear the result cache
//	POST   /api/analysis       analyze an uploaded monitoring workbook
//	GET    /api/health         health, /ready and /live probes
//	GET    /api/version        build information
//	GET    /ws                 analysis progress events
//	GET    /metrics            Prometheus exposition
//
// # Error Handling
//
// Every failure is passed to errors.ErrorHandler and rendered as an
// RFC 7807 problem document:
//
//	{
//	  "type": "/problems/validation-error",
//	  "title": "Validation Failed",
//	  "status": 400,
//	  "detail": "Request validation failed",
//	  "instance": "/api/trend/test",
//	  "trace_id": "4f1c..."
//	}
//
// # Analysis Uploads
//
// /api/analysis takes a multipart form with the workbook in the "file" field.
// The optional fields alpha, seasonal, period and calculate_slope override the
// configured defaults. format selects the response: json (default) returns the
// report, csv and xlsx return the result table as a download.
package http
