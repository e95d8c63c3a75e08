// Package app wires the mktrend web service together and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from environment and files
//  2. Initialize logging and OpenTelemetry
//  3. Resolve and create the data, reports and logs directories
//  4. Start the websocket hub and create the analysis and health services
//  5. Build the chi router and the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then stops accepting requests, closes
// websocket clients, flushes telemetry and closes the log file.
//
// Initialization errors are returned to the caller; the package never calls os.Exit.
package app
