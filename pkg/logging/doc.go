// Package logging provides the structured logging used across mockspec.
//
// It is a thin layer over Go's slog package that tags every record with a
// subsystem and offers printf-style helpers:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Serve", "Listening on %d endpoints", n)
//	logging.Warn("Expectation", "Predicates on lenient endpoint %s will be ignored", uri)
//	logging.Error("Feeder", err, "Failed to deliver message")
//
// # Capture Mode
//
// InitForCapture replaces the writer with a buffered channel of LogEntry
// values. Tests use it to assert that advisories were emitted, and the
// validate command uses it to list advisories beneath its summary table:
//
//	entries := logging.InitForCapture(logging.LevelWarn)
//	defer logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	// ... build expectations ...
//	for _, e := range logging.Drain(entries) {
//	    fmt.Println(e.Subsystem, e.Message)
//	}
//
// Logging state is global. Tests that switch modes must not run in parallel.
package logging
