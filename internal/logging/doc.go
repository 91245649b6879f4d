// Package logging provides structured logging for pipegen.
//
// It wraps Go's log/slog to emit JSON lines. The manifest itself goes to
// stdout, so log records are only ever written to stderr or to a log file
// named in the configuration:
//
//	logging:
//	  level: info
//	  file: /var/log/pipegen.log
//
// # Context
//
// Child loggers carry persistent attributes:
//
//	logger.WithProfile("default").WithPhase("build").Debug("phase emitted", "steps", 7)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"phase emitted","profile":"default","phase":"build","steps":7}
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] with a buffer to
// assert on records.
package logging
