// Package logging builds the process logger on uber/zap.
//
// Production mode writes JSON lines; development mode writes colored
// console output. Components receive the embedded *zap.Logger, usually
// through Named, and fall back to zap.NewNop when none is supplied.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Close()
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
