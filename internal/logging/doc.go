// Package logging builds the zerolog loggers used across wishboard and carries
// them, together with a per-operation trace ID, through context.Context.
//
// Components obtain their logger with FromContext and tag it with
// ComponentLogger so every line carries a "component" field:
//
//	logger := logging.FromContext(ctx)
//	logger.Info().Str("component", "widget").Msg("wishes loaded")
package logging
