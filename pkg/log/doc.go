/*
Package log wraps zerolog with the structured-logging conventions the rest
of this module uses: JSON output in production, a console writer in
development, and component-scoped child loggers so a log line from the
fetcher can be told apart from one out of the engine or the API server
without grepping message text.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	engineLog := log.WithComponent("engine")
	engineLog.Info().Str("author_id", hex.EncodeToString(id[:])).Msg("event inserted")

WithAuthor is a convenience wrapper over WithComponent-style context
loggers for the common case of a log line scoped to one author's DAG.
*/
package log
