// Package logging provides file-based structured logging for the ranking
// engine: JSON records go to a rotating file under ~/.practitioner-rank/logs/
// and, when Config.WriteToStderr is set, to stderr as well. rankctl logs
// to the file only, at info level by default; --debug (or RANK_DEBUG=1)
// lowers the level to debug, which keeps the per-component score
// diagnostics (see internal/diagnostics).
package logging
