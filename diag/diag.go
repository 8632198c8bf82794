// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: diag.go — allocation-light diagnostic logging for the pool's
// non-hot paths (construction, snapshot export, collector lifecycle).
//
// Notes:
//   - Never call from pool.NextWritable / pool.NextReadable — those are the
//     hot path and must stay allocation-free and log-free.
//   - Wraps the stdlib log package exactly the way the rest of this codebase
//     does; no structured-logging dependency is introduced.
// ─────────────────────────────────────────────────────────────────────────────

package diag

import "log"

// DropError logs a prefixed error, or just the prefix if err is nil (used as
// a cheap lifecycle trace, e.g. "collector: attached").
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		log.Printf("%s: %v", prefix, err)
	} else {
		log.Print(prefix)
	}
}

// DropMessage logs a prefixed diagnostic message.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	log.Printf("%s: %s", prefix, message)
}
