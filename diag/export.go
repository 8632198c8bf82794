// export.go — JSON rendering of a Snapshot for operator-facing export
// (log shipping, a status endpoint, a file written on SIGHUP). Uses sonnet,
// the fast encoding/json drop-in this codebase already relies on for
// decoding small JSON documents elsewhere, applied here to encoding a small
// one.

package diag

import "github.com/sugawarayuuta/sonnet"

// ExportJSON renders a Snapshot as a single JSON object.
func ExportJSON(s Snapshot) ([]byte, error) {
	return sonnet.Marshal(s)
}

// ExportJSONBatch renders a slice of snapshots as a JSON array, e.g. for a
// rolling health-history dump.
func ExportJSONBatch(snapshots []Snapshot) ([]byte, error) {
	return sonnet.Marshal(snapshots)
}
