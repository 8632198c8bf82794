// config.go — JSON configuration for the sample collector demo binary,
// decoded with sonnet the way syncharvester.go decodes its JSON-RPC
// responses elsewhere in this codebase's ancestry.

package main

import (
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"
)

// Config controls the demo binary's pool sizing and background cadences.
type Config struct {
	// SlotLen is the number of records B per pool slot.
	SlotLen int `json:"slot_len"`

	// SlotCount is the number of slots N in the pool; must be a power of
	// two greater than one.
	SlotCount int `json:"slot_count"`

	// ProducerIntervalMicros is the delay between synthetic samples the
	// demo producer captures.
	ProducerIntervalMicros int `json:"producer_interval_micros"`

	// DiagIntervalMs is the delay between diagnostics snapshots.
	DiagIntervalMs int `json:"diag_interval_ms"`

	// DiagDBPath is where the sqlite health-history store is opened.
	DiagDBPath string `json:"diag_db_path"`

	// CollectorCore, if >= 0, pins the collector goroutine to that core.
	CollectorCore int `json:"collector_core"`

	// FlushQueueCapacity sizes the background flush worker's hand-off
	// queue; must be a power of two.
	FlushQueueCapacity int `json:"flush_queue_capacity"`
}

// defaultConfig mirrors what a fresh checkout should run with no config
// file present.
func defaultConfig() Config {
	return Config{
		SlotLen:                8,
		SlotCount:              1024,
		ProducerIntervalMicros: 200,
		DiagIntervalMs:         1000,
		DiagDBPath:             "samplecollector_health.db",
		CollectorCore:          -1,
		FlushQueueCapacity:     256,
	}
}

// loadConfig reads and decodes a Config from path, falling back to
// defaultConfig if path does not exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
