package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the process configuration, populated from the environment.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Stores hosted by this process. Each gets its own node, inventory and
	// route prefix; they share one account ledger.
	Stores []string `envconfig:"STORES" default:"QC,ON,BC"`

	// PeerURLs maps store codes served by other processes to their base URLs,
	// e.g. PEER_URLS="BC:http://bc-host:8080".
	PeerURLs map[string]string `envconfig:"PEER_URLS"`

	// PeerTimeout bounds every cross-store call.
	PeerTimeout time.Duration `envconfig:"PEER_TIMEOUT" default:"5s"`

	// LookupFanout caps how many peer stores a findItem queries concurrently.
	LookupFanout int `envconfig:"LOOKUP_FANOUT" default:"4"`

	// SeedFile optionally points at a JSON file of initial inventory.
	SeedFile string `envconfig:"SEED_FILE"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
