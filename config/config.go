// Package config reads the TOML configuration shared by the ballot server and
// client.
package config

import (
	"encoding/hex"

	"github.com/BurntSushi/toml"
	"github.com/dedis/ballot/core"
	"golang.org/x/xerrors"
)

// DefaultBucket is the bbolt bucket the enclave keeps its state in.
const DefaultBucket = "ballot"

// Config is the content of a ballot.toml file.
type Config struct {
	Enclave Enclave
	Client  Client
}

// Enclave configures the contract host.
type Enclave struct {
	// StateKey is the store key of the poll.
	StateKey string
	// Bucket is the name of the bbolt bucket holding the state.
	Bucket string
	// SealKey is a hex-encoded 32-byte key. When set, the state is sealed
	// with ChaCha20-Poly1305 before it reaches the database.
	SealKey string
}

// Client configures the command line client.
type Client struct {
	// Roster is the group TOML file of the hosting servers.
	Roster string
	// KeyFile holds the caller's private key in hex.
	KeyFile string
	// DB is a bbolt file to inspect offline.
	DB string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Enclave: Enclave{StateKey: core.DefaultStateKey, Bucket: DefaultBucket}}
}

// Load reads the file at path, fills in defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, xerrors.Errorf("reading config %s: %v", path, err)
	}
	return cfg, cfg.check()
}

// Parse is Load for an in-memory document.
func Parse(doc string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(doc, cfg); err != nil {
		return nil, xerrors.Errorf("parsing config: %v", err)
	}
	return cfg, cfg.check()
}

func (c *Config) check() error {
	if c.Enclave.StateKey == "" {
		c.Enclave.StateKey = core.DefaultStateKey
	}
	if c.Enclave.Bucket == "" {
		c.Enclave.Bucket = DefaultBucket
	}
	if _, err := c.Enclave.SealKeyBytes(); err != nil {
		return err
	}
	return nil
}

// SealKeyBytes decodes SealKey. It returns nil when sealing is disabled.
func (e Enclave) SealKeyBytes() ([]byte, error) {
	if e.SealKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(e.SealKey)
	if err != nil {
		return nil, xerrors.Errorf("seal key is not hex: %v", err)
	}
	if len(key) != 32 {
		return nil, xerrors.Errorf("seal key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
