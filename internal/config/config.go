// Package config loads holdemd configuration from HCL, fills defaults, and
// validates it before anything starts listening or opening stores.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete holdemd configuration.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Store  *StoreSettings  `hcl:"store,block"`
	Kafka  *KafkaSettings  `hcl:"kafka,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains listener-level configuration.
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	TurnGraceMS     int64  `hcl:"turn_grace_ms,optional"`
	SweepIntervalMS int64  `hcl:"sweep_interval_ms,optional"`
}

// StoreSettings selects the SQL backend. Driver is inferred from the DSN
// when left empty.
type StoreSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// KafkaSettings configures the optional event tap. The tap runs only when
// the kafka block is present.
type KafkaSettings struct {
	Brokers []string `hcl:"brokers"`
	Topic   string   `hcl:"topic,optional"`
}

// TableConfig defines one table holdemd hosts.
type TableConfig struct {
	Name          string `hcl:"name,label"`
	SmallBlind    int64  `hcl:"small_blind"`
	BigBlind      int64  `hcl:"big_blind"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	BuyInMin      int64  `hcl:"buy_in_min,optional"`
	BuyInMax      int64  `hcl:"buy_in_max,optional"`
	TurnTimeoutMS int64  `hcl:"turn_timeout_ms,optional"`
	Private       bool   `hcl:"private,optional"`
	InviteCode    string `hcl:"invite_code,optional"`
}

// Default returns the configuration used when no file is given: one public
// 6-max table on a local sqlite store.
func Default() *Config {
	cfg := &Config{
		Tables: []TableConfig{
			{Name: "main", SmallBlind: 5, BigBlind: 10},
		},
	}
	cfg.normalize()
	return cfg
}

// Load reads an HCL configuration file. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.normalize()
	return &cfg, nil
}

// normalize fills defaults for anything the file left out.
func (c *Config) normalize() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.TurnGraceMS == 0 {
		c.Server.TurnGraceMS = 1000
	}
	if c.Server.SweepIntervalMS == 0 {
		c.Server.SweepIntervalMS = 1000
	}

	if c.Store == nil {
		c.Store = &StoreSettings{}
	}
	if c.Store.DSN == "" {
		c.Store.DSN = "holdemd.db"
	}

	if c.Kafka != nil && c.Kafka.Topic == "" {
		c.Kafka.Topic = "holdem.events"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = 6
		}
		if t.BuyInMin == 0 {
			t.BuyInMin = t.BigBlind * 50 // 50 big blinds minimum
		}
		if t.BuyInMax == 0 {
			t.BuyInMax = t.BigBlind * 500 // 500 big blinds maximum
		}
		if t.TurnTimeoutMS == 0 {
			t.TurnTimeoutMS = 30000
		}
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.TurnGraceMS < 0 {
		return fmt.Errorf("turn grace must not be negative: %d", c.Server.TurnGraceMS)
	}
	if c.Server.SweepIntervalMS <= 0 {
		return fmt.Errorf("sweep interval must be positive: %d", c.Server.SweepIntervalMS)
	}

	if c.Kafka != nil && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka block needs at least one broker")
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("duplicate table name: %s", t.Name)
		}
		seen[t.Name] = true

		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind <= t.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", t.Name)
		}
		if t.MaxPlayers < 2 || t.MaxPlayers > 10 {
			return fmt.Errorf("table %s: max players must be between 2 and 10", t.Name)
		}
		if t.BuyInMin >= t.BuyInMax {
			return fmt.Errorf("table %s: buy-in minimum must be less than maximum", t.Name)
		}
		if t.BuyInMin < t.BigBlind {
			return fmt.Errorf("table %s: buy-in minimum must cover the big blind", t.Name)
		}
		if t.TurnTimeoutMS <= 0 {
			return fmt.Errorf("table %s: turn timeout must be positive", t.Name)
		}
		if t.InviteCode != "" && !t.Private {
			return fmt.Errorf("table %s: invite code requires private = true", t.Name)
		}
	}
	return nil
}

// ListenAddr returns the host:port the HTTP listener binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Table returns a table's configuration by name, or nil when unknown.
func (c *Config) Table(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// KafkaEnabled reports whether the event tap should run.
func (c *Config) KafkaEnabled() bool {
	return c.Kafka != nil && len(c.Kafka.Brokers) > 0
}
