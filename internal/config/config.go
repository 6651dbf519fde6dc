// Package config loads runner settings from an HCL file, a .env file and the
// environment, in increasing order of precedence. Command line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/holdem-runner/internal/strategy"
)

// Environment variables read by ApplyEnv.
const (
	EnvServer      = "HOLDEM_RUNNER_SERVER"
	EnvContinuous  = "HOLDEM_RUNNER_CONTINUOUS"
	EnvGames       = "HOLDEM_RUNNER_GAMES"
	EnvStrategy    = "HOLDEM_RUNNER_STRATEGY"
	EnvSeed        = "HOLDEM_RUNNER_SEED"
	EnvResultFile  = "HOLDEM_RUNNER_RESULT_FILE"
	EnvLogLevel    = "HOLDEM_RUNNER_LOG_LEVEL"
	EnvDatabaseURL = "DATABASE_URL"
)

const (
	DefaultHost       = "localhost"
	DefaultPort       = 5000
	DefaultStartMoney = 1000
	DefaultLogFile    = "poker_runner.log"
	ResultFileName    = "game_result.log"
)

// dockerEnvPath marks a container; inside one, output goes under /app.
var dockerEnvPath = "/.dockerenv"

// Config is the resolved runner configuration.
type Config struct {
	Server  Server
	Player  Player
	Session Session
	Results Results
	Logging Logging
}

type Server struct {
	Host string
	Port int

	// Address, when set, replaces Host and Port. It may carry a tcp://,
	// ws:// or wss:// scheme.
	Address        string
	ConnectTimeout time.Duration
}

type Player struct {
	Strategy        string
	StartMoney      int
	Seed            uint64
	DecisionTimeout time.Duration
	RaiseAmount     int
	Samples         int
}

// Session selects single-game or continuous play. A positive Games limit
// implies Continuous in every layer.
type Session struct {
	Continuous bool
	Games      int
}

type Results struct {
	File        string
	DatabaseURL string
}

type Logging struct {
	Level string
	File  string
	JSON  bool
}

// fileConfig mirrors the HCL layout. Every block is optional.
type fileConfig struct {
	Server  *serverBlock  `hcl:"server,block"`
	Player  *playerBlock  `hcl:"player,block"`
	Session *sessionBlock `hcl:"session,block"`
	Results *resultsBlock `hcl:"results,block"`
	Logging *loggingBlock `hcl:"logging,block"`
}

type serverBlock struct {
	Host           string `hcl:"host,optional"`
	Port           int    `hcl:"port,optional"`
	Address        string `hcl:"address,optional"`
	ConnectTimeout string `hcl:"connect_timeout,optional"`
}

type playerBlock struct {
	Strategy        string `hcl:"strategy,optional"`
	StartMoney      int    `hcl:"start_money,optional"`
	Seed            int64  `hcl:"seed,optional"`
	DecisionTimeout string `hcl:"decision_timeout,optional"`
	RaiseAmount     int    `hcl:"raise_amount,optional"`
	Samples         int    `hcl:"samples,optional"`
}

type sessionBlock struct {
	Continuous bool `hcl:"continuous,optional"`
	Games      int  `hcl:"games,optional"`
}

type resultsBlock struct {
	File        string `hcl:"file,optional"`
	DatabaseURL string `hcl:"database_url,optional"`
}

type loggingBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: Server{
			Host:           DefaultHost,
			Port:           DefaultPort,
			ConnectTimeout: 10 * time.Second,
		},
		Player: Player{
			Strategy:   strategy.Default,
			StartMoney: DefaultStartMoney,
		},
		Results: Results{
			File: DefaultResultFile(),
		},
		Logging: Logging{
			Level: "info",
			File:  DefaultLogFile,
		},
	}
}

// OutputDir is where results are written by default.
func OutputDir() string {
	if _, err := os.Stat(dockerEnvPath); err == nil {
		return "/app/output"
	}
	return "output"
}

func DefaultResultFile() string {
	return filepath.Join(OutputDir(), ResultFileName)
}

// Load reads an HCL config file over the defaults. An empty filename or a
// missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := cfg.merge(&fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(fc *fileConfig) error {
	if s := fc.Server; s != nil {
		setString(&c.Server.Host, s.Host)
		setInt(&c.Server.Port, s.Port)
		setString(&c.Server.Address, s.Address)
		if err := setDuration(&c.Server.ConnectTimeout, s.ConnectTimeout, "server.connect_timeout"); err != nil {
			return err
		}
	}
	if p := fc.Player; p != nil {
		setString(&c.Player.Strategy, p.Strategy)
		setInt(&c.Player.StartMoney, p.StartMoney)
		setInt(&c.Player.RaiseAmount, p.RaiseAmount)
		setInt(&c.Player.Samples, p.Samples)
		if p.Seed < 0 {
			return fmt.Errorf("player.seed cannot be negative")
		}
		if p.Seed != 0 {
			c.Player.Seed = uint64(p.Seed)
		}
		if err := setDuration(&c.Player.DecisionTimeout, p.DecisionTimeout, "player.decision_timeout"); err != nil {
			return err
		}
	}
	if s := fc.Session; s != nil {
		c.Session.Continuous = s.Continuous || s.Games > 0
		setInt(&c.Session.Games, s.Games)
	}
	if r := fc.Results; r != nil {
		setString(&c.Results.File, r.File)
		setString(&c.Results.DatabaseURL, r.DatabaseURL)
	}
	if l := fc.Logging; l != nil {
		setString(&c.Logging.Level, l.Level)
		setString(&c.Logging.File, l.File)
		c.Logging.JSON = l.JSON
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, name string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides the configuration from environment variables, read
// through lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := lookup(EnvContinuous); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvContinuous, err)
		}
		c.Session.Continuous = b
	}
	if v, ok := lookup(EnvGames); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvGames, err)
		}
		c.Session.Games = n
		if n > 0 {
			c.Session.Continuous = true
		}
	}
	if v, ok := lookup(EnvStrategy); ok && v != "" {
		c.Player.Strategy = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Player.Seed = seed
	}
	if v, ok := lookup(EnvResultFile); ok && v != "" {
		c.Results.File = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Results.DatabaseURL = v
	}
	return nil
}

// ServerAddress is the address to dial.
func (c *Config) ServerAddress() string {
	if c.Server.Address != "" {
		return c.Server.Address
	}
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		if c.Server.Host == "" {
			return fmt.Errorf("server host is required")
		}
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
	}
	if c.Server.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout cannot be negative")
	}
	if c.Player.StartMoney <= 0 {
		return fmt.Errorf("start money must be positive")
	}
	if c.Player.DecisionTimeout < 0 {
		return fmt.Errorf("decision timeout cannot be negative")
	}
	if !slices.Contains(strategy.Names(), c.Player.Strategy) {
		return fmt.Errorf("unknown strategy %q (have %s)", c.Player.Strategy, strings.Join(strategy.Names(), ", "))
	}
	if c.Session.Games < 0 {
		return fmt.Errorf("games cannot be negative")
	}
	if c.Results.File == "" {
		return fmt.Errorf("result file is required")
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// StrategyOptions returns the options for building the configured strategy.
func (c *Config) StrategyOptions() strategy.Options {
	return strategy.Options{
		Seed:        c.Player.Seed,
		Samples:     c.Player.Samples,
		RaiseAmount: c.Player.RaiseAmount,
	}
}
