package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-runner/cmd/holdem-runner/shared"
	"github.com/lox/holdem-runner/internal/config"
	"github.com/lox/holdem-runner/internal/results"
	"github.com/lox/holdem-runner/internal/runid"
	"github.com/lox/holdem-runner/internal/runner"
	"github.com/lox/holdem-runner/internal/strategy"
	"github.com/lox/holdem-runner/internal/transport"
	"github.com/lox/holdem-runner/internal/tui"
)

type RunCmd struct {
	Config  string `short:"c" help:"Path to HCL configuration file" default:"holdem-runner.hcl" type:"path"`
	EnvFile string `help:"Path to a .env file" default:".env" type:"path"`

	Host   string `help:"Server hostname or IP address"`
	Port   int    `help:"Server port"`
	Server string `short:"s" help:"Server address, overrides host and port (host:port, tcp://, ws:// or wss://)"`

	Continuous bool   `help:"Keep playing games until the server disconnects"`
	Games      int    `short:"n" help:"Stop after this many games (implies --continuous)"`
	Strategy   string `help:"Decision strategy (${strategies})"`
	Seed       uint64 `help:"Random seed for strategies that use one"`
	StartMoney int    `help:"Starting money"`

	DecisionTimeout time.Duration `help:"Fold when the strategy takes longer than this to decide (0 disables)"`

	ResultFile  string `help:"File game results are appended to"`
	DatabaseURL string `help:"Also record results in this Postgres database"`

	LogLevel string `help:"Log level (debug|info|warn|error)"`
	LogFile  string `help:"Log file path"`
	LogJSON  bool   `help:"Output JSON logs"`
	Progress bool   `short:"p" help:"Show a live progress display instead of console logs"`
}

// resolve layers the config file, environment and flags.
func (c *RunCmd) resolve() (*config.Config, error) {
	if err := config.LoadDotEnv(c.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if c.Host != "" {
		cfg.Server.Host = c.Host
		cfg.Server.Address = ""
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
		cfg.Server.Address = ""
	}
	if c.Server != "" {
		cfg.Server.Address = c.Server
	}
	if c.Continuous {
		cfg.Session.Continuous = true
	}
	if c.Games != 0 {
		cfg.Session.Continuous = true
		cfg.Session.Games = c.Games
	}
	if c.Strategy != "" {
		cfg.Player.Strategy = c.Strategy
	}
	if c.Seed != 0 {
		cfg.Player.Seed = c.Seed
	}
	if c.StartMoney != 0 {
		cfg.Player.StartMoney = c.StartMoney
	}
	if c.DecisionTimeout != 0 {
		cfg.Player.DecisionTimeout = c.DecisionTimeout
	}
	if c.ResultFile != "" {
		cfg.Results.File = c.ResultFile
	}
	if c.DatabaseURL != "" {
		cfg.Results.DatabaseURL = c.DatabaseURL
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.Logging.File = c.LogFile
	}
	if c.LogJSON {
		cfg.Logging.JSON = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *RunCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}

	var console io.Writer = os.Stderr
	if c.Progress {
		console = nil
	}
	logger, closeLog, err := shared.SetupLogger(cfg.Logging, console)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := shared.SetupSignalHandler(context.Background(), logger)
	defer cancel()

	logger.Info("Starting holdem runner",
		"server", cfg.ServerAddress(),
		"strategy", cfg.Player.Strategy,
		"continuous", cfg.Session.Continuous,
		"games", cfg.Session.Games,
		"results", cfg.Results.File)

	sink, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("Failed to close result sinks", "error", err)
		}
	}()

	opts := cfg.StrategyOptions()
	opts.Logger = logger.WithPrefix("strategy")
	strat, err := strategy.New(cfg.Player.Strategy, opts)
	if err != nil {
		return err
	}

	conn, err := transport.Dial(ctx, cfg.ServerAddress(), cfg.Server.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.ServerAddress(), err)
	}
	logger.Info("Connected", "server", cfg.ServerAddress())

	engineOpts := []runner.Option{
		runner.WithLogger(logger.WithPrefix("engine")),
		runner.WithResultSink(sink),
		runner.WithStartMoney(cfg.Player.StartMoney),
		runner.WithDecisionTimeout(cfg.Player.DecisionTimeout),
	}
	if cfg.Session.Continuous {
		engineOpts = append(engineOpts, runner.WithContinuous(cfg.Session.Games))
	}

	if !c.Progress {
		return runner.New(conn, strat, engineOpts...).Run(ctx)
	}

	maxGames := cfg.Session.Games
	if !cfg.Session.Continuous {
		maxGames = 1
	}
	program := tea.NewProgram(tui.NewModel(maxGames, cancel), tea.WithContext(ctx))
	engineOpts = append(engineOpts, runner.WithObserver(tui.ProgramObserver{Sender: program}))
	engine := runner.New(conn, strat, engineOpts...)

	runErr := make(chan error, 1)
	go func() {
		err := engine.Run(ctx)
		program.Send(tui.DoneMsg{Err: err})
		runErr <- err
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Warn("Progress display failed", "error", err)
	}
	cancel()
	return <-runErr
}

// openSinks opens the result file sink and, when configured, the Postgres
// sink.
func openSinks(ctx context.Context, cfg *config.Config, logger *log.Logger) (results.Sink, error) {
	sinks := results.Multi{results.NewFileSink(cfg.Results.File)}
	if cfg.Results.DatabaseURL == "" {
		return sinks, nil
	}

	runID, err := runid.New()
	if err != nil {
		return nil, err
	}
	pg, err := results.OpenPostgres(ctx, cfg.Results.DatabaseURL, runID)
	if err != nil {
		return nil, err
	}
	logger.Info("Recording results to Postgres", "run", runID)
	return append(sinks, pg), nil
}
