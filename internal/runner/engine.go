// Package runner drives one player through a session with the game server:
// it reads protocol messages, keeps the round, blind and bankroll state up to
// date, asks the strategy for decisions and records finished games.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/protocol"
	"github.com/lox/holdem-runner/internal/results"
	"github.com/lox/holdem-runner/internal/transport"
)

// DefaultStartMoney is the stake a player starts a session with.
const DefaultStartMoney = 1000

var (
	ErrDecisionTimeout = errors.New("strategy did not decide in time")
	ErrStrategyPanic   = errors.New("strategy panicked")
)

// ResultSink receives finished games and the closing summary of a
// continuous run. results.Sink satisfies it.
type ResultSink interface {
	RecordGame(ctx context.Context, rec results.GameRecord) error
	RecordSummary(ctx context.Context, sum results.Summary) error
}

type handlerFunc func(ctx context.Context, msg protocol.Message) error

// Engine is the protocol engine for a single connection. It is not reusable:
// create a new Engine for each connection.
type Engine struct {
	conn     transport.Conn
	strategy Strategy
	logger   *log.Logger
	sink     ResultSink
	observer Observer
	clock    quartz.Clock

	startMoney      int
	continuous      bool
	maxGames        int
	decisionTimeout time.Duration

	handlers map[protocol.Kind]handlerFunc

	mu        sync.Mutex
	state     State
	playerID  protocol.PlayerID
	round     *game.RoundState
	bankroll  *game.Bankroll
	blind     game.BlindState
	stats     game.SessionStats
	gameRound int
	done      bool

	// inflight is closed when a GetAction call that outlived its timeout
	// returns. Until then the strategy is not called again.
	inflight chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithResultSink(sink ResultSink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithStartMoney(money int) Option {
	return func(e *Engine) { e.startMoney = money }
}

// WithContinuous keeps the connection open after each game. A positive
// maxGames stops the run once that many games have finished.
func WithContinuous(maxGames int) Option {
	return func(e *Engine) {
		e.continuous = true
		e.maxGames = maxGames
	}
}

// WithDecisionTimeout folds when the strategy takes longer than d to decide.
// Zero waits forever.
func WithDecisionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.decisionTimeout = d }
}

func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// New creates an engine reading from conn and deciding with strategy.
func New(conn transport.Conn, strategy Strategy, opts ...Option) *Engine {
	e := &Engine{
		conn:       conn,
		strategy:   strategy,
		logger:     log.Default(),
		clock:      quartz.NewReal(),
		startMoney: DefaultStartMoney,
		state:      StateDisconnected,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.bankroll = game.NewBankroll(e.startMoney)

	e.handlers = map[protocol.Kind]handlerFunc{
		protocol.KindConnect:       e.handleConnect,
		protocol.KindGameStart:     e.handleGameStart,
		protocol.KindGameState:     e.handleGameState,
		protocol.KindRoundStart:    e.handleRoundStart,
		protocol.KindRequestAction: e.handleRequestAction,
		protocol.KindRoundEnd:      e.handleRoundEnd,
		protocol.KindGameEnd:       e.handleGameEnd,
		protocol.KindText:          e.handleText,
	}
	return e
}

// Run processes messages until the server closes the connection, the game
// (or game limit) is over, or ctx is cancelled. The connection is always
// closed when Run returns. Only read failures are reported as errors.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.state = StateConnected
	e.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error {
		defer cancel()
		return e.receive(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		_ = e.conn.Close()
		return nil
	})
	err := g.Wait()

	e.finish(context.WithoutCancel(ctx))
	return err
}

func (e *Engine) receive(ctx context.Context) error {
	for {
		if e.stopped() {
			return nil
		}

		line, err := e.conn.ReadLine()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				e.logger.Info("Run cancelled")
				return nil
			case e.stopped():
				return nil
			case errors.Is(err, io.EOF):
				e.logger.Info("Server closed connection")
				return nil
			}
			e.logger.Error("Read failed", "error", err)
			return fmt.Errorf("read message: %w", err)
		}

		e.handleLine(ctx, line)
	}
}

func (e *Engine) stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// handleLine decodes and dispatches one line. Nothing a single line contains
// can end the run.
func (e *Engine) handleLine(ctx context.Context, line []byte) {
	msg, err := protocol.Decode(line)
	if errors.Is(err, protocol.ErrEmptyLine) {
		return
	}
	if err != nil {
		e.logger.Error("Discarding message", "error", err, "line", string(line))
		return
	}

	handler, ok := e.handlers[msg.Kind]
	if !ok {
		e.logger.Warn("No handler for message type", "kind", msg.Kind)
		return
	}

	e.logger.Debug("Received message", "kind", msg.Kind)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := handler(ctx, msg); err != nil {
		e.logger.Error("Failed to handle message", "kind", msg.Kind, "error", err)
	}
}

func (e *Engine) expectState(kind protocol.Kind, allowed ...State) {
	for _, s := range allowed {
		if e.state == s {
			return
		}
	}
	e.logger.Warn("Unexpected message for state", "kind", kind, "state", e.state)
}

func (e *Engine) handleConnect(_ context.Context, msg protocol.Message) error {
	id, err := msg.ConnectID()
	if err != nil {
		return err
	}
	e.expectState(msg.Kind, StateConnected, StateDisconnected)

	e.playerID = id
	e.logger = e.logger.With("player", string(id))
	e.guard("SetID", func() error {
		e.strategy.SetID(id)
		return nil
	})
	e.state = StateAwaitingGame
	e.logger.Info("Connected to server")
	return nil
}

func (e *Engine) handleGameStart(_ context.Context, msg protocol.Message) error {
	start, err := msg.GameStart()
	if err != nil {
		return err
	}
	e.expectState(msg.Kind, StateAwaitingGame, StateConnected)

	small, big := start.BlindRoles(e.playerID)
	e.blind.Assign(start.BlindAmount, small, big)
	e.gameRound = 0
	e.state = StateAwaitingRoundStart

	e.logger.Info("Game started",
		"game", e.stats.GamesPlayed+1,
		"hands", start.Hands,
		"blind", start.BlindAmount,
		"small_blind", small,
		"big_blind", big,
		"money", e.bankroll.Current())

	e.guard("OnGameStart", func() error {
		return e.strategy.OnGameStart(GameStart{
			StartingMoney:    e.bankroll.Current(),
			Hands:            start.Hands,
			BlindAmount:      start.BlindAmount,
			BigBlindPlayer:   start.BigBlindPlayerID,
			SmallBlindPlayer: start.SmallBlindPlayerID,
			Players:          start.AllPlayers,
		})
	})
	return nil
}

func (e *Engine) handleGameState(_ context.Context, msg protocol.Message) error {
	gs, err := msg.GameState()
	if err != nil {
		return err
	}

	e.round = game.NewRoundState(gs)
	if money, ok := e.round.ServerMoney(e.playerID); ok {
		before := e.bankroll.Current()
		if e.bankroll.Reconcile(money) {
			e.logger.Info("Adopted server money", "local", before, "server", money, "delta", e.bankroll.Delta())
		}
	}
	e.logger.Debug("Round state updated",
		"round", e.round.Round,
		"pot", e.round.Pot,
		"current_bet", e.round.CurrentBet,
		"board", e.round.CommunityCards)
	return nil
}

func (e *Engine) handleRoundStart(_ context.Context, msg protocol.Message) error {
	e.expectState(msg.Kind, StateAwaitingRoundStart, StateRoundEnded)

	e.gameRound++
	e.state = StateInRound
	if e.round == nil {
		e.logger.Warn("Round started without round state", "round", e.gameRound)
		return nil
	}

	round, money := e.round, e.bankroll.Current()
	e.guard("OnRoundStart", func() error { return e.strategy.OnRoundStart(round, money) })
	return nil
}

func (e *Engine) handleRequestAction(ctx context.Context, msg protocol.Message) error {
	e.expectState(msg.Kind, StateInRound)
	e.state = StateAwaitingAction
	defer func() { e.state = StateInRound }()

	if blind, owed := e.blind.Owed(); owed {
		e.logger.Info("Posting blind", "amount", blind.Amount, "small", e.blind.IsSmallBlind)
		if err := e.send(blind); err != nil {
			return err
		}
		e.blind.MarkPosted()
		return nil
	}

	if e.round == nil {
		return game.ErrNoRoundState
	}

	decision := e.decide(ctx)
	toSend, err := game.Validate(decision, e.round, e.playerID, e.bankroll.Current())
	if err != nil {
		e.logger.Warn("Rejected decision, folding", "decision", decision, "reason", err)
	}
	return e.send(toSend)
}

func (e *Engine) handleRoundEnd(_ context.Context, msg protocol.Message) error {
	e.expectState(msg.Kind, StateInRound)
	e.state = StateRoundEnded
	if e.round == nil {
		return nil
	}

	round, money := e.round, e.bankroll.Current()
	e.guard("OnRoundEnd", func() error { return e.strategy.OnRoundEnd(round, money) })
	return nil
}

func (e *Engine) handleGameEnd(ctx context.Context, msg protocol.Message) error {
	end, err := msg.GameEnd()
	if err != nil {
		return err
	}
	e.expectState(msg.Kind, StateInRound, StateRoundEnded, StateAwaitingRoundStart)

	e.bankroll.Settle(end.PlayerScore)
	round := e.round
	e.guard("OnGameEnd", func() error {
		return e.strategy.OnGameEnd(round, GameResult{
			PlayerScore:        end.PlayerScore,
			AllScores:          end.AllScores,
			ActivePlayersHands: end.ActivePlayersHands,
		})
	})

	n := e.stats.GamesPlayed + 1
	if e.sink != nil {
		rec := results.GameRecord{
			PlayerID:    e.playerID,
			Game:        n,
			PlayerScore: end.PlayerScore,
			AllScores:   end.AllScores,
		}
		if err := e.sink.RecordGame(ctx, rec); err != nil {
			e.logger.Error("Failed to record game", "game", n, "error", err)
		}
	}
	e.stats.Record(end.PlayerScore)
	e.state = StateGameEnded

	e.logger.Info("Game ended",
		"game", n,
		"score", end.PlayerScore,
		"delta", e.bankroll.Delta(),
		"money", e.bankroll.Current())

	if e.observer != nil {
		e.observer.GameFinished(GameSummary{
			Game:     n,
			Score:    end.PlayerScore,
			Money:    e.bankroll.Current(),
			Stats:    e.stats,
			MaxGames: e.maxGames,
		})
	}

	switch {
	case !e.continuous:
		e.stop()
	case e.maxGames > 0 && e.stats.GamesPlayed >= e.maxGames:
		e.logger.Info("Reached game limit", "games", e.stats.GamesPlayed)
		e.stop()
	default:
		e.resetGame()
		e.state = StateAwaitingGame
	}
	return nil
}

func (e *Engine) handleText(_ context.Context, msg protocol.Message) error {
	e.logger.Info("Server message", "text", msg.Text())
	return nil
}

// resetGame clears per-game state between games of a continuous run. The
// bankroll and session statistics carry over.
func (e *Engine) resetGame() {
	e.round = nil
	e.blind.Reset()
	e.gameRound = 0
}

// stop ends the run after the current message. Called with mu held.
func (e *Engine) stop() {
	e.done = true
	if err := e.conn.Close(); err != nil {
		e.logger.Debug("Close failed", "error", err)
	}
}

// send transmits a decision and books the money it commits.
func (e *Engine) send(d game.Decision) error {
	line, err := protocol.EncodeAction(protocol.PlayerAction{
		PlayerID: e.playerID,
		Action:   d.Kind.Code(),
		Amount:   d.Amount,
	})
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	if err := e.conn.WriteLine(line); err != nil {
		return fmt.Errorf("send action: %w", err)
	}

	switch d.Kind {
	case game.Call, game.Raise, game.AllIn:
		e.bankroll.Spend(d.Amount)
	}
	e.logger.Info("Sent action", "action", d.Kind, "amount", d.Amount, "money", e.bankroll.Current())
	return nil
}

// decide asks the strategy for a decision, folding on error, panic or
// timeout.
func (e *Engine) decide(_ context.Context) game.Decision {
	if e.strategyBusy() {
		e.logger.Warn("Previous decision still running, folding")
		return game.ForcedFold
	}

	round, money := e.round, e.bankroll.Current()
	call := func() (d game.Decision, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
			}
		}()
		return e.strategy.GetAction(round, money)
	}

	var (
		d   game.Decision
		err error
	)
	if e.decisionTimeout <= 0 {
		d, err = call()
	} else {
		d, err = e.callWithTimeout(call)
	}
	if err != nil {
		e.logger.Error("Strategy failed to decide, folding", "error", err)
		return game.ForcedFold
	}
	return d
}

func (e *Engine) callWithTimeout(call func() (game.Decision, error)) (game.Decision, error) {
	type result struct {
		d   game.Decision
		err error
	}
	ch := make(chan result, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		d, err := call()
		ch <- result{d, err}
	}()

	expired := make(chan struct{})
	timer := e.clock.AfterFunc(e.decisionTimeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.d, r.err
	case <-expired:
		e.inflight = done
		return game.Decision{}, fmt.Errorf("%w after %s", ErrDecisionTimeout, e.decisionTimeout)
	}
}

// strategyBusy reports whether a timed-out GetAction is still running.
func (e *Engine) strategyBusy() bool {
	if e.inflight == nil {
		return false
	}
	select {
	case <-e.inflight:
		e.inflight = nil
		return false
	default:
		return true
	}
}

// guard runs a strategy callback, logging errors and recovering panics.
func (e *Engine) guard(name string, fn func() error) {
	if e.strategyBusy() {
		e.logger.Warn("Skipping strategy callback, previous decision still running", "callback", name)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Strategy callback panicked", "callback", name, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		e.logger.Error("Strategy callback failed", "callback", name, "error", err)
	}
}

// finish writes the run summary and logs the session totals.
func (e *Engine) finish(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.InGame() {
		e.logger.Warn("Connection ended mid-game", "state", e.state, "game", e.stats.GamesPlayed+1, "round", e.gameRound)
	}
	e.state = StateDisconnected
	stats := e.stats

	if e.continuous && stats.GamesPlayed > 0 && e.sink != nil {
		sum := results.Summary{PlayerID: e.playerID, Games: stats.GamesPlayed, Total: stats.TotalScore}
		if err := e.sink.RecordSummary(ctx, sum); err != nil {
			e.logger.Error("Failed to record summary", "error", err)
		}
	}

	e.logger.Info("Session finished",
		"games", stats.GamesPlayed,
		"total", stats.TotalScore,
		"average", stats.Average(),
		"delta", e.bankroll.Delta(),
		"money", e.bankroll.Current())
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) PlayerID() protocol.PlayerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playerID
}

// Round returns the last round state received, or nil.
func (e *Engine) Round() *game.RoundState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// Bankroll returns a snapshot of the player's money.
func (e *Engine) Bankroll() game.Bankroll {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.bankroll
}

func (e *Engine) Blind() game.BlindState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blind
}

func (e *Engine) Stats() game.SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
