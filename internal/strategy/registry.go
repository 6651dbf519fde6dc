package strategy

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-runner/internal/randutil"
	"github.com/lox/holdem-runner/internal/runner"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Options tunes the strategies that use them.
type Options struct {
	// Seed fixes the random source. Zero seeds from the clock.
	Seed uint64

	// Samples is the number of simulated deals per decision for strength.
	Samples int

	// RaiseAmount is simple's opening raise.
	RaiseAmount int

	Logger *log.Logger
}

func (o Options) rng() *rand.Rand {
	return randutil.New(o.Seed)
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default().WithPrefix("strategy")
	}
	return o.Logger
}

var registry = map[string]func(Options) runner.Strategy{
	"simple":          func(o Options) runner.Strategy { return NewSimple(o) },
	"calling-station": func(Options) runner.Strategy { return &CallingStation{} },
	"random":          func(o Options) runner.Strategy { return NewRandom(o) },
	"strength":        func(o Options) runner.Strategy { return NewStrength(o) },
}

// Default is the strategy used when none is named.
const Default = "simple"

// New builds the named strategy.
func New(name string, opts Options) (runner.Strategy, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownStrategy, name, Names())
	}
	return build(opts), nil
}

// Names lists the registered strategies in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
