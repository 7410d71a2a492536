package completion

import (
	"context"
	"errors"
	"time"

	"productif-agent/internal/intent"
	"productif-agent/pkg/circuitbreaker"
	"productif-agent/pkg/metrics"
	"productif-agent/pkg/util"
)

// Guarded wraps a remote completer with a circuit breaker and latency metrics.
// While the breaker is open calls fail fast and the classifier falls back to
// Chat without waiting for the timeout.
type Guarded struct {
	provider string
	inner    intent.Completer
	breaker  *circuitbreaker.Breaker
}

func NewGuarded(provider string, inner intent.Completer, cfg circuitbreaker.Config) *Guarded {
	return &Guarded{provider: provider, inner: inner, breaker: circuitbreaker.New(cfg)}
}

func (g *Guarded) Complete(ctx context.Context, text string) (string, error) {
	var label string
	start := time.Now()
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		label, err = g.inner.Complete(ctx, text)
		return err
	})

	status := util.ClassifyError(err)
	if errors.Is(err, circuitbreaker.ErrOpen) {
		status = "breaker_open"
	}
	metrics.RecordCompleterLatency(g.provider, status, time.Since(start))
	return label, err
}

func (g *Guarded) State() circuitbreaker.State {
	return g.breaker.State()
}
