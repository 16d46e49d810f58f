package j1939

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

const (
	// DefaultAttempts is the number of times a DS request is sent before it resolves to NoResponse
	DefaultAttempts = 3
)

type RequesterOpt func(r *Requester)

func OptAttempts(n uint) RequesterOpt {
	return func(r *Requester) {
		if n == 0 {
			n = 1
		}
		r.attempts = n
	}
}

func OptRetryDelay(d time.Duration) RequesterOpt {
	return func(r *Requester) {
		r.retryDelay = d
	}
}

func OptLogger(l *zap.Logger) RequesterOpt {
	return func(r *Requester) {
		r.log = l
	}
}

// Requester implements Querier on top of a Transport. Unanswered DS requests
// are retried, a request that never gets an answer is a NoResponse outcome.
type Requester struct {
	t          Transport
	attempts   uint
	retryDelay time.Duration
	log        *zap.Logger
}

func NewRequester(t Transport, opts ...RequesterOpt) (*Requester, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	r := &Requester{
		t:        t,
		attempts: DefaultAttempts,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Requester) QueryGlobal(ctx context.Context, pgn PGN) (GlobalQueryResult[Message], error) {
	msgs, err := r.t.Request(ctx, pgn, GlobalAddress)
	if err != nil {
		return GlobalQueryResult[Message]{}, err
	}
	res := splitGlobal(pgn, msgs)
	r.log.Debug("global request",
		zap.Stringer("pgn", pgn),
		zap.Int("packets", len(res.Packets)),
		zap.Int("nacks", len(res.Acks)),
	)
	return res, nil
}

func (r *Requester) QueryOne(ctx context.Context, pgn PGN, addr Address) (QueryOutcome[Message], error) {
	var (
		out          QueryOutcome[Message]
		transportErr error
		attempt      uint
	)
	err := retry.Do(
		func() error {
			attempt++
			msgs, err := r.t.Request(ctx, pgn, addr)
			if err != nil {
				transportErr = err
				return err
			}
			out = pickDS(pgn, addr, msgs)
			if out.Result == NoResponse {
				return errNoResponse
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errNoResponse)
		}),
		retry.OnRetry(func(n uint, err error) {
			// also called after the last attempt, when nothing is sent anymore
			if n+1 >= r.attempts {
				return
			}
			r.log.Debug("retrying DS request", zap.Stringer("pgn", pgn), zap.Stringer("address", addr), zap.Uint("attempt", n+2))
		}),
	)
	if transportErr != nil {
		return QueryOutcome[Message]{}, transportErr
	}
	if err != nil && !errors.Is(err, errNoResponse) {
		return QueryOutcome[Message]{}, err
	}
	out.Retried = attempt > 1
	r.log.Debug("DS request", zap.Stringer("pgn", pgn), zap.Stringer("address", addr), zap.Stringer("result", out.Result), zap.Bool("retried", out.Retried))
	return out, nil
}

// splitGlobal keeps the first positive answer per address and the NACKs of
// addresses that did not answer positively.
func splitGlobal(pgn PGN, msgs []Message) GlobalQueryResult[Message] {
	var res GlobalQueryResult[Message]
	seen := make(map[Address]bool)
	for _, m := range msgs {
		if m.PGN() != pgn || seen[m.Source()] {
			continue
		}
		seen[m.Source()] = true
		res.Packets = append(res.Packets, m)
	}
	nacked := make(map[Address]bool)
	for _, m := range msgs {
		ack, ok := m.(*Acknowledgment)
		if !ok || ack.Acknowledged != pgn || !ack.Control.Negative() {
			continue
		}
		if seen[ack.From] || nacked[ack.From] {
			continue
		}
		nacked[ack.From] = true
		res.Acks = append(res.Acks, ack)
	}
	return res
}

func pickDS(pgn PGN, addr Address, msgs []Message) QueryOutcome[Message] {
	var nack *Acknowledgment
	for _, m := range msgs {
		if m.Source() != addr {
			continue
		}
		if m.PGN() == pgn {
			return PositiveOutcome(m)
		}
		if ack, ok := m.(*Acknowledgment); ok && nack == nil && ack.Acknowledged == pgn && ack.Control.Negative() {
			nack = ack
		}
	}
	if nack != nil {
		return NackOutcome[Message](nack)
	}
	return NoResponseOutcome[Message]()
}
