// Package sim is an in-memory J1939 bus answering requests from a vehicle
// description. It is used by tests and by the command line tool when no
// adapter is attached.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/dm"
)

var ErrBusFailure = errors.New("simulated bus failure")

type request struct {
	pgn   j1939.PGN
	dest  j1939.Address
	reply chan reply
}

type reply struct {
	msgs []j1939.Message
	err  error
}

type attemptKey struct {
	addr j1939.Address
	pgn  j1939.PGN
}

// Bus implements j1939.Transport
type Bus struct {
	vehicle *Vehicle
	log     *zap.Logger

	reqChan chan request

	closeOnce sync.Once
	closeChan chan struct{}
	wg        sync.WaitGroup

	// only touched by the responder goroutine
	attempts map[attemptKey]int

	mu       sync.Mutex
	requests int
}

func New(v *Vehicle, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		vehicle:   v,
		log:       log,
		reqChan:   make(chan request),
		closeChan: make(chan struct{}),
		attempts:  make(map[attemptKey]int),
	}
}

// Open starts the responder, it stops when ctx is done or Close is called
func (b *Bus) Open(ctx context.Context) error {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.respondManager(ctx)
	}()
	return nil
}

func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		close(b.closeChan)
	})
	b.wg.Wait()
	return nil
}

// Requests returns the number of requests sent so far
func (b *Bus) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *Bus) Request(ctx context.Context, pgn j1939.PGN, dest j1939.Address) ([]j1939.Message, error) {
	req := request{pgn: pgn, dest: dest, reply: make(chan reply, 1)}
	select {
	case b.reqChan <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.closeChan:
		return nil, j1939.ErrTransportClosed
	}
	b.mu.Lock()
	b.requests++
	b.mu.Unlock()
	select {
	case r := <-req.reply:
		return r.msgs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.closeChan:
		return nil, j1939.ErrTransportClosed
	}
}

func (b *Bus) respondManager(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.closeChan:
			return
		case req := <-b.reqChan:
			msgs, err := b.answer(req.pgn, req.dest)
			req.reply <- reply{msgs: msgs, err: err}
		}
	}
}

// answer builds the messages every module sends for one request, lowest address first
func (b *Bus) answer(pgn j1939.PGN, dest j1939.Address) ([]j1939.Message, error) {
	modules := append([]Module(nil), b.vehicle.Modules...)
	sort.Slice(modules, func(i, j int) bool { return modules[i].Address < modules[j].Address })

	var out []j1939.Message
	for _, m := range modules {
		addr := j1939.Address(m.Address)
		if dest != j1939.GlobalAddress && dest != addr {
			continue
		}
		resp, ok := m.find(pgn)
		if !ok {
			// modules NACK DS requests for PGNs they do not support
			if dest == addr {
				out = append(out, nack(addr, pgn, j1939.ControlNACK))
			}
			continue
		}
		mode := resp.Global
		ds := dest != j1939.GlobalAddress
		if ds {
			mode = resp.DS
			key := attemptKey{addr: addr, pgn: pgn}
			b.attempts[key]++
			if b.attempts[key] <= resp.SilentAttempts {
				b.log.Debug("staying silent", zap.Stringer("address", addr), zap.Stringer("pgn", pgn), zap.Int("attempt", b.attempts[key]))
				continue
			}
		}
		switch mode {
		case Silent:
		case Fail:
			return nil, j1939.Unrecoverable(fmt.Errorf("%w: %s request to %s", ErrBusFailure, pgn.Name(), addr))
		case Nack, Busy, Denied:
			out = append(out, nack(addr, pgn, mode.control()))
		default:
			data, err := resp.payload(ds)
			if err != nil {
				return nil, err
			}
			msg, err := dm.Decode(pgn, addr, data)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m Module) find(pgn j1939.PGN) (Response, bool) {
	for _, r := range m.Responses {
		if j1939.PGN(r.PGN) == pgn {
			return r, true
		}
	}
	return Response{}, false
}

func nack(from j1939.Address, pgn j1939.PGN, control j1939.AckControl) *j1939.Acknowledgment {
	return &j1939.Acknowledgment{
		From:         from,
		Control:      control,
		Requester:    j1939.ToolAddress,
		Acknowledged: pgn,
	}
}
