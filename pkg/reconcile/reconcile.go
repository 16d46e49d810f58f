// Package reconcile implements the global plus destination specific request
// pattern used by nearly every test step. The global answer of every OBD
// module is checked against its DS answer, and modules that stay silent on the
// global request must NACK the DS request.
package reconcile

import (
	"bytes"
	"context"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/registry"
	"github.com/roffe/j1939/pkg/validate"
)

// Clauses are the clause ids reported for each discrepancy. DSNack and
// DSTimeout fall back to Mismatch, Retry is only reported when set.
type Clauses struct {
	// NoResponse is reported when no OBD ECU answered the global request
	NoResponse string
	// Mismatch is reported when the DS answer differs from the global answer
	Mismatch string
	// DSNack is reported when a global responder NACKs the DS request
	DSNack string
	// DSTimeout is reported when a global responder does not answer the DS request
	DSTimeout string
	// MissingNack is reported when a module neither answered the global request nor NACKed the DS request
	MissingNack string
	// Retry is reported as a warning when a DS answer needed a retry
	Retry string
}

func (c Clauses) dsNack() string {
	if c.DSNack != "" {
		return c.DSNack
	}
	return c.Mismatch
}

func (c Clauses) dsTimeout() string {
	if c.DSTimeout != "" {
		return c.DSTimeout
	}
	return c.Mismatch
}

// Reconciler carries what one step needs to run reconciliations
type Reconciler struct {
	q    j1939.Querier
	reg  *registry.Registry
	rep  *ledger.Reporter
	log  *zap.Logger
	opts cmp.Options
}

func New(q j1939.Querier, reg *registry.Registry, rep *ledger.Reporter, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		q:   q,
		reg: reg,
		rep: rep,
		log: log,
		opts: cmp.Options{
			cmpopts.EquateEmpty(),
			// byte fields are reported as a whole, not per element
			cmp.FilterValues(func(x, y []byte) bool { return len(x) > 0 || len(y) > 0 }, cmp.Comparer(bytes.Equal)),
			// a CVN is compared and reported by value
			cmp.Comparer(validate.CVNEqual),
		},
	}
}

func (r *Reconciler) Reporter() *ledger.Reporter   { return r.rep }
func (r *Reconciler) Registry() *registry.Registry { return r.reg }
func (r *Reconciler) Querier() j1939.Querier       { return r.q }

// Result holds both sides of one reconciliation
type Result[T j1939.Message] struct {
	PGN j1939.PGN
	// Global holds every global answer, including modules outside the OBD list
	Global j1939.GlobalQueryResult[T]
	// DS holds the outcome of each DS request that was sent
	DS map[j1939.Address]j1939.QueryOutcome[T]
	// Addresses is the order the DS requests were sent in
	Addresses []j1939.Address
}

// Packets returns the positive DS answers in request order
func (res *Result[T]) Packets() []T {
	var out []T
	for _, addr := range res.Addresses {
		if o := res.DS[addr]; o.Result == j1939.Positive {
			out = append(out, o.Packet)
		}
	}
	return out
}

// GlobalCount is the number of modules that answered the global request
func (res *Result[T]) GlobalCount() int {
	return len(res.Global.Packets)
}

// Run sends the global request for pgn, then one DS request per OBD address
// in ascending order, and reports every discrepancy. Evaluation never stops
// at the first discrepancy. Cancellation is checked before each DS request;
// when it triggers the partial result is returned with the context error.
func Run[T j1939.Message](ctx context.Context, r *Reconciler, pgn j1939.PGN, cl Clauses) (*Result[T], error) {
	res := &Result[T]{
		PGN: pgn,
		DS:  make(map[j1939.Address]j1939.QueryOutcome[T]),
	}

	global, err := Global[T](ctx, r, pgn)
	if err != nil {
		return res, err
	}
	return RunWithGlobal(ctx, r, pgn, global, cl)
}

// Global sends only the global request for pgn
func Global[T j1939.Message](ctx context.Context, r *Reconciler, pgn j1939.PGN) (j1939.GlobalQueryResult[T], error) {
	if err := ctx.Err(); err != nil {
		return j1939.GlobalQueryResult[T]{}, err
	}
	g, err := r.q.QueryGlobal(ctx, pgn)
	if err != nil {
		return j1939.GlobalQueryResult[T]{}, err
	}
	return j1939.NarrowGlobal[T](g)
}

// RunWithGlobal is Run for a step that already sent the global request
func RunWithGlobal[T j1939.Message](ctx context.Context, r *Reconciler, pgn j1939.PGN, global j1939.GlobalQueryResult[T], cl Clauses) (*Result[T], error) {
	res := &Result[T]{
		PGN:    pgn,
		Global: global,
		DS:     make(map[j1939.Address]j1939.QueryOutcome[T]),
	}

	if len(global.Packets) == 0 && cl.NoResponse != "" {
		r.rep.Fail(cl.NoResponse, "No OBD ECU provided %s", pgn.Name())
	}

	for _, addr := range r.reg.ObdAddresses() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		o, err := r.q.QueryOne(ctx, pgn, addr)
		if err != nil {
			return res, err
		}
		ds, err := j1939.NarrowOutcome[T](o)
		if err != nil {
			return res, err
		}
		res.DS[addr] = ds
		res.Addresses = append(res.Addresses, addr)

		r.log.Debug("reconciling",
			zap.Stringer("pgn", pgn),
			zap.Stringer("address", addr),
			zap.Stringer("ds", ds.Result),
		)

		if ds.Retried && cl.Retry != "" {
			r.rep.Warn(cl.Retry, "%s required a retry to answer the DS %s request", addr, pgn.Name())
		}

		if gp, ok := global.Packet(addr); ok {
			compare(r, pgn, addr, gp, ds, cl)
			continue
		}
		if ds.Result != j1939.NegativeAck && cl.MissingNack != "" {
			r.rep.Fail(cl.MissingNack, "%s did not provide a response to the global query and did not provide a NACK for the DS query", addr)
		}
	}
	return res, nil
}

func compare[T j1939.Message](r *Reconciler, pgn j1939.PGN, addr j1939.Address, global T, ds j1939.QueryOutcome[T], cl Clauses) {
	switch ds.Result {
	case j1939.NegativeAck:
		r.rep.Fail(cl.dsNack(), "%s NACKed the DS %s request after responding to the global request", addr, pgn.Name())
	case j1939.NoResponse:
		r.rep.Fail(cl.dsTimeout(), "%s did not respond to the DS %s request after responding to the global request", addr, pgn.Name())
	default:
		diffs := Diff(global, ds.Packet, r.opts...)
		if len(diffs) == 0 {
			return
		}
		r.rep.Fail(cl.Mismatch, "Difference compared to data received during global request from %s\n%s", addr, diffs)
	}
}
