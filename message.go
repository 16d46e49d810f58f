package j1939

import (
	"context"
	"fmt"
)

// Message is the narrow view the engine has of a decoded diagnostic message.
// Per message kind accessors live with the decoders in pkg/dm.
type Message interface {
	Source() Address
	PGN() PGN
}

// Result tags a QueryOutcome
type Result int

const (
	NoResponse Result = iota
	Positive
	NegativeAck
)

func (r Result) String() string {
	switch r {
	case Positive:
		return "Positive"
	case NegativeAck:
		return "NACK"
	default:
		return "No Response"
	}
}

// QueryOutcome is the outcome of one destination specific request
type QueryOutcome[T Message] struct {
	Result Result
	// Packet is set when Result is Positive
	Packet T
	// Ack is set when Result is NegativeAck
	Ack *Acknowledgment
	// Retried is true when the request had to be sent more than once
	Retried bool
}

func PositiveOutcome[T Message](packet T) QueryOutcome[T] {
	return QueryOutcome[T]{Result: Positive, Packet: packet}
}

func NackOutcome[T Message](ack *Acknowledgment) QueryOutcome[T] {
	return QueryOutcome[T]{Result: NegativeAck, Ack: ack}
}

func NoResponseOutcome[T Message]() QueryOutcome[T] {
	return QueryOutcome[T]{Result: NoResponse}
}

func (o QueryOutcome[T]) String() string {
	switch o.Result {
	case Positive:
		return fmt.Sprintf("Positive from %s", o.Packet.Source())
	case NegativeAck:
		return o.Ack.String()
	default:
		return "No Response"
	}
}

// GlobalQueryResult holds every answer to a global request. An address is
// present in at most one of Packets and Acks.
type GlobalQueryResult[T Message] struct {
	Packets []T
	Acks    []*Acknowledgment
}

// Packet returns the positive answer from addr
func (g GlobalQueryResult[T]) Packet(addr Address) (T, bool) {
	for _, p := range g.Packets {
		if p.Source() == addr {
			return p, true
		}
	}
	var zero T
	return zero, false
}

// Ack returns the negative acknowledgment from addr
func (g GlobalQueryResult[T]) Ack(addr Address) (*Acknowledgment, bool) {
	for _, a := range g.Acks {
		if a.From == addr {
			return a, true
		}
	}
	return nil, false
}

// Querier is the bus query capability the engine depends on
type Querier interface {
	QueryGlobal(ctx context.Context, pgn PGN) (GlobalQueryResult[Message], error)
	QueryOne(ctx context.Context, pgn PGN, addr Address) (QueryOutcome[Message], error)
}

// Transport sends one request and returns every decoded message (including
// acknowledgments) received before the response window closed. An empty
// slice means nothing answered; only a broken bus returns an error.
type Transport interface {
	Request(ctx context.Context, pgn PGN, dest Address) ([]Message, error)
}

// NarrowGlobal converts a global result to a concrete message kind
func NarrowGlobal[T Message](g GlobalQueryResult[Message]) (GlobalQueryResult[T], error) {
	out := GlobalQueryResult[T]{Acks: g.Acks}
	for _, m := range g.Packets {
		p, err := narrow[T](m)
		if err != nil {
			return GlobalQueryResult[T]{}, err
		}
		out.Packets = append(out.Packets, p)
	}
	return out, nil
}

// NarrowOutcome converts a DS outcome to a concrete message kind
func NarrowOutcome[T Message](o QueryOutcome[Message]) (QueryOutcome[T], error) {
	out := QueryOutcome[T]{Result: o.Result, Ack: o.Ack, Retried: o.Retried}
	if o.Result != Positive {
		return out, nil
	}
	p, err := narrow[T](o.Packet)
	if err != nil {
		return QueryOutcome[T]{}, err
	}
	out.Packet = p
	return out, nil
}

func narrow[T Message](m Message) (T, error) {
	p, ok := m.(T)
	if !ok {
		var zero T
		return zero, &TypeError{PGN: m.PGN(), Source: m.Source(), Got: fmt.Sprintf("%T", m), Want: fmt.Sprintf("%T", zero)}
	}
	return p, nil
}
