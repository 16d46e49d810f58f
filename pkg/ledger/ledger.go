package ledger

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives outcomes in emission order
type Sink interface {
	AddOutcome(part, step int, outcome Outcome, message string)
	OnMessage(text string)
	OnMilestone(text string)
}

// Entry is one line of the ledger
type Entry struct {
	Part    int
	Step    int
	Outcome Outcome
	Message string
}

// String renders the entry as "<OUTCOME>: <message>"
func (e Entry) String() string {
	return e.Outcome.String() + ": " + e.Message
}

type Opt func(l *Ledger)

// OptWriter makes the ledger print every entry, message and milestone as it is added
func OptWriter(w io.Writer, colors bool) Opt {
	return func(l *Ledger) {
		l.out = w
		l.colors = colors
	}
}

// Ledger is an append-only, in-memory Sink. It is written by a single step
// worker and may be read concurrently by one observer.
type Ledger struct {
	mu         sync.RWMutex
	entries    []Entry
	messages   []string
	milestones []string

	out    io.Writer
	colors bool
}

func New(opts ...Opt) *Ledger {
	l := &Ledger{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) AddOutcome(part, step int, outcome Outcome, message string) {
	e := Entry{Part: part, Step: step, Outcome: outcome, Message: message}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	if l.out != nil {
		if l.colors {
			fmt.Fprintln(l.out, ColorLine(e))
		} else {
			fmt.Fprintln(l.out, e.String())
		}
	}
}

func (l *Ledger) OnMessage(text string) {
	l.mu.Lock()
	l.messages = append(l.messages, text)
	l.mu.Unlock()
	if l.out != nil {
		fmt.Fprintln(l.out, text)
	}
}

func (l *Ledger) OnMilestone(text string) {
	l.mu.Lock()
	l.milestones = append(l.milestones, text)
	l.mu.Unlock()
	if l.out != nil {
		if l.colors {
			fmt.Fprintln(l.out, milestone(text))
		} else {
			fmt.Fprintln(l.out, text)
		}
	}
}

// Entries returns a copy of every outcome in emission order
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// StepEntries returns the outcomes recorded for one step
func (l *Ledger) StepEntries(part, step int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Part == part && e.Step == step {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) Messages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.messages...)
}

func (l *Ledger) Milestones() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.milestones...)
}

// Lines renders every entry with String
func (l *Ledger) Lines() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// Len returns the number of outcomes recorded so far
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
