package ledger

import "fmt"

// Reporter binds a Sink to one step and formats "<clauseId> <description>" messages
type Reporter struct {
	sink Sink
	part int
	step int
}

func NewReporter(sink Sink, part, step int) *Reporter {
	return &Reporter{sink: sink, part: part, step: step}
}

func (r *Reporter) Part() int { return r.part }
func (r *Reporter) Step() int { return r.step }

// Add records one outcome. An empty clause leaves the description unprefixed.
func (r *Reporter) Add(o Outcome, clause, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if clause != "" {
		msg = clause + " " + msg
	}
	r.sink.AddOutcome(r.part, r.step, o, msg)
}

func (r *Reporter) Fail(clause, format string, args ...interface{}) {
	r.Add(Fail, clause, format, args...)
}

func (r *Reporter) Warn(clause, format string, args ...interface{}) {
	r.Add(Warn, clause, format, args...)
}

func (r *Reporter) Pass(clause, format string, args ...interface{}) {
	r.Add(Pass, clause, format, args...)
}

func (r *Reporter) Message(format string, args ...interface{}) {
	r.sink.OnMessage(fmt.Sprintf(format, args...))
}

func (r *Reporter) Milestone(format string, args ...interface{}) {
	r.sink.OnMilestone(fmt.Sprintf(format, args...))
}
