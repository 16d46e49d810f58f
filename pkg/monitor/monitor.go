// Package monitor compares sets of monitored system statuses. Every result is
// produced in canonical system order so report text does not depend on which
// ECU answered first.
package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/model"
)

type ChangeKind int

const (
	// Regression is a system supported in the first set and not supported in the second
	Regression ChangeKind = iota
	// Escalation is a system not supported in the first set and supported or enabled in the second
	Escalation
)

func (k ChangeKind) String() string {
	switch k {
	case Regression:
		return "regression"
	case Escalation:
		return "escalation"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

type Change struct {
	Kind   ChangeKind
	Before model.MonitoredSystem
	After  model.MonitoredSystem
}

func (c Change) ID() model.SystemID {
	return c.Before.ID
}

// Compare walks the canonical system list. Systems missing from either set
// carry no information and are skipped.
func Compare(before, after model.MonitorSet) []Change {
	var out []Change
	for _, id := range model.SystemIDs() {
		a, okA := before.Get(id)
		b, okB := after.Get(id)
		if !okA || !okB {
			continue
		}
		switch {
		case a.Status.Supported && !b.Status.Supported:
			out = append(out, Change{Kind: Regression, Before: a, After: b})
		case !a.Status.Supported && (b.Status.Supported || b.Status.Enabled):
			out = append(out, Change{Kind: Escalation, Before: a, After: b})
		}
	}
	return out
}

// Duplicate is a system supported by more than one ECU
type Duplicate struct {
	ID        model.SystemID
	Addresses []j1939.Address
}

// Duplicates lists the systems supported by more than one ECU. Comprehensive
// component is supported by every OBD ECU and is never reported.
func Duplicates(perECU map[j1939.Address]model.MonitorSet) []Duplicate {
	addrs := sortedAddresses(perECU)
	var out []Duplicate
	for _, id := range model.SystemIDs() {
		if id == model.ComprehensiveComponent {
			continue
		}
		var supporters []j1939.Address
		for _, addr := range addrs {
			if sys, ok := perECU[addr].Get(id); ok && sys.Status.Supported {
				supporters = append(supporters, addr)
			}
		}
		if len(supporters) > 1 {
			out = append(out, Duplicate{ID: id, Addresses: supporters})
		}
	}
	return out
}

// Composite builds the vehicle view: a bit is set when any ECU sets it
func Composite(perECU map[j1939.Address]model.MonitorSet) model.MonitorSet {
	out := make(model.MonitorSet)
	for _, set := range perECU {
		for id, st := range set {
			c := out[id]
			c.Supported = c.Supported || st.Supported
			c.Enabled = c.Enabled || st.Enabled
			c.Complete = c.Complete || st.Complete
			out[id] = c
		}
	}
	return out
}

// Render returns one fixed width line per system in canonical order
func Render(set model.MonitorSet) string {
	var lines []string
	for _, sys := range set.Systems() {
		lines = append(lines, "    "+sys.String())
	}
	return strings.Join(lines, "\n")
}

func sortedAddresses(perECU map[j1939.Address]model.MonitorSet) []j1939.Address {
	out := make([]j1939.Address, 0, len(perECU))
	for addr := range perECU {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
