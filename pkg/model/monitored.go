package model

import (
	"fmt"
	"strings"
)

// SystemID identifies one of the 16 monitored system kinds. The values are
// declared in alphabetical order of their names, iterating by ID is the
// canonical order used for every rendered comparison.
type SystemID int

const (
	ACSystemRefrigerant SystemID = iota
	BoostPressureControl
	Catalyst
	ColdStartAid
	ComprehensiveComponent
	DieselParticulateFilter
	EGRVVTSystem
	EvaporativeSystem
	ExhaustGasSensor
	ExhaustGasSensorHeater
	FuelSystem
	HeatedCatalyst
	Misfire
	NMHCConvertingCatalyst
	NOxCatalystAdsorber
	SecondaryAirSystem

	numSystems
)

var systemNames = [numSystems]string{
	ACSystemRefrigerant:     "A/C system refrigerant",
	BoostPressureControl:    "Boost pressure control sys",
	Catalyst:                "Catalyst",
	ColdStartAid:            "Cold start aid system",
	ComprehensiveComponent:  "Comprehensive component",
	DieselParticulateFilter: "Diesel Particulate Filter",
	EGRVVTSystem:            "EGR/VVT system",
	EvaporativeSystem:       "Evaporative system",
	ExhaustGasSensor:        "Exhaust Gas Sensor",
	ExhaustGasSensorHeater:  "Exhaust Gas Sensor heater",
	FuelSystem:              "Fuel System",
	HeatedCatalyst:          "Heated catalyst",
	Misfire:                 "Misfire",
	NMHCConvertingCatalyst:  "NMHC converting catalyst",
	NOxCatalystAdsorber:     "NOx catalyst/adsorber",
	SecondaryAirSystem:      "Secondary air system",
}

// NameWidth is the width monitor names are padded to when rendered
const NameWidth = 26

// SystemIDs returns all system ids in canonical order
func SystemIDs() []SystemID {
	ids := make([]SystemID, numSystems)
	for i := range ids {
		ids[i] = SystemID(i)
	}
	return ids
}

func (id SystemID) String() string {
	if id < 0 || id >= numSystems {
		return fmt.Sprintf("SystemID(%d)", int(id))
	}
	return systemNames[id]
}

func (id SystemID) Valid() bool {
	return id >= 0 && id < numSystems
}

// Continuous reports whether the system is continuously monitored
func (id SystemID) Continuous() bool {
	switch id {
	case ComprehensiveComponent, FuelSystem, Misfire:
		return true
	}
	return false
}

// MonitorStatus is the tri-state status of a monitored system
type MonitorStatus struct {
	Supported bool
	Enabled   bool
	Complete  bool
}

func (s MonitorStatus) String() string {
	var sb strings.Builder
	if s.Enabled {
		sb.WriteString("    enabled, ")
	} else {
		sb.WriteString("not enabled, ")
	}
	if s.Complete {
		sb.WriteString("    complete")
	} else {
		sb.WriteString("not complete")
	}
	return sb.String()
}

// MonitoredSystem is a system status snapshot. Two snapshots are the same
// system when their IDs match, regardless of status.
type MonitoredSystem struct {
	ID     SystemID
	Status MonitorStatus
}

// String renders the fixed width name followed by the status, e.g.
// "Catalyst                   not supported, not enabled,     complete"
func (m MonitoredSystem) String() string {
	support := "    supported"
	if !m.Status.Supported {
		support = "not supported"
	}
	return fmt.Sprintf("%-*s %s, %s", NameWidth, m.ID.String(), support, m.Status)
}

// MonitorSet is a set of monitored systems keyed by id
type MonitorSet map[SystemID]MonitorStatus

func NewMonitorSet(systems ...MonitoredSystem) MonitorSet {
	s := make(MonitorSet, len(systems))
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

// Add inserts or replaces the system with the same id
func (s MonitorSet) Add(sys MonitoredSystem) {
	s[sys.ID] = sys.Status
}

func (s MonitorSet) Get(id SystemID) (MonitoredSystem, bool) {
	st, ok := s[id]
	return MonitoredSystem{ID: id, Status: st}, ok
}

// Systems returns the members in canonical order
func (s MonitorSet) Systems() []MonitoredSystem {
	out := make([]MonitoredSystem, 0, len(s))
	for _, id := range SystemIDs() {
		if st, ok := s[id]; ok {
			out = append(out, MonitoredSystem{ID: id, Status: st})
		}
	}
	return out
}

func (s MonitorSet) Clone() MonitorSet {
	if s == nil {
		return nil
	}
	c := make(MonitorSet, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
