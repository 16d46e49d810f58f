package dm

import (
	"encoding/binary"
	"fmt"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/model"
)

type bitPos struct {
	id  model.SystemID
	bit uint
}

// continuous monitors: support/enable in bits 0-2, status in bits 4-6
var continuousBits = []bitPos{
	{id: model.Misfire, bit: 0},
	{id: model.FuelSystem, bit: 1},
	{id: model.ComprehensiveComponent, bit: 2},
}

// non-continuous monitors: two 16 bit little endian groups
var nonContinuousBits = []bitPos{
	{id: model.Catalyst, bit: 0},
	{id: model.HeatedCatalyst, bit: 1},
	{id: model.EvaporativeSystem, bit: 2},
	{id: model.SecondaryAirSystem, bit: 3},
	{id: model.ACSystemRefrigerant, bit: 4},
	{id: model.ExhaustGasSensor, bit: 5},
	{id: model.ExhaustGasSensorHeater, bit: 6},
	{id: model.EGRVVTSystem, bit: 7},
	{id: model.ColdStartAid, bit: 8},
	{id: model.BoostPressureControl, bit: 9},
	{id: model.DieselParticulateFilter, bit: 10},
	{id: model.NOxCatalystAdsorber, bit: 11},
	{id: model.NMHCConvertingCatalyst, bit: 12},
}

// DM5 is Diagnostic Readiness 1
type DM5 struct {
	From                j1939.Address
	ActiveCount         byte
	PreviouslyActive    byte
	OBDCompliance       byte
	MonitoredSystemsSet model.MonitorSet
}

func (d *DM5) Source() j1939.Address { return d.From }
func (d *DM5) PGN() j1939.PGN        { return j1939.PGNDM5 }

func (d *DM5) MonitoredSystems() model.MonitorSet {
	return d.MonitoredSystemsSet
}

func (d *DM5) String() string {
	return fmt.Sprintf("DM5 from %s: OBD Compliance: %d, Active Codes: %d, Previously Active Codes: %d",
		d.From, d.OBDCompliance, d.ActiveCount, d.PreviouslyActive)
}

// DM5 has no enable bits, a supported monitor is reported as enabled.
// A set status bit means "not complete".
func decodeDM5(source j1939.Address, data []byte) (j1939.Message, error) {
	if len(data) < 8 {
		return nil, &j1939.DecodeError{PGN: j1939.PGNDM5, Source: source, Reason: fmt.Sprintf("short payload, %d bytes", len(data))}
	}
	set := make(model.MonitorSet)
	for _, p := range continuousBits {
		supported := data[3]&(1<<p.bit) != 0
		set.Add(model.MonitoredSystem{ID: p.id, Status: model.MonitorStatus{
			Supported: supported,
			Enabled:   supported,
			Complete:  data[3]&(1<<(p.bit+4)) == 0,
		}})
	}
	support := binary.LittleEndian.Uint16(data[4:6])
	status := binary.LittleEndian.Uint16(data[6:8])
	for _, p := range nonContinuousBits {
		supported := support&(1<<p.bit) != 0
		set.Add(model.MonitoredSystem{ID: p.id, Status: model.MonitorStatus{
			Supported: supported,
			Enabled:   supported,
			Complete:  status&(1<<p.bit) == 0,
		}})
	}
	return &DM5{
		From:                source,
		ActiveCount:         data[0],
		PreviouslyActive:    data[1],
		OBDCompliance:       data[2],
		MonitoredSystemsSet: set,
	}, nil
}

// DM26 is Diagnostic Readiness 3, the monitor status of the current drive cycle
type DM26 struct {
	From                 j1939.Address
	TimeSinceEngineStart uint16
	WarmUps              byte
	MonitoredSystemsSet  model.MonitorSet
}

func (d *DM26) Source() j1939.Address { return d.From }
func (d *DM26) PGN() j1939.PGN        { return j1939.PGNDM26 }

func (d *DM26) MonitoredSystems() model.MonitorSet {
	return d.MonitoredSystemsSet
}

func (d *DM26) String() string {
	return fmt.Sprintf("DM26 from %s: Warm-ups: %d, Time Since Engine Start: %d seconds", d.From, d.WarmUps, d.TimeSinceEngineStart)
}

// DM26 has no support bits, an enabled monitor is reported as supported
func decodeDM26(source j1939.Address, data []byte) (j1939.Message, error) {
	if len(data) < 8 {
		return nil, &j1939.DecodeError{PGN: j1939.PGNDM26, Source: source, Reason: fmt.Sprintf("short payload, %d bytes", len(data))}
	}
	set := make(model.MonitorSet)
	for _, p := range continuousBits {
		enabled := data[3]&(1<<p.bit) != 0
		set.Add(model.MonitoredSystem{ID: p.id, Status: model.MonitorStatus{
			Supported: enabled,
			Enabled:   enabled,
			Complete:  data[3]&(1<<(p.bit+4)) == 0,
		}})
	}
	enabledBits := binary.LittleEndian.Uint16(data[4:6])
	status := binary.LittleEndian.Uint16(data[6:8])
	for _, p := range nonContinuousBits {
		enabled := enabledBits&(1<<p.bit) != 0
		set.Add(model.MonitoredSystem{ID: p.id, Status: model.MonitorStatus{
			Supported: enabled,
			Enabled:   enabled,
			Complete:  status&(1<<p.bit) == 0,
		}})
	}
	return &DM26{
		From:                 source,
		TimeSinceEngineStart: binary.LittleEndian.Uint16(data[0:2]),
		WarmUps:              data[2],
		MonitoredSystemsSet:  set,
	}, nil
}
