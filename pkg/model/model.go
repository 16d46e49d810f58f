package model

import (
	"github.com/roffe/j1939"
)

// NoFunctionID marks a record whose function id has not been observed
const NoFunctionID = -1

// ModuleRecord holds what has been learned about one ECU during a session
type ModuleRecord struct {
	Address j1939.Address
	// FunctionID from the address claim NAME, NoFunctionID when unknown
	FunctionID int
	// OBDCompliance is byte 3 of DM5
	OBDCompliance byte

	CalibrationInformation []CalibrationInformation
	ComponentID            *ComponentIdentification

	DataStreamSPNs  []int
	FreezeFrameSPNs []int
	TestResultSPNs  []int

	MonitoredSystems  MonitorSet
	ScaledTestResults []ScaledTestResult
}

func NewModuleRecord(addr j1939.Address) ModuleRecord {
	return ModuleRecord{
		Address:    addr,
		FunctionID: NoFunctionID,
	}
}

// IsOBD reports whether the module declared an OBD compliance in DM5
func (m ModuleRecord) IsOBD() bool {
	switch {
	case m.OBDCompliance == 0x00:
		return false
	case m.OBDCompliance == 0x05: // not intended to meet OBD requirements
		return false
	case m.OBDCompliance >= 0xFB:
		return false
	}
	return true
}

// CarryForward fills the fields later steps read from prev when m leaves
// them unset. FunctionID, OBDCompliance, ComponentID, CalibrationInformation
// and MonitoredSystems are the only fields carried.
func (m ModuleRecord) CarryForward(prev ModuleRecord) ModuleRecord {
	if prev.Address != m.Address {
		return m
	}
	if m.FunctionID == NoFunctionID {
		m.FunctionID = prev.FunctionID
	}
	if m.OBDCompliance == 0 {
		m.OBDCompliance = prev.OBDCompliance
	}
	if m.ComponentID == nil && prev.ComponentID != nil {
		c := *prev.ComponentID
		m.ComponentID = &c
	}
	if m.CalibrationInformation == nil && prev.CalibrationInformation != nil {
		m.CalibrationInformation = cloneCalibrations(prev.CalibrationInformation)
	}
	if m.MonitoredSystems == nil {
		m.MonitoredSystems = prev.MonitoredSystems.Clone()
	}
	return m
}

// Clone returns a deep copy
func (m ModuleRecord) Clone() ModuleRecord {
	c := m
	c.CalibrationInformation = cloneCalibrations(m.CalibrationInformation)
	if m.ComponentID != nil {
		id := *m.ComponentID
		c.ComponentID = &id
	}
	c.DataStreamSPNs = cloneInts(m.DataStreamSPNs)
	c.FreezeFrameSPNs = cloneInts(m.FreezeFrameSPNs)
	c.TestResultSPNs = cloneInts(m.TestResultSPNs)
	c.MonitoredSystems = m.MonitoredSystems.Clone()
	if m.ScaledTestResults != nil {
		c.ScaledTestResults = append([]ScaledTestResult{}, m.ScaledTestResults...)
	}
	return c
}

func cloneCalibrations(in []CalibrationInformation) []CalibrationInformation {
	if in == nil {
		return nil
	}
	out := make([]CalibrationInformation, len(in))
	for i, c := range in {
		out[i] = c.clone()
	}
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int{}, in...)
}
