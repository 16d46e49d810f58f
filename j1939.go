package j1939

import (
	"fmt"
	"strconv"
)

const (
	// GlobalAddress is the destination used for broadcast requests
	GlobalAddress Address = 0xFF
	// NullAddress is used by nodes that could not claim an address
	NullAddress Address = 0xFE
	// ToolAddress is the address the harness claims on the bus (off-board diagnostic tool #1)
	ToolAddress Address = 0xF9
)

// Address is a J1939 source address
type Address uint8

// String returns the module name followed by the numeric address, e.g. "Engine #1 (0)"
func (a Address) String() string {
	return a.Name() + " (" + strconv.Itoa(int(a)) + ")"
}

// Name returns the industry group 0 name assigned to the address
func (a Address) Name() string {
	switch a {
	case 0x00:
		return "Engine #1"
	case 0x01:
		return "Engine #2"
	case 0x02:
		return "Turbocharger"
	case 0x03:
		return "Transmission #1"
	case 0x04:
		return "Transmission #2"
	case 0x05:
		return "Shift Console - Primary"
	case 0x06:
		return "Shift Console - Secondary"
	case 0x07:
		return "Power TakeOff - (Main or Rear)"
	case 0x08:
		return "Axle - Steering"
	case 0x09:
		return "Axle - Drive #1"
	case 0x0A:
		return "Axle - Drive #2"
	case 0x0B:
		return "Brakes - System Controller"
	case 0x0C:
		return "Brakes - Steer Axle"
	case 0x0D:
		return "Brakes - Drive axle #1"
	case 0x0E:
		return "Brakes - Drive Axle #2"
	case 0x0F:
		return "Retarder - Engine"
	case 0x10:
		return "Retarder - Driveline"
	case 0x11:
		return "Cruise Control"
	case 0x12:
		return "Fuel System"
	case 0x13:
		return "Steering Controller"
	case 0x14:
		return "Suspension - Steer Axle"
	case 0x15:
		return "Suspension - Drive Axle #1"
	case 0x16:
		return "Suspension - Drive Axle #2"
	case 0x17:
		return "Instrument Cluster #1"
	case 0x18:
		return "Trip Recorder"
	case 0x19:
		return "Passenger-Operator Climate Control #1"
	case 0x1A:
		return "Alternator/Electrical Charging System"
	case 0x1B:
		return "Aerodynamic Control"
	case 0x1C:
		return "Vehicle Navigation"
	case 0x1D:
		return "Vehicle Security"
	case 0x1E:
		return "Electrical System"
	case 0x1F:
		return "Starter System"
	case 0x21:
		return "Body Controller"
	case 0x24:
		return "Off Vehicle Gateway"
	case 0x25:
		return "Virtual Terminal (in cab)"
	case 0x28:
		return "Headway Controller"
	case 0x2A:
		return "Auxiliary Heater #1"
	case 0x31:
		return "Cab Controller - Primary"
	case 0x3D:
		return "Exhaust Emission Controller"
	case 0x3E:
		return "Vehicle Dynamic Stability Controller"
	case 0x3F:
		return "Oil Sensor"
	case 0x42:
		return "Hybrid System Controller"
	case 0x55:
		return "Engine Valve Controller"
	case 0x5A:
		return "Aftertreatment #1 system gas intake"
	case 0xF9:
		return "Off Board Diagnostic-Service Tool #1"
	case 0xFA:
		return "Off Board Diagnostic-Service Tool #2"
	case 0xFE:
		return "Null Address"
	case 0xFF:
		return "Global"
	default:
		return "Unknown"
	}
}

// PGN is a J1939 parameter group number
type PGN uint32

const (
	PGNAcknowledgment          PGN = 0xE800 // 59392
	PGNDM19                    PGN = 0xD300 // 54016 Calibration Information
	PGNDM26                    PGN = 0xFDB8 // 64952 Diagnostic Readiness 3
	PGNDM5                     PGN = 0xFECE // 65230 Diagnostic Readiness 1
	PGNComponentIdentification PGN = 0xFEEB // 65259
)

// Name returns the short name used in report text
func (p PGN) Name() string {
	switch p {
	case PGNAcknowledgment:
		return "Acknowledgment"
	case PGNDM19:
		return "DM19"
	case PGNDM26:
		return "DM26"
	case PGNDM5:
		return "DM5"
	case PGNComponentIdentification:
		return "Component ID"
	default:
		return fmt.Sprintf("PGN %d", uint32(p))
	}
}

func (p PGN) String() string {
	return fmt.Sprintf("%s (%d)", p.Name(), uint32(p))
}
