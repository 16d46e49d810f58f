package j1939

import "fmt"

// AckControl is the control byte of an Acknowledgment (PGN 59392)
type AckControl byte

const (
	ControlACK          AckControl = 0x00
	ControlNACK         AckControl = 0x01
	ControlAccessDenied AckControl = 0x02
	ControlBusy         AckControl = 0x03
)

func (c AckControl) String() string {
	switch c {
	case ControlACK:
		return "ACK"
	case ControlNACK:
		return "NACK"
	case ControlAccessDenied:
		return "Access Denied"
	case ControlBusy:
		return "Cannot Respond, Busy"
	default:
		return fmt.Sprintf("Unknown control 0x%02X", byte(c))
	}
}

// Negative reports whether the control byte refuses the request
func (c AckControl) Negative() bool {
	return c != ControlACK
}

// Acknowledgment is a decoded PGN 59392 message
type Acknowledgment struct {
	From          Address
	Control       AckControl
	GroupFunction byte
	// Requester is the address the acknowledgment is directed at
	Requester Address
	// Acknowledged is the PGN being acknowledged
	Acknowledged PGN
}

func (a *Acknowledgment) Source() Address { return a.From }
func (a *Acknowledgment) PGN() PGN        { return PGNAcknowledgment }

func (a *Acknowledgment) String() string {
	return fmt.Sprintf("Acknowledgment from %s: Response: %s, Group Function: %d, Address Acknowledged: %d, PGN Requested: %d",
		a.From, a.Control, a.GroupFunction, a.Requester, uint32(a.Acknowledged))
}

// DecodeAcknowledgment decodes the 8 byte payload of PGN 59392
func DecodeAcknowledgment(source Address, data []byte) (*Acknowledgment, error) {
	if len(data) < 8 {
		return nil, &DecodeError{PGN: PGNAcknowledgment, Source: source, Reason: fmt.Sprintf("short payload, %d bytes", len(data))}
	}
	return &Acknowledgment{
		From:          source,
		Control:       AckControl(data[0]),
		GroupFunction: data[1],
		Requester:     Address(data[4]),
		Acknowledged:  PGN(uint32(data[5]) | uint32(data[6])<<8 | uint32(data[7])<<16),
	}, nil
}
