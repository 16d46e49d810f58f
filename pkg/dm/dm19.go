package dm

import (
	"fmt"
	"strings"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/model"
)

const (
	calibrationEntryLen = 20
	calibrationIDLen    = 16
)

// DM19 is Calibration Information
type DM19 struct {
	From         j1939.Address
	Calibrations []model.CalibrationInformation
}

func (d *DM19) Source() j1939.Address { return d.From }
func (d *DM19) PGN() j1939.PGN        { return j1939.PGNDM19 }

func (d *DM19) CalibrationInformation() []model.CalibrationInformation {
	return d.Calibrations
}

func (d *DM19) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DM19 from %s:", d.From)
	if len(d.Calibrations) == 0 {
		sb.WriteString(" no calibrations")
	}
	for _, c := range d.Calibrations {
		sb.WriteString(" [" + c.String() + "]")
	}
	return sb.String()
}

// each entry is a 4 byte CVN (LSB first) followed by a 16 byte calibration id
func decodeDM19(source j1939.Address, data []byte) (j1939.Message, error) {
	if len(data)%calibrationEntryLen != 0 {
		return nil, &j1939.DecodeError{PGN: j1939.PGNDM19, Source: source, Reason: fmt.Sprintf("payload of %d bytes is not a multiple of %d", len(data), calibrationEntryLen)}
	}
	cals := make([]model.CalibrationInformation, 0, len(data)/calibrationEntryLen)
	for i := 0; i < len(data); i += calibrationEntryLen {
		var c model.CalibrationInformation
		copy(c.CVN[:], data[i:i+4])
		c.CalibrationID = append([]byte(nil), data[i+4:i+4+calibrationIDLen]...)
		cals = append(cals, c)
	}
	return &DM19{From: source, Calibrations: cals}, nil
}
