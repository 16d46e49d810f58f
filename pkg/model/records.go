package model

import (
	"bytes"
	"fmt"

	"github.com/roffe/j1939/pkg/validate"
)

// CalibrationInformation is one calibration entry of a DM19 response. Both
// fields are kept in wire form, the CVN is least significant byte first.
type CalibrationInformation struct {
	CalibrationID []byte
	CVN           [4]byte
}

// ID returns the calibration id with trailing 0x00/0xFF padding removed
func (c CalibrationInformation) ID() string {
	return string(bytes.TrimRight(c.CalibrationID, "\x00\xff"))
}

func (c CalibrationInformation) String() string {
	return fmt.Sprintf("CAL ID of %s and CVN of 0x%s", c.ID(), validate.FormatCVN(c.CVN))
}

func (c CalibrationInformation) clone() CalibrationInformation {
	return CalibrationInformation{
		CalibrationID: append([]byte(nil), c.CalibrationID...),
		CVN:           c.CVN,
	}
}

// ComponentIdentification is the decoded content of PGN 65259
type ComponentIdentification struct {
	Make         string
	Model        string
	SerialNumber string
	UnitNumber   string
}

func (c ComponentIdentification) String() string {
	return fmt.Sprintf("Make: %s, Model: %s, Serial: %s, Unit: %s", c.Make, c.Model, c.SerialNumber, c.UnitNumber)
}

// ScaledTestResult is one DM30 test result
type ScaledTestResult struct {
	SPN         int
	FMI         int
	SLOT        int
	TestValue   uint16
	TestMaximum uint16
	TestMinimum uint16
}
