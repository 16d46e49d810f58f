package sim

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roffe/j1939"
)

// Mode is how a module treats one kind of request
type Mode string

const (
	Respond Mode = "respond"
	Nack    Mode = "nack"
	Busy    Mode = "busy"
	Denied  Mode = "denied"
	Silent  Mode = "silent"
	// Fail breaks the bus, the request returns an error
	Fail Mode = "fail"
)

func (m Mode) valid() bool {
	switch m {
	case Respond, Nack, Busy, Denied, Silent, Fail:
		return true
	}
	return false
}

func (m Mode) control() j1939.AckControl {
	switch m {
	case Busy:
		return j1939.ControlBusy
	case Denied:
		return j1939.ControlAccessDenied
	default:
		return j1939.ControlNACK
	}
}

// Vehicle describes what each simulated module answers
type Vehicle struct {
	Name    string   `yaml:"name"`
	Modules []Module `yaml:"modules"`
}

type Module struct {
	Address   uint8      `yaml:"address"`
	Responses []Response `yaml:"responses"`
}

// Response is the answer of one module to one PGN. Data is hex, Text is
// taken verbatim; one of them must be set when the module responds.
type Response struct {
	PGN    uint32 `yaml:"pgn"`
	Data   string `yaml:"data,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Global Mode   `yaml:"global,omitempty"`
	DS     Mode   `yaml:"ds,omitempty"`
	// DSData replaces the payload of DS answers when set
	DSData string `yaml:"ds_data,omitempty"`
	// SilentAttempts leaves the first DS requests unanswered
	SilentAttempts int `yaml:"silent_attempts,omitempty"`
}

func (r Response) payload(ds bool) ([]byte, error) {
	if ds && r.DSData != "" {
		return parseHex(r.DSData)
	}
	if r.Text != "" {
		return []byte(r.Text), nil
	}
	return parseHex(r.Data)
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", "\n", "", "\t", "", ":", "").Replace(s)
	if s == "" {
		return []byte{}, nil
	}
	return hex.DecodeString(s)
}

// LoadVehicle reads a vehicle description from a yaml file
func LoadVehicle(path string) (*Vehicle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle: %w", err)
	}
	return ParseVehicle(content)
}

func ParseVehicle(content []byte) (*Vehicle, error) {
	var v Vehicle
	if err := yaml.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parse vehicle: %w", err)
	}
	if err := v.normalize(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vehicle) normalize() error {
	if len(v.Modules) == 0 {
		return errors.New("vehicle must define at least one module")
	}
	seen := make(map[uint8]bool)
	for i := range v.Modules {
		m := &v.Modules[i]
		switch addr := j1939.Address(m.Address); addr {
		case j1939.GlobalAddress, j1939.NullAddress:
			return fmt.Errorf("module address %s cannot send responses", addr)
		}
		if seen[m.Address] {
			return fmt.Errorf("module address %d defined twice", m.Address)
		}
		seen[m.Address] = true
		for j := range m.Responses {
			r := &m.Responses[j]
			if r.Global == "" {
				r.Global = Respond
			}
			if r.DS == "" {
				r.DS = Respond
			}
			if !r.Global.valid() || !r.DS.valid() {
				return fmt.Errorf("module %d pgn %d: unknown mode %q/%q", m.Address, r.PGN, r.Global, r.DS)
			}
			if _, err := r.payload(false); err != nil {
				return fmt.Errorf("module %d pgn %d: %w", m.Address, r.PGN, err)
			}
			if _, err := r.payload(true); err != nil {
				return fmt.Errorf("module %d pgn %d: %w", m.Address, r.PGN, err)
			}
		}
	}
	return nil
}
