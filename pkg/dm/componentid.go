package dm

import (
	"bytes"
	"fmt"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/model"
)

// ComponentID is Component Identification, "make*model*serial*unit*".
// The fields are kept as received so the content can be validated.
type ComponentID struct {
	From         j1939.Address
	Make         []byte
	Model        []byte
	SerialNumber []byte
	UnitNumber   []byte
}

func (c *ComponentID) Source() j1939.Address { return c.From }
func (c *ComponentID) PGN() j1939.PGN        { return j1939.PGNComponentIdentification }

func (c *ComponentID) Identification() model.ComponentIdentification {
	return model.ComponentIdentification{
		Make:         string(c.Make),
		Model:        string(c.Model),
		SerialNumber: string(c.SerialNumber),
		UnitNumber:   string(c.UnitNumber),
	}
}

func (c *ComponentID) String() string {
	return fmt.Sprintf("Component Identification from %s: %s", c.From, c.Identification())
}

func decodeComponentID(source j1939.Address, data []byte) (j1939.Message, error) {
	parts := bytes.Split(data, []byte{'*'})
	if len(parts) < 4 {
		return nil, &j1939.DecodeError{PGN: j1939.PGNComponentIdentification, Source: source, Reason: fmt.Sprintf("expected 4 fields, found %d", len(parts))}
	}
	field := func(b []byte) []byte { return append([]byte{}, b...) }
	return &ComponentID{
		From:         source,
		Make:         field(parts[0]),
		Model:        field(parts[1]),
		SerialNumber: field(parts[2]),
		UnitNumber:   field(parts[3]),
	}, nil
}
