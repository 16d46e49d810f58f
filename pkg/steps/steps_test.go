package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
	"github.com/roffe/j1939/pkg/session"
	"github.com/roffe/j1939/pkg/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const cleanVehicle = `
name: clean
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 07 A0 1E 00 00"
      - pgn: 64952
        data: "00 00 01 07 A0 1E 00 00"
      - pgn: 54016
        data: "34 12 00 00 43 41 4C 49 44 2D 45 4E 47 2D 30 31 00 00 00 00"
      - pgn: 65259
        text: "CMMNS*X15*12345678*ENG1*"
  - address: 3
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 64952
        data: "00 00 01 04 00 00 00 00"
        silent_attempts: 1
      - pgn: 65259
        text: "ALSN*TC10*ABC12345*"
        global: silent
        ds: nack
  - address: 11
    responses:
      - pgn: 65230
        data: "00 00 05 00 00 00 00 00"
`

type harness struct {
	vehicle *sim.Vehicle
	session *session.Session
	ledger  *ledger.Ledger
}

func newHarness(t *testing.T, vehicle string, opts ...session.Opt) *harness {
	t.Helper()
	v, err := sim.ParseVehicle([]byte(vehicle))
	require.NoError(t, err)
	bus := sim.New(v, nil)
	require.NoError(t, bus.Open(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, bus.Close())
	})
	q, err := j1939.NewRequester(bus)
	require.NoError(t, err)
	l := ledger.New()
	return &harness{vehicle: v, session: session.New(q, l, nil, opts...), ledger: l}
}

func (h *harness) run(t *testing.T, steps ...session.Step) []session.StepResult {
	t.Helper()
	results, err := h.session.Run(context.Background(), steps, nil)
	require.NoError(t, err)
	return results
}

// setData replaces what a module answers for pgn
func (h *harness) setData(addr uint8, pgn j1939.PGN, data string) {
	for i := range h.vehicle.Modules {
		m := &h.vehicle.Modules[i]
		if m.Address != addr {
			continue
		}
		for j := range m.Responses {
			if j1939.PGN(m.Responses[j].PGN) == pgn {
				m.Responses[j].Data = data
			}
		}
	}
}

func TestAll_CleanVehicle(t *testing.T) {
	h := newHarness(t, cleanVehicle)
	results := h.run(t, All()...)

	require.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, ledger.Pass, res.Outcome, res.String())
	}
	assert.Empty(t, h.ledger.Lines())

	mods := h.session.Modules()
	require.Len(t, mods, 3)
	assert.True(t, mods[0].IsOBD())
	require.NotNil(t, mods[0].ComponentID)
	assert.Equal(t, "CMMNS", mods[0].ComponentID.Make)
	require.Len(t, mods[0].CalibrationInformation, 1)
	assert.Equal(t, "CALID-ENG-01", mods[0].CalibrationInformation[0].ID())
	assert.True(t, mods[1].IsOBD())
	assert.Nil(t, mods[1].ComponentID)
	assert.False(t, mods[2].IsOBD())
}

func TestDiagnosticReadiness_Findings(t *testing.T) {
	tests := []struct {
		name    string
		vehicle string
		want    []string
	}{
		{
			name: "no OBD module",
			vehicle: `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 05 00 00 00 00 00"
`,
			want: []string{"FAIL: 6.1.3.2.a There needs to be at least one OBD Module"},
		},
		{
			name: "nothing answers",
			vehicle: `
modules:
  - address: 0
    responses:
      - pgn: 65230
        global: silent
`,
			want: []string{"FAIL: 6.1.3.2.a No OBD ECU provided DM5"},
		},
		{
			name: "different compliance and duplicate monitor",
			vehicle: `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 01 00 00 00"
  - address: 3
    responses:
      - pgn: 65230
        data: "00 00 14 04 01 00 00 00"
`,
			want: []string{
				"WARN: 6.1.3.3.a An ECU responded with a value for OBD Compliance that was not identical to other ECUs\n" +
					"    OBD Compliance 19: Engine #1 (0)\n" +
					"    OBD Compliance 20: Transmission #1 (3)",
				"WARN: 6.1.3.3.b Required monitor Catalyst is supported by more than one OBD ECU: Engine #1 (0), Transmission #1 (3)",
			},
		},
		{
			name: "DS answer differs",
			vehicle: `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
        ds_data: "00 00 13 04 00 00 00 00"
  - address: 3
    responses:
      - pgn: 65230
        data: "01 00 13 04 00 00 00 00"
        ds_data: "02 00 13 04 00 00 00 00"
`,
			want: []string{
				"FAIL: 6.1.3.4.a Difference compared to data received during global request from Transmission #1 (3)\n" +
					"    ActiveCount: global 1, DS 2",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.vehicle)
			h.run(t, DiagnosticReadiness())
			assert.Equal(t, tt.want, h.ledger.Lines())
		})
	}
}

func TestComponentIdentification_Fields(t *testing.T) {
	h := newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 65259
        text: "C*X15*1234ABCD*\x01*"
`)
	h.run(t, DiagnosticReadiness(), ComponentIdentification())

	assert.Equal(t, []string{
		"WARN: 6.1.9.2.b Engine #1 (0) make field is 1 characters, less than 2",
		"WARN: 6.1.9.2.d Engine #1 (0) serial number field does not end in 5 numeric characters",
		"FAIL: 6.1.9.2.e Engine #1 (0) unit number field contains non-printable character 0x01 at position 0",
	}, h.ledger.Lines())
}

func TestCalibrationInformation_EmptyList(t *testing.T) {
	h := newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 54016
        data: ""
`)
	results := h.run(t, DiagnosticReadiness(), CalibrationInformation())

	assert.Empty(t, results[1].Entries)
	mods := h.session.Modules()
	require.Len(t, mods, 1)
	assert.NotNil(t, mods[0].CalibrationInformation)
	assert.Empty(t, mods[0].CalibrationInformation)
}

func TestCalibrationInformation_Findings(t *testing.T) {
	h := newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 54016
        data: |
          00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00
          FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF FF
          01 00 00 00 43 41 4C 00 44 00 00 00 00 00 00 00 00 00 00 00
`)
	h.run(t, DiagnosticReadiness(), CalibrationInformation())

	assert.Equal(t, []string{
		"FAIL: 6.1.12.2.c Engine #1 (0) CAL ID 1 and CVN is all zeros in both fields",
		"FAIL: 6.1.12.2.b Engine #1 (0) CAL ID 3 is padded incorrectly, found 0x44 at position 4 after padding 0x00",
	}, h.ledger.Lines())
	assert.Contains(t, h.ledger.Messages(), "Engine #1 (0) CAL ID 2 is not available")
}

func TestDrivingCycleReadiness_Escalation(t *testing.T) {
	h := newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 64952
        data: "00 00 01 04 01 00 01 00"
`)
	h.run(t, DiagnosticReadiness(), DrivingCycleReadiness())

	assert.Equal(t, []string{
		"FAIL: 6.1.13.2.b Engine #1 (0) DM26 reports a monitor supported or enabled that was not supported before\n" +
			"    Catalyst                       supported,     enabled, not complete",
	}, h.ledger.Lines())
}

type keyCycle func()

func (k keyCycle) Confirm(ctx context.Context, question string) (bool, error) {
	k()
	return true, nil
}

func TestReadinessAfterKeyCycle_Regression(t *testing.T) {
	var h *harness
	h = newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 01 00 00 00"
`, session.OptOperator(keyCycle(func() {
		h.setData(0, j1939.PGNDM5, "00 00 13 04 00 00 00 00")
	})))
	results := h.run(t, DiagnosticReadiness(), ReadinessAfterKeyCycle())

	assert.Empty(t, results[0].Entries)
	require.Len(t, results[1].Entries, 1)
	e := results[1].Entries[0]
	assert.Equal(t, ledger.Fail, e.Outcome)
	assert.Equal(t, "6.2.3.2.b Vehicle composite of DM5 against Engine #1 (0) baseline reports a monitor not supported that was supported before\n"+
		"    Catalyst                   not supported, not enabled,     complete", e.Message)

	mods := h.session.Modules()
	cat, ok := mods[0].MonitoredSystems.Get(model.Catalyst)
	require.True(t, ok)
	assert.False(t, cat.Status.Supported)
}

func TestReadinessAfterKeyCycle_RegressionPerBaseline(t *testing.T) {
	var h *harness
	h = newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 01 00 00 00"
  - address: 3
    responses:
      - pgn: 65230
        data: "00 00 13 04 01 00 00 00"
`, session.OptOperator(keyCycle(func() {
		h.setData(0, j1939.PGNDM5, "00 00 13 04 00 00 00 00")
		h.setData(3, j1939.PGNDM5, "00 00 13 04 00 00 00 00")
	})))
	results := h.run(t, DiagnosticReadiness(), ReadinessAfterKeyCycle())

	var got []string
	for _, e := range results[1].Entries {
		require.Equal(t, ledger.Fail, e.Outcome)
		got = append(got, strings.SplitN(e.Message, "\n", 2)[0])
	}
	assert.Equal(t, []string{
		"6.2.3.2.b Vehicle composite of DM5 against Engine #1 (0) baseline reports a monitor not supported that was supported before",
		"6.2.3.2.b Vehicle composite of DM5 against Transmission #1 (3) baseline reports a monitor not supported that was supported before",
	}, got)
}

func TestReadinessAfterKeyCycle_Escalation(t *testing.T) {
	var h *harness
	h = newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
`, session.OptOperator(keyCycle(func() {
		h.setData(0, j1939.PGNDM5, "00 00 13 04 01 00 00 00")
	})))
	results := h.run(t, DiagnosticReadiness(), ReadinessAfterKeyCycle())

	require.Len(t, results[1].Entries, 1)
	assert.Equal(t, ledger.Warn, results[1].Entries[0].Outcome)
}

func TestReadinessAfterKeyCycle_OperatorRefuses(t *testing.T) {
	h := newHarness(t, cleanVehicle, session.OptOperator(refuse{}))
	results, err := h.session.Run(context.Background(), []session.Step{DiagnosticReadiness(), ReadinessAfterKeyCycle()}, nil)

	require.ErrorIs(t, err, j1939.ErrAborted)
	require.Len(t, results, 2)
	assert.True(t, results[1].Aborted())
}

type refuse struct{}

func (refuse) Confirm(ctx context.Context, question string) (bool, error) {
	return false, nil
}

func TestAbortOnBusFailure(t *testing.T) {
	h := newHarness(t, `
modules:
  - address: 0
    responses:
      - pgn: 65230
        data: "00 00 13 04 00 00 00 00"
      - pgn: 65259
        text: "CMMNS*X15*12345678*ENG1*"
        ds: fail
`)
	results, err := h.session.Run(context.Background(), All(), nil)

	require.ErrorIs(t, err, sim.ErrBusFailure)
	require.Len(t, results, 2)
	assert.True(t, results[1].Aborted())
	assert.Contains(t, h.ledger.Milestones()[len(h.ledger.Milestones())-1], "Step 1.9 aborted")
}

func TestSelect(t *testing.T) {
	got, err := Select([]string{"1.12", " 2.3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 12, got[0].Step())
	assert.Equal(t, 3, got[1].Step())

	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(All()))

	_, err = Select([]string{"9.9"})
	assert.Error(t, err)
}
