package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/j1939/pkg/dm"
	"github.com/roffe/j1939/pkg/model"
)

func TestDiff(t *testing.T) {
	opts := New(nil, nil, nil, nil).opts

	tests := []struct {
		name   string
		global interface{}
		ds     interface{}
		want   Differences
	}{
		{
			name:   "equal",
			global: &dm.ComponentID{Make: []byte("ABC"), Model: []byte("M1")},
			ds:     &dm.ComponentID{Make: []byte("ABC"), Model: []byte("M1")},
		},
		{
			name:   "nil and empty fields are equal",
			global: &dm.ComponentID{Make: []byte{}},
			ds:     &dm.ComponentID{},
		},
		{
			name:   "byte field",
			global: &dm.ComponentID{Make: []byte("ABC"), SerialNumber: []byte("1")},
			ds:     &dm.ComponentID{Make: []byte("ABD"), SerialNumber: []byte("1")},
			want:   Differences{{Path: "Make", Global: "414243", DS: "414244"}},
		},
		{
			name:   "calibration verification number is shown most significant byte first",
			global: dm19(0, cal("ABC", 0x34, 0x12, 0x00, 0x00)),
			ds:     dm19(0, cal("ABC", 0x78, 0x56, 0x00, 0x00)),
			want:   Differences{{Path: "Calibrations[0].CVN", Global: "00001234", DS: "00005678"}},
		},
		{
			name:   "calibration verification number of equal value",
			global: dm19(0, cal("ABC", 0x34, 0x12)),
			ds:     dm19(0, cal("ABC", 0x34, 0x12, 0x00, 0x00)),
		},
		{
			name: "monitor status",
			global: &dm.DM5{OBDCompliance: 0x13, MonitoredSystemsSet: model.NewMonitorSet(
				model.MonitoredSystem{ID: model.Catalyst, Status: model.MonitorStatus{Supported: true, Enabled: true, Complete: true}},
			)},
			ds: &dm.DM5{OBDCompliance: 0x14, MonitoredSystemsSet: model.NewMonitorSet(
				model.MonitoredSystem{ID: model.Catalyst, Status: model.MonitorStatus{Supported: true, Enabled: true}},
			)},
			want: Differences{
				{Path: "OBDCompliance", Global: "19", DS: "20"},
				{Path: "MonitoredSystemsSet[Catalyst].Complete", Global: "true", DS: "false"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.global, tt.ds, opts...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDifferences_String(t *testing.T) {
	d := Differences{
		{Path: "Make", Global: "41", DS: "42"},
		{Path: "Model", Global: "43", DS: "44"},
	}
	require.Equal(t, "    Make: global 41, DS 42\n    Model: global 43, DS 44", d.String())
}
