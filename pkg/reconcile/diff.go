package reconcile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roffe/j1939/pkg/validate"
)

// FieldDiff is one field that differs between two answers
type FieldDiff struct {
	Path   string
	Global string
	DS     string
}

func (d FieldDiff) String() string {
	return fmt.Sprintf("    %s: global %s, DS %s", d.Path, d.Global, d.DS)
}

type Differences []FieldDiff

func (d Differences) String() string {
	lines := make([]string, len(d))
	for i, f := range d {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// Diff compares the global and DS answers field by field
func Diff(global, ds interface{}, opts ...cmp.Option) Differences {
	var rep diffReporter
	cmp.Equal(global, ds, append(opts, cmp.Reporter(&rep))...)
	return rep.diffs
}

// diffReporter collects the leaf paths go-cmp reports as unequal
type diffReporter struct {
	path  cmp.Path
	diffs Differences
}

func (r *diffReporter) PushStep(ps cmp.PathStep) {
	r.path = append(r.path, ps)
}

func (r *diffReporter) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}
	vx, vy := r.path.Last().Values()
	r.diffs = append(r.diffs, FieldDiff{
		Path:   formatPath(r.path),
		Global: formatValue(vx),
		DS:     formatValue(vy),
	})
}

func (r *diffReporter) PopStep() {
	r.path = r.path[:len(r.path)-1]
}

func formatPath(p cmp.Path) string {
	var sb strings.Builder
	for _, step := range p {
		switch s := step.(type) {
		case cmp.StructField:
			sb.WriteString("." + s.Name())
		case cmp.SliceIndex:
			kx, ky := s.SplitKeys()
			switch {
			case kx == ky:
				fmt.Fprintf(&sb, "[%d]", kx)
			case kx < 0:
				fmt.Fprintf(&sb, "[%d]", ky)
			default:
				fmt.Fprintf(&sb, "[%d]", kx)
			}
		case cmp.MapIndex:
			fmt.Fprintf(&sb, "[%v]", s.Key())
		}
	}
	if sb.Len() == 0 {
		return "value"
	}
	return strings.TrimPrefix(sb.String(), ".")
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return "<missing>"
	}
	if !v.CanInterface() {
		return v.String()
	}
	switch val := v.Interface().(type) {
	case []byte:
		return fmt.Sprintf("%X", val)
	case [4]byte:
		return validate.FormatCVN(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
