// Package registry stores what each ECU reported during one vehicle test session.
package registry

import (
	"sort"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/model"
)

// Registry holds one ModuleRecord per source address. It is owned by the
// session and mutated only by the step that is running.
type Registry struct {
	modules map[j1939.Address]model.ModuleRecord
}

func New() *Registry {
	return &Registry{
		modules: make(map[j1939.Address]model.ModuleRecord),
	}
}

// Put replaces the record stored for rec.Address. Nothing from a previous
// record is kept, use ModuleRecord.CarryForward to keep fields explicitly.
func (r *Registry) Put(rec model.ModuleRecord) {
	r.modules[rec.Address] = rec.Clone()
}

// Module returns a copy of the record for addr
func (r *Registry) Module(addr j1939.Address) (model.ModuleRecord, bool) {
	rec, ok := r.modules[addr]
	if !ok {
		return model.ModuleRecord{}, false
	}
	return rec.Clone(), true
}

// Update applies fn to the record for addr, creating a fresh record when the
// address was never observed, and stores the result.
func (r *Registry) Update(addr j1939.Address, fn func(rec *model.ModuleRecord)) {
	rec, ok := r.Module(addr)
	if !ok {
		rec = model.NewModuleRecord(addr)
	}
	fn(&rec)
	rec.Address = addr
	r.Put(rec)
}

// ObdAddresses returns the addresses of the OBD modules in ascending order
func (r *Registry) ObdAddresses() []j1939.Address {
	var out []j1939.Address
	for addr, rec := range r.modules {
		if rec.IsOBD() {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsObd reports whether addr belongs to an OBD module
func (r *Registry) IsObd(addr j1939.Address) bool {
	rec, ok := r.modules[addr]
	return ok && rec.IsOBD()
}

// Modules returns a copy of every record ordered by address
func (r *Registry) Modules() []model.ModuleRecord {
	out := make([]model.ModuleRecord, 0, len(r.modules))
	for _, rec := range r.modules {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (r *Registry) Len() int {
	return len(r.modules)
}

// Reset forgets every module, it is called when a new session begins
func (r *Registry) Reset() {
	r.modules = make(map[j1939.Address]model.ModuleRecord)
}
