package steps

import (
	"context"
	"fmt"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/dm"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
	"github.com/roffe/j1939/pkg/reconcile"
	"github.com/roffe/j1939/pkg/session"
	"github.com/roffe/j1939/pkg/validate"
)

type componentField struct {
	name   string
	clause string
	rule   validate.FieldRule
	value  func(c *dm.ComponentID) []byte
}

var componentFields = []componentField{
	{
		name:   "make",
		clause: "6.1.9.2.b",
		rule:   validate.FieldRule{Printable: validate.Severity(ledger.Fail), CheckLength: true, MinLen: 2, MaxLen: 5},
		value:  func(c *dm.ComponentID) []byte { return c.Make },
	},
	{
		name:   "model",
		clause: "6.1.9.2.c",
		rule:   validate.FieldRule{Printable: validate.Severity(ledger.Fail), CheckLength: true, MinLen: 1, MaxLen: -1},
		value:  func(c *dm.ComponentID) []byte { return c.Model },
	},
	{
		name:   "serial number",
		clause: "6.1.9.2.d",
		rule: validate.FieldRule{
			Printable:           validate.Severity(ledger.Fail),
			CheckLength:         true,
			MinLen:              8,
			MaxLen:              -1,
			DigitSuffix:         5,
			DigitSuffixSeverity: ledger.Warn,
		},
		value: func(c *dm.ComponentID) []byte { return c.SerialNumber },
	},
	{
		name:   "unit number",
		clause: "6.1.9.2.e",
		rule:   validate.FieldRule{Printable: validate.Severity(ledger.Fail)},
		value:  func(c *dm.ComponentID) []byte { return c.UnitNumber },
	},
}

// ComponentIdentification checks PGN 65259 from every OBD module
func ComponentIdentification() session.Step {
	return &step{part: 1, step: 9, name: "Component ID", run: runComponentIdentification}
}

func runComponentIdentification(ctx context.Context, env *session.Env) error {
	res, err := reconcile.Run[*dm.ComponentID](ctx, env.Reconciler(), j1939.PGNComponentIdentification, reconcile.Clauses{
		NoResponse:  "6.1.9.2.a",
		Mismatch:    "6.1.9.4.a",
		MissingNack: "6.1.9.4.b",
	})
	if err != nil {
		return err
	}
	for _, p := range res.Global.Packets {
		id := p.Identification()
		env.Registry.Update(p.From, func(rec *model.ModuleRecord) {
			rec.ComponentID = &id
		})
		if !env.Registry.IsObd(p.From) {
			continue
		}
		for _, f := range componentFields {
			validate.Report(env.Reporter, f.clause, fmt.Sprintf("%s %s field", p.From, f.name), validate.ASCII(f.value(p), f.rule))
		}
	}
	return nil
}
