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

var calibrationIDRule = validate.FieldRule{
	Pad:       0x00,
	Padded:    true,
	Printable: validate.Severity(ledger.Fail),
}

// CalibrationInformation checks DM19 from every OBD module
func CalibrationInformation() session.Step {
	return &step{part: 1, step: 12, name: "Calibration Information (DM19)", run: runCalibrationInformation}
}

func runCalibrationInformation(ctx context.Context, env *session.Env) error {
	rep := env.Reporter
	res, err := reconcile.Run[*dm.DM19](ctx, env.Reconciler(), j1939.PGNDM19, reconcile.Clauses{
		NoResponse:  "6.1.12.2.a",
		Mismatch:    "6.1.12.4.a",
		MissingNack: "6.1.12.4.b",
	})
	if err != nil {
		return err
	}
	for _, p := range res.Global.Packets {
		cals := make([]model.CalibrationInformation, len(p.Calibrations))
		copy(cals, p.Calibrations)
		env.Registry.Update(p.From, func(rec *model.ModuleRecord) {
			rec.CalibrationInformation = cals
		})
		if !env.Registry.IsObd(p.From) {
			continue
		}
		for i, c := range p.Calibrations {
			name := fmt.Sprintf("%s CAL ID %d", p.From, i+1)
			if validate.Classify(c.CalibrationID) == validate.AllOnes {
				rep.Message("%s is not available", name)
				continue
			}
			validate.Report(rep, "6.1.12.2.b", name, validate.ASCII(c.CalibrationID, calibrationIDRule))
			validate.Report(rep, "6.1.12.2.c", name+" and CVN", validate.ZeroPair(c.CalibrationID, c.CVN[:], ledger.Fail))
			rep.Message("%s: %s", p.From, c)
		}
	}
	return nil
}
