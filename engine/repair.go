package engine

import (
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/validate"
)

// RepairPolicy bounds the validate/repair cycles run on a built document.
type RepairPolicy struct {
	Enabled   bool `mapstructure:"enabled"`
	MaxPasses int  `mapstructure:"max_passes" validate:"gte=0,lte=10"`
}

// DefaultRepairPolicy repairs with at most two passes.
func DefaultRepairPolicy() RepairPolicy {
	return RepairPolicy{Enabled: true, MaxPasses: 2}
}

func (p RepairPolicy) normalized() RepairPolicy {
	q := p
	if q.MaxPasses <= 0 {
		q.MaxPasses = 1
	}
	return q
}

// repairLoop validates doc and, while the policy allows, repairs it until a
// pass applies no fix. It returns the report of the first validation, the
// final one and the total number of fixes.
func repairLoop(doc *model.Document, p RepairPolicy, opts validate.Options) (initial, final validate.Report, fixes int) {
	initial = validate.Validate(doc, opts)
	final = initial
	if !p.Enabled {
		return initial, final, 0
	}
	p = p.normalized()
	for pass := 0; pass < p.MaxPasses; pass++ {
		_, n := validate.Repair(doc, opts)
		fixes += n
		if n == 0 {
			break
		}
		final = validate.Validate(doc, opts)
	}
	return initial, final, fixes
}
