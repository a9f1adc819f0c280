package compiler

// Optimizer rewrites IR before code generation. The levels are currently a
// scheduling tag: every level validates and returns the IR unchanged, and
// the artifact records which level it was compiled under.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Optimize applies the passes selected by opts.Optimization.
func (o *Optimizer) Optimize(ir *IR, opts CompilationOptions) (*IR, error) {
	switch opts.Optimization {
	case OptNone, OptBasic, OptAggressive, OptCreative:
		return ir, nil
	}
	return nil, NewError(OptimizationFailed, "unknown optimization level %d", int(opts.Optimization))
}
