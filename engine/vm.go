package engine

import "io"

// HookFunc is called once for every instruction of a matcher or builder
// program, in program order, before the program runs. Returning an error
// stops before the program runs and surfaces the error to the caller.
type HookFunc func(op Opcode, reg Reg, env *Env) error

// DebugHookFn returns a hook that writes one line per instruction of the
// program to w, in the same one-opcode-per-line shape the rest of the
// engine's textual output uses. The listing covers the whole program,
// including instructions a failing matcher never reaches.
func DebugHookFn(w io.Writer) HookFunc {
	return func(op Opcode, reg Reg, _ *Env) error {
		return writeFprintf(w, "%s r%d\n", opcodeNames[op], reg)
	}
}

var opcodeNames = [...]string{
	OpPutAtom:         "put_atom",
	OpPutInteger:      "put_integer",
	OpPutReal:         "put_real",
	OpPutString:       "put_string",
	OpPutVariable:     "put_variable",
	OpPutFunctor:      "put_functor",
	OpPutArgsOverflow: "put_args_overflow",
	OpReturnBuilder:   "return_builder",
	OpGetAtom:         "get_atom",
	OpGetInteger:      "get_integer",
	OpGetReal:         "get_real",
	OpGetString:       "get_string",
	OpGetVariable:     "get_variable",
	OpGetFunctor:      "get_functor",
	OpGetArgsOverflow: "get_args_overflow",
	OpReturnMatcher:   "return_matcher",
}

func (op Opcode) String() string { return opcodeNames[op] }

// VM runs matcher and builder programs over a trail, optionally tracing
// every instruction through an installed hook.
type VM struct {
	Trail *Trail
	hook  HookFunc
}

// NewVM returns a VM sharing tr for every program it runs.
func NewVM(tr *Trail) *VM { return &VM{Trail: tr} }

// InstallHook sets (or clears, with nil) the per-instruction trace hook.
func (vm *VM) InstallHook(h HookFunc) { vm.hook = h }

// ClauseOutcome is one of the four terminal states a clause try can end
// in: the head failed to match, the try raised an error, the clause
// halted, or the body is ready for the interpreter to run. MatchClause
// reports ClauseException only for a trace-hook error while matching, and
// never reports ClauseHalt.
type ClauseOutcome int

const (
	ClauseMatchFailed ClauseOutcome = iota
	ClauseException
	ClauseHalt
	ClauseRunBody
)

// MatchHead runs a clause's compiled head matcher against the caller's
// argument values, tracing through the installed hook if any. A true
// result means bindings are committed on the trail and the body is ready
// to run (ClauseRunBody is the interpreter's concern, not the VM's).
func (vm *VM) MatchHead(prog *Program, args []Term, inputOnly bool) (bool, error) {
	if vm.hook == nil {
		return RunMatcher(prog, vm.Trail, args, inputOnly), nil
	}
	return vm.runMatcherTraced(prog, args, inputOnly)
}

// MatchClause runs a clause's head matcher and reports which of the VM's
// terminal states it landed in. A hook error (the only way MatchHead itself
// can fail outright) surfaces as ClauseException; everything else is either
// ClauseMatchFailed or ClauseRunBody, since the matcher alone never halts —
// halt can only come from running the clause body, which the goal
// interpreter (not the VM) evaluates.
func (vm *VM) MatchClause(prog *Program, args []Term, inputOnly bool) (ClauseOutcome, error) {
	ok, err := vm.MatchHead(prog, args, inputOnly)
	if err != nil {
		return ClauseException, err
	}
	if !ok {
		return ClauseMatchFailed, nil
	}
	return ClauseRunBody, nil
}

func (vm *VM) runMatcherTraced(prog *Program, args []Term, inputOnly bool) (bool, error) {
	env := &Env{Trail: vm.Trail}
	for _, in := range prog.Instructions {
		if err := vm.hook(in.Op, in.Reg, env); err != nil {
			return false, err
		}
	}
	return RunMatcher(prog, vm.Trail, args, inputOnly), nil
}

// Build runs a builder program, tracing through the installed hook if
// any, and returns the constructed term.
func (vm *VM) Build(prog *Program) (Term, error) {
	if vm.hook != nil {
		env := &Env{Trail: vm.Trail}
		for _, in := range prog.Instructions {
			if err := vm.hook(in.Op, in.Reg, env); err != nil {
				return nil, err
			}
		}
	}
	return RunBuilder(prog), nil
}
