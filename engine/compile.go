package engine

// Reg is an index into a register file used by both the builder and
// matcher programs.
type Reg int

// RegEncoding selects how a program's register operands are sized.
// Compact clauses address their few dozen registers with a single byte;
// once a clause's register count would not fit that, the compiler spills
// to the wider encoding. Both must execute identically — compactRegLimit
// is the only thing that differs between them.
type RegEncoding int

const (
	RegCompact RegEncoding = iota
	RegLarge
)

// compactRegLimit is the largest register count the compact encoding can
// address inline (register indices 0 through 255).
const compactRegLimit = 256

// maxInlineArgs bounds how many argument registers a single Put/Get
// functor instruction carries before the rest spill into one or more
// OpPutArgsOverflow/OpGetArgsOverflow instructions immediately following
// it. This is what lets a functor of arity far beyond one instruction's
// capacity (the arity-200 round-trip case) compile and execute correctly.
const maxInlineArgs = 8

type Opcode int

const (
	OpPutAtom Opcode = iota
	OpPutInteger
	OpPutReal
	OpPutString
	OpPutVariable
	OpPutFunctor
	OpPutArgsOverflow
	OpReturnBuilder

	OpGetAtom
	OpGetInteger
	OpGetReal
	OpGetString
	OpGetVariable
	OpGetFunctor
	OpGetArgsOverflow
	OpReturnMatcher
)

// Instruction is one step of a builder or matcher program. Only the
// fields relevant to Op are meaningful; the rest are zero.
type Instruction struct {
	Op Opcode

	Reg Reg // target/source register this instruction operates on

	AtomVal   Atom
	IntVal    Integer
	RealVal   Real
	StringVal String
	Var       *Variable // nil under OpPutVariable means "allocate fresh"

	Name  Atom // functor/list name ("." for a list cell)
	Arity int
	Args  []Reg // argument registers, inline chunk (see maxInlineArgs)
}

// Program is a compiled linear instruction sequence plus the register
// count it needs.
type Program struct {
	Instructions []Instruction
	Encoding     RegEncoding
	NumRegs      int
}

// CompileOptions controls matcher/builder compilation.
type CompileOptions struct {
	// ForceLargeRegs forces the large register encoding even when the
	// program would fit in the compact one; a test knob only.
	ForceLargeRegs bool
	// InputOnly is carried with the options but CompileMatcher does not
	// read it; the compiled program is the same either way. Input-only
	// matching, where any attempt to bind a caller-side variable fails the
	// match, is selected only by RunMatcher's inputOnly argument.
	InputOnly bool
}

func pickEncoding(numRegs int, force bool) RegEncoding {
	if force || numRegs > compactRegLimit {
		return RegLarge
	}
	return RegCompact
}

// --- Builder ---

type builderCompiler struct {
	instrs []Instruction
	next   Reg
}

func (c *builderCompiler) alloc() Reg {
	r := c.next
	c.next++
	return r
}

func (c *builderCompiler) emit(i Instruction) { c.instrs = append(c.instrs, i) }

// CompileBuilder compiles t into a program that, when run, constructs an
// equivalent term. Embedded *Variable nodes are carried by pointer so
// running the program reproduces the exact same variable identities —
// required for the builder round-trip property (build then unify under
// equality).
func CompileBuilder(t Term, opts CompileOptions) (*Program, Reg) {
	c := &builderCompiler{}
	root := c.compileTerm(t)
	c.emit(Instruction{Op: OpReturnBuilder, Reg: root})
	return &Program{
		Instructions: c.instrs,
		Encoding:     pickEncoding(int(c.next), opts.ForceLargeRegs),
		NumRegs:      int(c.next),
	}, root
}

func (c *builderCompiler) compileTerm(t Term) Reg {
	reg := c.alloc()
	switch v := t.(type) {
	case *Variable:
		if v.ref != nil {
			return c.compileInto(reg, Dereference(v))
		}
		c.emit(Instruction{Op: OpPutVariable, Reg: reg, Var: v})
	case *MemberVariable:
		if r := Dereference(v); r != Term(v) {
			return c.compileInto(reg, r)
		}
		c.emit(Instruction{Op: OpPutVariable, Reg: reg})
	case Atom:
		c.emit(Instruction{Op: OpPutAtom, Reg: reg, AtomVal: v})
	case Integer:
		c.emit(Instruction{Op: OpPutInteger, Reg: reg, IntVal: v})
	case Real:
		c.emit(Instruction{Op: OpPutReal, Reg: reg, RealVal: v})
	case String:
		c.emit(Instruction{Op: OpPutString, Reg: reg, StringVal: v})
	case Compound:
		c.compileCompoundInto(reg, v)
	default:
		c.emit(Instruction{Op: OpPutVariable, Reg: reg})
	}
	return reg
}

// compileInto compiles t directly into an already-allocated register
// (used when following a bound variable's reference rather than
// allocating a fresh slot for it).
func (c *builderCompiler) compileInto(reg Reg, t Term) Reg {
	sub := c.compileTerm(t)
	// Re-home the just-compiled value onto reg by rewriting the target of
	// the instruction that produced it (the last one that is not an
	// overflow block) in place; this keeps one instruction per value
	// rather than adding a copy opcode.
	last := len(c.instrs) - 1
	for c.instrs[last].Op == OpPutArgsOverflow {
		last--
	}
	c.instrs[last].Reg = reg
	_ = sub
	return reg
}

func (c *builderCompiler) compileCompoundInto(reg Reg, v Compound) {
	argRegs := make([]Reg, v.Arity())
	for i := 0; i < v.Arity(); i++ {
		argRegs[i] = c.compileTerm(v.Arg(i))
	}
	emitFunctorPut(c, reg, v.Functor(), v.Arity(), argRegs)
}

func emitFunctorPut(c *builderCompiler, reg Reg, name Atom, arity int, argRegs []Reg) {
	n := len(argRegs)
	if n > maxInlineArgs {
		n = maxInlineArgs
	}
	c.emit(Instruction{Op: OpPutFunctor, Reg: reg, Name: name, Arity: arity, Args: argRegs[:n]})
	for rest := argRegs[n:]; len(rest) > 0; {
		k := len(rest)
		if k > maxInlineArgs {
			k = maxInlineArgs
		}
		c.emit(Instruction{Op: OpPutArgsOverflow, Args: rest[:k]})
		rest = rest[k:]
	}
}

// RunBuilder executes prog and returns the constructed term.
func RunBuilder(prog *Program) Term {
	regs := make([]Term, prog.NumRegs)
	for i := 0; i < len(prog.Instructions); i++ {
		in := prog.Instructions[i]
		switch in.Op {
		case OpPutAtom:
			regs[in.Reg] = in.AtomVal
		case OpPutInteger:
			regs[in.Reg] = in.IntVal
		case OpPutReal:
			regs[in.Reg] = in.RealVal
		case OpPutString:
			regs[in.Reg] = in.StringVal
		case OpPutVariable:
			if in.Var != nil {
				regs[in.Reg] = in.Var
			} else {
				regs[in.Reg] = NewVariable()
			}
		case OpPutFunctor:
			args := make([]Term, 0, in.Arity)
			for _, r := range in.Args {
				args = append(args, regs[r])
			}
			for i+1 < len(prog.Instructions) && prog.Instructions[i+1].Op == OpPutArgsOverflow {
				i++
				for _, r := range prog.Instructions[i].Args {
					args = append(args, regs[r])
				}
			}
			if in.Name == atomDot && in.Arity == 2 {
				regs[in.Reg] = CreateList(args[0], args[1])
			} else {
				built, _ := CreateFunctorWithArgs(in.Name, args)
				regs[in.Reg] = built
			}
		case OpReturnBuilder:
			return regs[in.Reg]
		}
	}
	return nil
}

// --- Matcher ---

type matcherCompiler struct {
	instrs []Instruction
	next   Reg
}

func (c *matcherCompiler) alloc() Reg {
	r := c.next
	c.next++
	return r
}

func (c *matcherCompiler) emit(i Instruction) { c.instrs = append(c.instrs, i) }

// CompileMatcher compiles one matcher program over argument registers
// 0..len(templates)-1, each preloaded by the caller with one argument of
// a call. templates is typically a clause head's argument list, freshly
// renamed so its *Variable nodes are private to this call.
func CompileMatcher(templates []Term, opts CompileOptions) *Program {
	c := &matcherCompiler{next: Reg(len(templates))}
	for i, t := range templates {
		c.compile(t, Reg(i))
	}
	c.emit(Instruction{Op: OpReturnMatcher})
	return &Program{
		Instructions: c.instrs,
		Encoding:     pickEncoding(int(c.next), opts.ForceLargeRegs),
		NumRegs:      int(c.next),
	}
}

func (c *matcherCompiler) compile(template Term, reg Reg) {
	switch t := Dereference(template).(type) {
	case *Variable:
		c.emit(Instruction{Op: OpGetVariable, Reg: reg, Var: t})
	case *MemberVariable:
		c.emit(Instruction{Op: OpGetVariable, Reg: reg, Var: NewVariable()})
	case Atom:
		c.emit(Instruction{Op: OpGetAtom, Reg: reg, AtomVal: t})
	case Integer:
		c.emit(Instruction{Op: OpGetInteger, Reg: reg, IntVal: t})
	case Real:
		c.emit(Instruction{Op: OpGetReal, Reg: reg, RealVal: t})
	case String:
		c.emit(Instruction{Op: OpGetString, Reg: reg, StringVal: t})
	case Compound:
		argRegs := make([]Reg, t.Arity())
		for i := range argRegs {
			argRegs[i] = c.alloc()
		}
		emitFunctorGet(c, reg, t.Functor(), t.Arity(), argRegs)
		for i := 0; i < t.Arity(); i++ {
			c.compile(t.Arg(i), argRegs[i])
		}
	}
}

func emitFunctorGet(c *matcherCompiler, reg Reg, name Atom, arity int, argRegs []Reg) {
	n := len(argRegs)
	if n > maxInlineArgs {
		n = maxInlineArgs
	}
	c.emit(Instruction{Op: OpGetFunctor, Reg: reg, Name: name, Arity: arity, Args: argRegs[:n]})
	for rest := argRegs[n:]; len(rest) > 0; {
		k := len(rest)
		if k > maxInlineArgs {
			k = maxInlineArgs
		}
		c.emit(Instruction{Op: OpGetArgsOverflow, Args: rest[:k]})
		rest = rest[k:]
	}
}

// RunMatcher executes prog against args (preloaded into registers
// 0..len(args)-1) and reports whether it matched. Bindings made along a
// failed path are left on tr; the caller backtracks to the mark it took
// before calling RunMatcher.
func RunMatcher(prog *Program, tr *Trail, args []Term, inputOnly bool) bool {
	regs := make([]Term, prog.NumRegs)
	copy(regs, args)

	mode := ModeDefault
	if inputOnly {
		mode = ModeOneWay
	}

	for i := 0; i < len(prog.Instructions); i++ {
		in := prog.Instructions[i]
		switch in.Op {
		case OpGetAtom:
			if !Unify(tr, regs[in.Reg], in.AtomVal, mode) {
				return false
			}
		case OpGetInteger:
			if !Unify(tr, regs[in.Reg], in.IntVal, mode) {
				return false
			}
		case OpGetReal:
			if !Unify(tr, regs[in.Reg], in.RealVal, mode) {
				return false
			}
		case OpGetString:
			if !Unify(tr, regs[in.Reg], in.StringVal, mode) {
				return false
			}
		case OpGetVariable:
			if !Unify(tr, regs[in.Reg], in.Var, mode) {
				return false
			}
		case OpGetFunctor:
			argRegs := append([]Reg{}, in.Args...)
			for i+1 < len(prog.Instructions) && prog.Instructions[i+1].Op == OpGetArgsOverflow {
				i++
				argRegs = append(argRegs, prog.Instructions[i].Args...)
			}
			vals, ok := descendFunctor(tr, regs[in.Reg], in.Name, in.Arity, inputOnly)
			if !ok {
				return false
			}
			for j, r := range argRegs {
				regs[r] = vals[j]
			}
		case OpReturnMatcher:
			return true
		}
	}
	return true
}

// descendFunctor checks that the incoming value at a functor/list
// template position has compatible shape, or — outside input-only mode —
// allocates one if the incoming value was an unbound variable, binding it
// through the trail. It returns the per-argument values the rest of the
// matcher should continue matching into.
func descendFunctor(tr *Trail, val Term, name Atom, arity int, inputOnly bool) ([]Term, bool) {
	d := Dereference(val)
	if c, ok := d.(Compound); ok {
		if c.Functor() != name || c.Arity() != arity {
			return nil, false
		}
		vals := make([]Term, arity)
		for i := range vals {
			vals[i] = c.Arg(i)
		}
		return vals, true
	}
	if _, ok := d.(*Variable); !ok {
		if _, ok := d.(*MemberVariable); !ok {
			return nil, false
		}
	}
	if inputOnly {
		return nil, false
	}
	argVals := make([]Term, arity)
	for i := range argVals {
		argVals[i] = NewVariable()
	}
	var built Term
	if name == atomDot && arity == 2 {
		built = CreateList(argVals[0], argVals[1])
	} else {
		built, _ = CreateFunctorWithArgs(name, argVals)
	}
	if !Unify(tr, d, built, ModeDefault) {
		return nil, false
	}
	return argVals, true
}

// --- Argument-key extraction, for first-argument indexing ---

type ArgKind int

const (
	ArgKindVariable ArgKind = iota
	ArgKindAtom
	ArgKindInteger
	ArgKindReal
	ArgKindString
	ArgKindFunctor
	ArgKindPredicate
)

// ArgKey is the (kind, size, name) triple first-argument indexing buckets
// clauses by.
type ArgKey struct {
	Kind ArgKind
	Size int
	Name Atom
}

// ArgumentKey computes t's argument key. Member-variables, unbound
// variables, and any other non-atomic leaf normalize to the "variable"
// sentinel key, which is compatible with every other key.
func ArgumentKey(t Term) ArgKey {
	switch v := Dereference(t).(type) {
	case Atom:
		return ArgKey{Kind: ArgKindAtom, Name: v}
	case Integer:
		return ArgKey{Kind: ArgKindInteger}
	case Real:
		return ArgKey{Kind: ArgKindReal}
	case String:
		return ArgKey{Kind: ArgKindString}
	case Compound:
		return ArgKey{Kind: ArgKindFunctor, Size: v.Arity(), Name: v.Functor()}
	case *PredicateIndicator:
		return ArgKey{Kind: ArgKindPredicate, Size: v.Arity, Name: v.Name}
	default:
		return ArgKey{Kind: ArgKindVariable}
	}
}

// CompatibleWith reports whether a clause keyed k could possibly match an
// argument keyed o; a variable key is always compatible since it carries
// no information yet.
func (k ArgKey) CompatibleWith(o ArgKey) bool {
	if k.Kind == ArgKindVariable || o.Kind == ArgKindVariable {
		return true
	}
	return k == o
}
