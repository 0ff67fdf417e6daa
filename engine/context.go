package engine

import (
	"context"
	"io"
	"strings"
)

// Context bundles every piece of process-relevant state a running engine
// needs: the trail, the predicate database, the VM, and the goal/choice
// point left over from the most recently executed goal. The spec requires
// contexts be independent of one another; nothing here is package-level.
type Context struct {
	Trail *Trail
	DB    *predicateDB
	VM    *VM

	pendingTestGoal Term
	solutions       *Solutions
	lastEnv         *Env
}

// NewContext returns a fresh, empty context.
func NewContext() *Context {
	tr := NewTrail()
	return &Context{
		Trail: tr,
		DB:    newPredicateDB(),
		VM:    NewVM(tr),
	}
}

// Free releases ctx's state. Terms are garbage collected by Go once
// unreachable, so this just drops the context's own references.
func (ctx *Context) Free() {
	ctx.Trail = nil
	ctx.DB = nil
	ctx.VM = nil
	ctx.solutions = nil
	ctx.lastEnv = nil
}

// ExecuteGoal runs goal to its first solution, returning one of the four
// Outcome values. *errTerm is set on Error/Halt.
func (ctx *Context) ExecuteGoal(goal Term, errTerm *Term) Outcome {
	env := &Env{Trail: ctx.Trail}
	ctx.lastEnv = env
	p := ctx.Solve(goal, nil, trueK, env)
	ctx.solutions = NewSolutions(p)
	return ctx.advance(errTerm)
}

// ReexecuteGoal resumes the most recently executed goal at its latest
// choice point.
func (ctx *Context) ReexecuteGoal(errTerm *Term) Outcome {
	if ctx.solutions == nil {
		return OutcomeFail
	}
	return ctx.advance(errTerm)
}

func (ctx *Context) advance(errTerm *Term) Outcome {
	ok, err := ctx.solutions.Next(context.Background())
	if err != nil {
		if h, isHalt := err.(haltSignal); isHalt {
			if errTerm != nil {
				*errTerm = Integer(h.code)
			}
			return OutcomeHalt
		}
		if ex, isEx := err.(Exception); isEx {
			if errTerm != nil {
				*errTerm = ex.Term()
			}
			return OutcomeError
		}
		if errTerm != nil {
			*errTerm = NewAtom(err.Error())
		}
		return OutcomeError
	}
	if !ok {
		return OutcomeFail
	}
	return OutcomeTrue
}

// Outcome is one of the four results a goal evaluation can terminate in. A
// cut reaching its barrier is handled inside the interpreter and is never
// returned as an Outcome.
type Outcome int

const (
	OutcomeTrue Outcome = iota
	OutcomeFail
	OutcomeError
	OutcomeHalt
)

// TestGoal saves g as the next test-harness goal, returning whatever was
// previously pending (nil the first time).
func (ctx *Context) TestGoal(g Term) Term {
	prev := ctx.pendingTestGoal
	ctx.pendingTestGoal = g
	return prev
}

// PendingTestGoal reports the goal last saved by TestGoal without
// consuming it.
func (ctx *Context) PendingTestGoal() Term { return ctx.pendingTestGoal }

// ConsultString parses source as a sequence of clauses and directives,
// installing clauses into ctx's predicate database and running directives
// (a leading ":- Goal.") to completion. A "??--" pragma, wherever it occurs
// in source, names a test goal ("??-- G." or "??-- { S }.") rather than a
// clause; it is stashed via TestGoal instead of being installed or run.
// Returns 0 on
// success, non-zero on the first syntactic or directive failure.
func (ctx *Context) ConsultString(source string) int {
	clean, testGoals := extractTestGoals(source)
	for _, raw := range testGoals {
		tp, err := NewParser(raw + " .")
		if err != nil {
			return 1
		}
		g, err := tp.ReadClause()
		if err != nil {
			return 1
		}
		ctx.TestGoal(g)
	}
	p, err := NewParser(clean)
	if err != nil {
		return 1
	}
	for !p.AtEOF() {
		t, err := p.ReadClause()
		if err != nil {
			return 1
		}
		if t == nil {
			break
		}
		if c, ok := t.(Compound); ok && c.Functor() == NewAtom(":-") && c.Arity() == 1 {
			if !ctx.runDirective(c.Arg(0)) {
				return 1
			}
			continue
		}
		name, args, body, ok := splitClauseTerm(t)
		if !ok {
			return 1
		}
		ctx.DB.addClause(name, args, body)
	}
	return 0
}

func (ctx *Context) runDirective(goal Term) bool {
	env := &Env{Trail: ctx.Trail}
	ok, err := ctx.Call(goal, trueK, env).Force(context.Background())
	return err == nil && ok
}

// extractTestGoals pulls every "??-- ...." pragma out of source, replacing
// each with blank space so line numbers in the remaining clause text are
// unaffected, and returns the pragmas' bodies for separate parsing.
func extractTestGoals(source string) (clean string, goals []string) {
	var sb strings.Builder
	rest := source
	for {
		idx := strings.Index(rest, "??--")
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		sb.WriteString(strings.Repeat(" ", len("??--")))
		after := rest[idx+len("??--"):]
		end := findClauseDot(after)
		if end < 0 {
			goals = append(goals, strings.TrimSpace(after))
			rest = ""
			continue
		}
		goals = append(goals, strings.TrimSpace(after[:end]))
		sb.WriteString(blankKeepingNewlines(after[:end]))
		sb.WriteString(" ")
		rest = after[end+1:]
	}
	return sb.String(), goals
}

func blankKeepingNewlines(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '\n' {
			sb.WriteRune('\n')
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// findClauseDot returns the index of the first '.' in s that terminates a
// clause (followed by whitespace or end of input), or -1.
func findClauseDot(s string) int {
	for i, r := range s {
		if r != '.' {
			continue
		}
		if i+1 >= len(s) || s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t' || s[i+1] == '\r' {
			return i
		}
	}
	return -1
}

// Print writes term's canonical textual form through emit.
func (ctx *Context) Print(term Term, emit io.Writer, opts *WriteOptions) error {
	if opts == nil {
		opts = &defaultWriteOptions
	}
	return term.WriteTerm(emit, opts, ctx.lastEnv)
}

// OperatorSpecifier names one of the six fixity/associativity classes the
// source-level operator table uses.
type OperatorSpecifier int

const (
	SpecifierNone OperatorSpecifier = iota
	SpecifierXFX
	SpecifierXFY
	SpecifierYFX
	SpecifierFX
	SpecifierFY
)

// OperatorInfo reports the priority and specifier registered for
// name/arity in the default table, or (0, SpecifierNone) if none.
func OperatorInfo(name Atom, arity int) (priority int, spec OperatorSpecifier) {
	if arity == 2 {
		if e, ok := binaryOperators[name]; ok {
			return e.priority, e.spec
		}
	}
	if arity == 1 {
		if e, ok := unaryOperators[name]; ok {
			return e.priority, e.spec
		}
	}
	return 0, SpecifierNone
}

type operatorEntry struct {
	priority int
	spec     OperatorSpecifier
}

var binaryOperators = map[Atom]operatorEntry{
	":-":  {1200, SpecifierXFX},
	";":   {1100, SpecifierXFY},
	"||":  {1100, SpecifierXFY},
	"->":  {1050, SpecifierXFY},
	"=>":  {1050, SpecifierXFY},
	"<=>": {1050, SpecifierXFY},
	",":   {1000, SpecifierXFY},
	"&&":  {1000, SpecifierXFY},
	"=":    {700, SpecifierXFX},
	"\\=":  {700, SpecifierXFX},
	"==":   {700, SpecifierXFX},
	"\\==": {700, SpecifierXFX},
	"is":   {700, SpecifierXFX},
	"in":   {700, SpecifierXFX},
	"+":   {500, SpecifierYFX},
	"-":   {500, SpecifierYFX},
	"*":   {400, SpecifierYFX},
	"/":   {400, SpecifierYFX},
}

var unaryOperators = map[Atom]operatorEntry{
	":-":  {1200, SpecifierFX},
	"\\+": {900, SpecifierFY},
	"!":   {900, SpecifierFY},
	"-":   {200, SpecifierFY},
	"+":   {200, SpecifierFY},
}
