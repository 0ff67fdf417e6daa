package engine

import "context"

// Cont is a goal continuation: what to run after the goal that received it
// succeeds. It carries no bindings of its own — those live on the
// Variable/MemberVariable nodes the goal just touched.
type Cont func(env *Env) *Promise

func trueK(env *Env) *Promise { return Bool(true) }

// haltSignal is the error value halt/0 and halt/1 raise. It is never an
// Exception, so Catch's recovery function always lets it pass through.
type haltSignal struct{ code int64 }

func (h haltSignal) Error() string { return "halt" }

var (
	atomTrue    = NewAtom("true")
	atomFail    = NewAtom("fail")
	atomFalse   = NewAtom("false")
	atomCut     = NewAtom("!")
	atomComma   = NewAtom(",")
	atomAnd     = NewAtom("&&")
	atomSemi    = NewAtom(";")
	atomOr      = NewAtom("||")
	atomArrow   = NewAtom("->")
	atomImplies = NewAtom("=>")
	atomIff     = NewAtom("<=>")
	atomNegate  = NewAtom("\\+")
	atomCall    = NewAtom("call")
	atomCatch   = NewAtom("catch")
	atomThrow   = NewAtom("throw")
	atomHalt    = NewAtom("halt")
	atomIn      = NewAtom("in")
	atomCase    = NewAtom("case")
	atomNone    = NewAtom("none")

	atomUnify     = NewAtom("=")
	atomNotUnify  = NewAtom("\\=")
	atomEquals    = NewAtom("==")
	atomNotEquals = NewAtom("\\==")

	atomForStmt     = NewAtom("for_stmt")
	atomWhileStmt   = NewAtom("while_stmt")
	atomDoWhileStmt = NewAtom("do_while_stmt")
	atomSwitchStmt  = NewAtom("switch_stmt")

	atomAsserta = NewAtom("asserta")
	atomAssertz = NewAtom("assertz")
	atomRetract = NewAtom("retract")
	atomAbolish = NewAtom("abolish")
	atomDynamic = NewAtom("dynamic")
)

// Solve evaluates goal, invoking k on every success. cutParent identifies
// the choice-point barrier a bare "!" inside goal prunes up to; nil means
// "no enclosing barrier", and a "!" then prunes every choice point still on
// the stack being forced.
func (ctx *Context) Solve(goal Term, cutParent *Promise, k Cont, env *Env) *Promise {
	d := Dereference(goal)

	switch t := d.(type) {
	case *Variable:
		return Error(InstantiationError())
	case Atom:
		switch t {
		case atomTrue:
			return k(env)
		case atomFail, atomFalse:
			return Bool(false)
		case atomCut:
			return cut(cutParent, func(context.Context) *Promise { return k(env) })
		case atomHalt:
			return Error(haltSignal{0})
		}
		return ctx.callUser(t, nil, k, env)
	case Compound:
		return ctx.solveCompound(t, cutParent, k, env)
	default:
		return Error(TypeError(validTypeCallable, d))
	}
}

func (ctx *Context) solveCompound(t Compound, cutParent *Promise, k Cont, env *Env) *Promise {
	name, arity := t.Functor(), t.Arity()

	switch {
	case name == atomComma && arity == 2:
		a, b := t.Arg(0), t.Arg(1)
		return ctx.Solve(a, cutParent, func(env *Env) *Promise {
			return ctx.Solve(b, cutParent, k, env)
		}, env)
	case name == atomAnd && arity == 2:
		return ctx.solveCompound(atomComma.Apply(t.Arg(0), t.Arg(1)).(Compound), cutParent, k, env)

	case (name == atomSemi || name == atomOr) && arity == 2:
		left, right := t.Arg(0), t.Arg(1)
		if lc, ok := Dereference(left).(Compound); ok && lc.Functor() == atomArrow && lc.Arity() == 2 {
			return ctx.IfThenElse(lc.Arg(0), lc.Arg(1), right, k, env)
		}
		m := env.Trail.Mark()
		return Delay(
			func(context.Context) *Promise { return ctx.Solve(left, cutParent, k, env) },
			func(context.Context) *Promise {
				env.Trail.Backtrack(m)
				return ctx.Solve(right, cutParent, k, env)
			},
		)

	case name == atomArrow && arity == 2:
		return ctx.IfThenElse(t.Arg(0), t.Arg(1), nil, k, env)

	case name == atomImplies && arity == 2:
		return ctx.Implies(t.Arg(0), t.Arg(1), k, env)

	case name == atomIff && arity == 2:
		return ctx.Equivalent(t.Arg(0), t.Arg(1), k, env)

	case name == atomNegate && arity == 1:
		return ctx.Negation(t.Arg(0), k, env)
	case name == atomCut && arity == 1: // unary "!" is negation, distinct from the bare cut atom
		return ctx.Negation(t.Arg(0), k, env)

	case name == atomCall && arity >= 1:
		return ctx.Call(buildCallGoal(t.Arg(0), argSlice(t)[1:]), k, env)

	case name == atomCatch && arity == 3:
		return ctx.Catch(t.Arg(0), t.Arg(1), t.Arg(2), k, env)

	case name == atomThrow && arity == 1:
		return Throw(t.Arg(0))

	case name == atomHalt && arity == 1:
		n := Dereference(t.Arg(0))
		if _, ok := n.(*Variable); ok {
			return Error(InstantiationError())
		}
		i, ok := n.(Integer)
		if !ok {
			return Error(TypeError(validTypeInteger, n))
		}
		return Error(haltSignal{int64(i)})

	case name == atomIn && arity == 2:
		return ctx.In(t.Arg(0), t.Arg(1), k, env)

	case name == atomUnify && arity == 2:
		return ctx.unifyGoal(t.Arg(0), t.Arg(1), k, env)
	case name == atomNotUnify && arity == 2:
		return ctx.notUnifyGoal(t.Arg(0), t.Arg(1), k, env)
	case name == atomEquals && arity == 2:
		return ctx.equalGoal(t.Arg(0), t.Arg(1), k, env)
	case name == atomNotEquals && arity == 2:
		return ctx.notEqualGoal(t.Arg(0), t.Arg(1), k, env)

	case name == atomForStmt && arity == 5:
		return ctx.ForStmt(t.Arg(0), t.Arg(1), t.Arg(2), t.Arg(3), t.Arg(4), k, env)
	case name == atomWhileStmt && arity == 3:
		return ctx.WhileStmt(t.Arg(0), t.Arg(1), t.Arg(2), k, env)
	case name == atomDoWhileStmt && arity == 3:
		return ctx.DoWhileStmt(t.Arg(0), t.Arg(1), t.Arg(2), k, env)
	case name == atomSwitchStmt && arity == 3:
		return ctx.SwitchStmt(t.Arg(0), t.Arg(1), t.Arg(2), k, env)

	case name == atomAsserta && arity == 1:
		return ctx.Asserta(t.Arg(0), k, env)
	case name == atomAssertz && arity == 1:
		return ctx.Assertz(t.Arg(0), k, env)
	case name == atomRetract && arity == 1:
		return ctx.Retract(t.Arg(0), k, env)
	case name == atomAbolish && arity == 1:
		return ctx.Abolish(t.Arg(0), k, env)
	case name == atomDynamic && arity == 1:
		return ctx.Dynamic(t.Arg(0), k, env)

	default:
		return ctx.callUser(name, argSlice(t), k, env)
	}
}

func argSlice(t Compound) []Term {
	args := make([]Term, t.Arity())
	for i := range args {
		args[i] = t.Arg(i)
	}
	return args
}

// buildCallGoal appends extra to g's argument list, the way call/N extends
// call/1's goal with its trailing arguments.
func buildCallGoal(g Term, extra []Term) Term {
	if len(extra) == 0 {
		return g
	}
	d := Dereference(g)
	switch v := d.(type) {
	case Atom:
		return v.Apply(extra...)
	case Compound:
		args := append(argSlice(v), extra...)
		return v.Functor().Apply(args...)
	default:
		return d
	}
}

// Call runs g as a goal of its own, scoped in a fresh cut barrier so a "!"
// inside g never prunes choice points outside the call.
func (ctx *Context) Call(g Term, k Cont, env *Env) *Promise {
	d := Dereference(g)
	if _, ok := d.(*Variable); ok {
		return Error(InstantiationError())
	}
	switch d.(type) {
	case Atom, Compound:
	default:
		return Error(TypeError(validTypeCallable, d))
	}
	var barrier *Promise
	barrier = Delay(func(context.Context) *Promise {
		return ctx.Solve(d, barrier, k, env)
	})
	return barrier
}

// IfThenElse commits to the first success of cond, discarding its
// remaining choice points, then runs then; runs els (or fails, if els is
// nil) when cond never succeeds.
func (ctx *Context) IfThenElse(cond, then, els Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		ok, err := ctx.Call(cond, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if ok {
			return ctx.Solve(then, nil, k, env)
		}
		if els == nil {
			return Bool(false)
		}
		return ctx.Solve(els, nil, k, env)
	})
}

// Negation succeeds iff goal fails, undoing every binding goal made.
func (ctx *Context) Negation(goal Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		m := env.Trail.Mark()
		ok, err := ctx.Call(goal, trueK, env).Force(c)
		env.Trail.Backtrack(m)
		if err != nil {
			return Error(err)
		}
		if ok {
			return Bool(false)
		}
		return k(env)
	})
}

// Implies evaluates a and b as a classical truth-functional implication: a
// false antecedent makes the implication vacuously true and skips b entirely.
func (ctx *Context) Implies(a, b Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		m := env.Trail.Mark()
		okA, err := ctx.Call(a, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !okA {
			env.Trail.Backtrack(m)
			return k(env)
		}
		okB, err := ctx.Call(b, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !okB {
			env.Trail.Backtrack(m)
			return Bool(false)
		}
		return k(env)
	})
}

// Equivalent succeeds iff a and b have the same truth value; neither side's
// bindings survive, since only the truth value is observable.
func (ctx *Context) Equivalent(a, b Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		m := env.Trail.Mark()
		okA, err := ctx.Call(a, trueK, env).Force(c)
		env.Trail.Backtrack(m)
		if err != nil {
			return Error(err)
		}
		okB, err := ctx.Call(b, trueK, env).Force(c)
		env.Trail.Backtrack(m)
		if err != nil {
			return Error(err)
		}
		if okA == okB {
			return k(env)
		}
		return Bool(false)
	})
}

// Catch runs goal; if it raises an Exception unifying with pattern, backs
// out its bindings and runs recovery instead. halt (and any other
// non-Exception error) passes through untouched.
func (ctx *Context) Catch(goal, pattern, recovery Term, k Cont, env *Env) *Promise {
	m := env.Trail.Mark()
	recoverFn := func(err error) *Promise {
		ex, ok := err.(Exception)
		if !ok {
			return nil
		}
		env.Trail.Backtrack(m)
		snap := snapshotTerm(ex.Term())
		if !Unify(env.Trail, pattern, snap, ModeDefault) {
			env.Trail.Backtrack(m)
			return nil
		}
		return ctx.Solve(recovery, nil, k, env)
	}
	var barrier *Promise
	barrier = Delay(func(context.Context) *Promise {
		return catch(recoverFn, func(context.Context) *Promise {
			return ctx.Solve(goal, barrier, k, env)
		})
	})
	return barrier
}

// Throw raises t as an error after dereferencing, snapshotting its
// currently-bound shape so later backtracking can't mutate what a catch
// further up the stack inspects.
func Throw(t Term) *Promise {
	d := Dereference(t)
	if _, ok := d.(*Variable); ok {
		return Error(InstantiationError())
	}
	return Error(NewException(snapshotTerm(d)))
}

func snapshotTerm(t Term) Term {
	d := Dereference(t)
	switch v := d.(type) {
	case *list:
		return &list{head: snapshotTerm(v.head), tail: snapshotTerm(v.tail)}
	case *functor:
		args := make([]Term, len(v.args))
		for i, a := range v.args {
			if a != nil {
				args[i] = snapshotTerm(a)
			}
		}
		return &functor{name: v.name, args: args}
	default:
		return d
	}
}

// unifyGoal is "="/2: it binds whichever side needs binding to make a and b
// identical, undoing any partial bindings when a and b fail to unify.
func (ctx *Context) unifyGoal(a, b Term, k Cont, env *Env) *Promise {
	return Delay(func(context.Context) *Promise {
		m := env.Trail.Mark()
		if !Unify(env.Trail, a, b, ModeDefault) {
			env.Trail.Backtrack(m)
			return Bool(false)
		}
		return k(env)
	})
}

// notUnifyGoal is "\="/2: it succeeds iff a and b do not unify, leaving no
// bindings behind either way.
func (ctx *Context) notUnifyGoal(a, b Term, k Cont, env *Env) *Promise {
	return Delay(func(context.Context) *Promise {
		m := env.Trail.Mark()
		unified := Unify(env.Trail, a, b, ModeDefault)
		env.Trail.Backtrack(m)
		if unified {
			return Bool(false)
		}
		return k(env)
	})
}

// equalGoal is "=="/2: structural equality under the equality mode, which
// never binds a variable.
func (ctx *Context) equalGoal(a, b Term, k Cont, env *Env) *Promise {
	if !Unify(env.Trail, a, b, ModeEquality) {
		return Bool(false)
	}
	return k(env)
}

// notEqualGoal is "\=="/2, the negation of equalGoal.
func (ctx *Context) notEqualGoal(a, b Term, k Cont, env *Env) *Promise {
	if Unify(env.Trail, a, b, ModeEquality) {
		return Bool(false)
	}
	return k(env)
}

// In enumerates l's elements against x, one choice point per element;
// reaching an improper tail raises instantiation_error (unbound) or
// type_error(list, tail) (bound to something other than a proper list).
func (ctx *Context) In(x, l Term, k Cont, env *Env) *Promise {
	items, tail := listPrefix(l)
	idx := 0
	start := env.Trail.Mark()
	next := func() (PromiseFunc, bool) {
		if idx < len(items) {
			item := items[idx]
			idx++
			return func(context.Context) *Promise {
				env.Trail.Backtrack(start)
				m := env.Trail.Mark()
				if !Unify(env.Trail, x, item, ModeDefault) {
					env.Trail.Backtrack(m)
					return Bool(false)
				}
				return k(env)
			}, true
		}
		if idx == len(items) {
			idx++ // raise exactly once, then stop
			d := Dereference(tail)
			if d == Term(listNil) {
				return nil, false
			}
			if _, ok := d.(*Variable); ok {
				return func(context.Context) *Promise { return Error(InstantiationError()) }, true
			}
			return func(context.Context) *Promise { return Error(TypeError(validTypeList, d)) }, true
		}
		return nil, false
	}
	return DelaySeq(next)
}

// listPrefix walks l's cons cells, returning the collected heads and
// whatever sits at the end: listNil for a proper list, an unbound variable
// for a partial one, or anything else for an improper one.
func listPrefix(l Term) (items []Term, tail Term) {
	cur := l
	for {
		d := Dereference(cur)
		lp, ok := d.(*list)
		if !ok {
			return items, d
		}
		items = append(items, lp.head)
		cur = lp.tail
	}
}

// --- user-predicate dispatch ---

func (ctx *Context) callUser(name Atom, args []Term, k Cont, env *Env) *Promise {
	proc, ok := ctx.DB.lookup(name, len(args))
	if !ok {
		pi, _ := CreatePredicate(name, len(args))
		return Error(ExistenceError(objectTypeProcedure, pi.AsTerm()))
	}
	var key ArgKey
	if len(args) > 0 {
		key = ArgumentKey(args[0])
	} else {
		key = ArgKey{Kind: ArgKindVariable}
	}

	clauses := proc.clauses
	idx := 0
	start := env.Trail.Mark()
	var barrier *Promise
	next := func() (PromiseFunc, bool) {
		for idx < len(clauses) {
			c := clauses[idx]
			idx++
			if !c.key.CompatibleWith(key) {
				continue
			}
			cc := c
			return func(context.Context) *Promise {
				env.Trail.Backtrack(start)
				m := env.Trail.Mark()
				headArgs, body := renameClause(cc)
				prog := CompileMatcher(headArgs, CompileOptions{})
				outcome, err := ctx.VM.MatchClause(prog, args, false)
				switch outcome {
				case ClauseException:
					return Error(err)
				case ClauseMatchFailed:
					env.Trail.Backtrack(m)
					return Bool(false)
				default: // ClauseRunBody
					return ctx.Solve(body, barrier, k, env)
				}
			}, true
		}
		return nil, false
	}
	barrier = DelaySeq(next)
	return barrier
}
