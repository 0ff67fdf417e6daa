package engine

import "context"

// ForStmt desugars `for (Init; Cond; Step) { Body }` into `Init, (Cond ->
// (Body, Step, @loop) ; true)`, implemented procedurally since a goal term
// can't refer to itself the way a literal desugaring's @loop would.
func (ctx *Context) ForStmt(initG, cond, step, body, leak Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		ok, err := ctx.Call(initG, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !ok {
			return Bool(false)
		}
		return ctx.loopBody(cond, body, step, leak, k, env)
	})
}

// WhileStmt checks Cond before every iteration, including the first.
func (ctx *Context) WhileStmt(cond, body, leak Term, k Cont, env *Env) *Promise {
	return ctx.loopBody(cond, body, nil, leak, k, env)
}

// DoWhileStmt runs Body once unconditionally, then behaves like WhileStmt.
func (ctx *Context) DoWhileStmt(body, cond, leak Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		m := env.Trail.Mark()
		ok, err := ctx.Call(body, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !ok {
			rollbackPreservingLeaks(env.Trail, m, leak)
			return Bool(false)
		}
		rollbackPreservingLeaks(env.Trail, m, leak)
		return ctx.loopBody(cond, body, nil, leak, k, env)
	})
}

// loopBody is the shared while/for tail: check Cond, run Body (and Step, if
// any), roll the iteration's bindings back except for leaked variables, and
// recurse; a Cond failure ends the loop successfully.
func (ctx *Context) loopBody(cond, body, step, leak Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		m := env.Trail.Mark()
		okCond, err := ctx.Call(cond, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !okCond {
			env.Trail.Backtrack(m)
			return k(env)
		}
		okBody, err := ctx.Call(body, trueK, env).Force(c)
		if err != nil {
			return Error(err)
		}
		if !okBody {
			rollbackPreservingLeaks(env.Trail, m, leak)
			return Bool(false)
		}
		if step != nil {
			okStep, err := ctx.Call(step, trueK, env).Force(c)
			if err != nil {
				return Error(err)
			}
			if !okStep {
				rollbackPreservingLeaks(env.Trail, m, leak)
				return Bool(false)
			}
		}
		rollbackPreservingLeaks(env.Trail, m, leak)
		return ctx.loopBody(cond, body, step, leak, k, env)
	})
}

// rollbackPreservingLeaks backtracks tr to m, then restores whatever value
// each variable named in leak held right before the rollback — the "leaked"
// variables are the only state an iteration is allowed to carry forward.
func rollbackPreservingLeaks(tr *Trail, m Mark, leak Term) {
	items, _ := listPrefix(leak)
	saved := make([]Term, len(items))
	for i, v := range items {
		saved[i] = Dereference(v)
	}
	tr.Backtrack(m)
	for i, v := range items {
		if vv, ok := Dereference(v).(*Variable); ok && vv.ref == nil {
			bindVariableTrailed(tr, vv, saved[i])
		}
	}
}

// SwitchStmt tries each case(Pattern, Branch) in cases against selector
// using one-way unification, in source order; the first match commits to
// its branch. def runs for an unmatched selector; a nil def or the atom
// `none` means there is no default, and an unmatched selector then fails.
func (ctx *Context) SwitchStmt(selector, cases, def Term, k Cont, env *Env) *Promise {
	return Delay(func(c context.Context) *Promise {
		items, _ := listPrefix(cases)
		m := env.Trail.Mark()
		for _, item := range items {
			cc, ok := Dereference(item).(Compound)
			if !ok || cc.Functor() != atomCase || cc.Arity() != 2 {
				continue
			}
			pattern, branch := cc.Arg(0), cc.Arg(1)
			if Unify(env.Trail, selector, pattern, ModeOneWay) {
				return ctx.Solve(branch, nil, k, env)
			}
			env.Trail.Backtrack(m)
		}
		if def != nil {
			if a, isAtom := Dereference(def).(Atom); !isAtom || a != atomNone {
				return ctx.Solve(def, nil, k, env)
			}
		}
		return Bool(false)
	})
}
