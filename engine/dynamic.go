package engine

import "context"

// builtinProcedures names every control-construct and database predicate
// the interpreter dispatches directly in goal.go rather than storing in
// the clause database. They behave as permanently static procedures: any
// assert/retract/abolish naming one of them is a permission violation, the
// same as abolish(abolish/1) in the literal end-to-end scenario.
var builtinProcedures = map[predicateKey]bool{
	{Name: "true", Arity: 0}:        true,
	{Name: "fail", Arity: 0}:        true,
	{Name: "false", Arity: 0}:       true,
	{Name: "!", Arity: 0}:           true,
	{Name: ",", Arity: 2}:           true,
	{Name: "&&", Arity: 2}:          true,
	{Name: ";", Arity: 2}:           true,
	{Name: "||", Arity: 2}:          true,
	{Name: "->", Arity: 2}:          true,
	{Name: "=>", Arity: 2}:          true,
	{Name: "<=>", Arity: 2}:         true,
	{Name: "\\+", Arity: 1}:         true,
	{Name: "!", Arity: 1}:           true,
	{Name: "catch", Arity: 3}:       true,
	{Name: "throw", Arity: 1}:       true,
	{Name: "halt", Arity: 0}:        true,
	{Name: "halt", Arity: 1}:        true,
	{Name: "in", Arity: 2}:          true,
	{Name: "=", Arity: 2}:           true,
	{Name: "\\=", Arity: 2}:         true,
	{Name: "==", Arity: 2}:          true,
	{Name: "\\==", Arity: 2}:        true,
	{Name: "asserta", Arity: 1}:     true,
	{Name: "assertz", Arity: 1}:     true,
	{Name: "retract", Arity: 1}:     true,
	{Name: "abolish", Arity: 1}:     true,
	{Name: "dynamic", Arity: 1}:     true,
	{Name: "for_stmt", Arity: 5}:       true,
	{Name: "while_stmt", Arity: 3}:     true,
	{Name: "do_while_stmt", Arity: 3}:  true,
	{Name: "switch_stmt", Arity: 3}:    true,
}

func init() {
	for n := 1; n <= 8; n++ {
		builtinProcedures[predicateKey{Name: "call", Arity: n}] = true
	}
}

// splitClauseTerm decomposes a clause term T into a head name/args pair and
// a body, treating a top-level ":-"/2 functor as Head:-Body and anything
// else as a fact (Head:-true).
func splitClauseTerm(t Term) (name Atom, args []Term, body Term, ok bool) {
	d := Dereference(t)
	if c, isC := d.(Compound); isC && c.Functor() == NewAtom(":-") && c.Arity() == 2 {
		name, args, ok = asHead(Dereference(c.Arg(0)))
		return name, args, c.Arg(1), ok
	}
	name, args, ok = asHead(d)
	return name, args, atomTrue, ok
}

// asHead normalizes a clause head into its name and argument list; a bare
// atom head has no arguments.
func asHead(t Term) (Atom, []Term, bool) {
	switch v := t.(type) {
	case Atom:
		return v, nil, true
	case Compound:
		args := make([]Term, v.Arity())
		for i := range args {
			args[i] = v.Arg(i)
		}
		return v.Functor(), args, true
	default:
		return "", nil, false
	}
}

func (ctx *Context) staticGuard(key predicateKey) *Promise {
	if builtinProcedures[key] {
		pi, _ := CreatePredicate(key.Name, key.Arity)
		return Error(PermissionError(operationModify, permissionTypeStaticProcedure, pi.AsTerm()))
	}
	if proc, ok := ctx.DB.lookup(key.Name, key.Arity); ok && proc.static {
		pi, _ := CreatePredicate(key.Name, key.Arity)
		return Error(PermissionError(operationModify, permissionTypeStaticProcedure, pi.AsTerm()))
	}
	return nil
}

// Asserta inserts T as the first clause of its predicate.
func (ctx *Context) Asserta(t Term, k Cont, env *Env) *Promise {
	return ctx.assert(t, true, k, env)
}

// Assertz inserts T as the last clause of its predicate.
func (ctx *Context) Assertz(t Term, k Cont, env *Env) *Promise {
	return ctx.assert(t, false, k, env)
}

func (ctx *Context) assert(t Term, front bool, k Cont, env *Env) *Promise {
	name, headArgsT, body, ok := splitClauseTerm(t)
	if !ok {
		d := Dereference(t)
		if _, isVar := d.(*Variable); isVar {
			return Error(InstantiationError())
		}
		return Error(TypeError(validTypeCallable, d))
	}
	key := predicateKey{Name: name, Arity: len(headArgsT)}
	if guard := ctx.staticGuard(key); guard != nil {
		// A freshly-dynamic predicate (declared via `dynamic` first) is
		// exempt; only a predicate that's static because it was never
		// declared dynamic blocks assertion.
		if proc, exists := ctx.DB.lookup(key.Name, key.Arity); !exists || !proc.dynamic {
			return guard
		}
	}
	ctx.DB.declareDynamic(key.Name, key.Arity)
	mapping := map[*Variable]*Variable{}
	args := make([]Term, len(headArgsT))
	for i, a := range headArgsT {
		args[i] = renameTerm(a, mapping)
	}
	renamedBody := renameTerm(body, mapping)
	proc := ctx.DB.ensure(key.Name, key.Arity)
	argKey := ArgKey{Kind: ArgKindVariable}
	if len(args) > 0 {
		argKey = ArgumentKey(args[0])
	}
	c := &clause{headArgs: args, body: renamedBody, key: argKey}
	if front {
		proc.clauses = append([]*clause{c}, proc.clauses...)
	} else {
		proc.clauses = append(proc.clauses, c)
	}
	return k(env)
}

// Retract removes the first clause whose head+body unifies with T,
// succeeding with the bindings that unification produced. Re-execution
// continues searching from the next clause.
func (ctx *Context) Retract(t Term, k Cont, env *Env) *Promise {
	name, wantArgs, body, ok := splitClauseTerm(t)
	if !ok {
		return Error(TypeError(validTypeCallable, Dereference(t)))
	}
	key := predicateKey{Name: name, Arity: len(wantArgs)}
	if guard := ctx.staticGuard(key); guard != nil {
		return guard
	}
	proc, exists := ctx.DB.lookup(key.Name, key.Arity)
	if !exists {
		return Bool(false)
	}
	idx := 0
	start := env.Trail.Mark()
	next := func() (PromiseFunc, bool) {
		for idx < len(proc.clauses) {
			c := proc.clauses[idx]
			i := idx
			idx++
			return func(context.Context) *Promise {
				env.Trail.Backtrack(start)
				m := env.Trail.Mark()
				renamedArgs, renamedBody := renameClause(c)
				matched := true
				for j := range wantArgs {
					if !Unify(env.Trail, wantArgs[j], renamedArgs[j], ModeDefault) {
						matched = false
						break
					}
				}
				if matched && !Unify(env.Trail, body, renamedBody, ModeDefault) {
					matched = false
				}
				if !matched {
					env.Trail.Backtrack(m)
					return Bool(false)
				}
				proc.clauses = append(append([]*clause{}, proc.clauses[:i]...), proc.clauses[i+1:]...)
				idx = i // the next clause has moved into the removed slot
				return k(env)
			}, true
		}
		return nil, false
	}
	return DelaySeq(next)
}

// Abolish removes every clause of the Name/Arity indicator T, or raises
// permission_error for a static (including built-in) procedure.
func (ctx *Context) Abolish(t Term, k Cont, env *Env) *Promise {
	d := Dereference(t)
	pi, ok := d.(*PredicateIndicator)
	if !ok {
		if c, isC := d.(Compound); isC && c.Functor() == NewAtom("/") && c.Arity() == 2 {
			name, nOK := Dereference(c.Arg(0)).(Atom)
			arity, aOK := Dereference(c.Arg(1)).(Integer)
			if nOK && aOK {
				pi = &PredicateIndicator{Name: name, Arity: int(arity)}
				ok = true
			}
		}
	}
	if !ok {
		return Error(TypeError(validTypePredicateIndicator, d))
	}
	key := predicateKey{Name: pi.Name, Arity: pi.Arity}
	if guard := ctx.staticGuard(key); guard != nil {
		return guard
	}
	if proc, exists := ctx.DB.lookup(key.Name, key.Arity); exists {
		proc.clauses = nil
	}
	return k(env)
}

// Dynamic declares T's predicate(s) dynamic, creating an empty procedure if
// none exists yet. T may be a single Name/Arity indicator or a
// conjunction/list of them.
func (ctx *Context) Dynamic(t Term, k Cont, env *Env) *Promise {
	if err := ctx.declareDynamicTerm(t); err != nil {
		return Error(*err)
	}
	return k(env)
}

func (ctx *Context) declareDynamicTerm(t Term) *Exception {
	d := Dereference(t)
	switch c := d.(type) {
	case *PredicateIndicator:
		ctx.DB.declareDynamic(c.Name, c.Arity)
		return nil
	case *list:
		items, _ := listPrefix(d)
		for _, item := range items {
			if err := ctx.declareDynamicTerm(item); err != nil {
				return err
			}
		}
		return nil
	case Compound:
		if c.Functor() == NewAtom("/") && c.Arity() == 2 {
			name, nOK := Dereference(c.Arg(0)).(Atom)
			arity, aOK := Dereference(c.Arg(1)).(Integer)
			if nOK && aOK {
				ctx.DB.declareDynamic(name, int(arity))
				return nil
			}
		}
		if c.Functor() == atomComma && c.Arity() == 2 {
			if err := ctx.declareDynamicTerm(c.Arg(0)); err != nil {
				return err
			}
			return ctx.declareDynamicTerm(c.Arg(1))
		}
	}
	ex := TypeError(validTypePredicateIndicator, d)
	return &ex
}
