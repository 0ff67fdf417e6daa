package engine

// UnifyMode selects one of the three unification semantics the matcher and
// builder VM can request.
type UnifyMode int

const (
	// ModeDefault is symmetric unification with occurs-check.
	ModeDefault UnifyMode = iota
	// ModeOneWay only binds variables on the t2 side.
	ModeOneWay
	// ModeEquality succeeds only for structurally identical terms that
	// already share variable identity; it never creates bindings.
	ModeEquality
)

// Unify attempts to unify t1 and t2 under mode. It returns false without
// raising on failure; any bindings made along a failed path are left on
// the trail for the caller to roll back via Backtrack.
func Unify(tr *Trail, t1, t2 Term, mode UnifyMode) bool {
	return unify(tr, t1, t2, mode)
}

// UnifyWithOccursCheck is an alias of default-mode Unify.
func UnifyWithOccursCheck(tr *Trail, t1, t2 Term) bool {
	return unify(tr, t1, t2, ModeDefault)
}

// Unifiable tests t1 against t2 and unconditionally rolls back any
// bindings it made.
func Unifiable(tr *Trail, t1, t2 Term, mode UnifyMode) bool {
	m := tr.Mark()
	ok := unify(tr, t1, t2, mode)
	tr.Backtrack(m)
	return ok
}

func unify(tr *Trail, t1, t2 Term, mode UnifyMode) bool {
	t1, t2 = Dereference(t1), Dereference(t2)

	bind1, isVar1 := asFreeVariable(t1)
	bind2, isVar2 := asFreeVariable(t2)

	switch mode {
	case ModeEquality:
		switch {
		case isVar1 && isVar2:
			return sameVariableIdentity(t1, t2)
		case isVar1 || isVar2:
			return false
		default:
			return unifyNonVar(tr, t1, t2, mode)
		}
	case ModeOneWay:
		switch {
		case isVar2:
			return bind2(tr, t1, mode)
		case isVar1:
			// Free variables on the t1 side may not receive a binding in
			// one-way mode; only an exact variable-to-variable match
			// (handled above, since that also lands in isVar2) is allowed
			// when the opposing side isn't a variable too.
			return false
		default:
			return unifyNonVar(tr, t1, t2, mode)
		}
	default: // ModeDefault
		switch {
		case isVar1 && isVar2:
			if sameVariableIdentity(t1, t2) {
				return true
			}
			return bind1(tr, t2, mode)
		case isVar1:
			return bind1(tr, t2, mode)
		case isVar2:
			return bind2(tr, t1, mode)
		default:
			return unifyNonVar(tr, t1, t2, mode)
		}
	}
}

// asFreeVariable reports whether t — already dereferenced, so a bound
// variable of either kind never reaches here — is an unbound *Variable or
// *MemberVariable, returning a closure that binds it to a target term. This
// is what makes the two variable kinds interchangeable everywhere unify
// decides which side receives a binding, per the "member-variables are
// treated as variables" rule.
func asFreeVariable(t Term) (bind func(tr *Trail, target Term, mode UnifyMode) bool, ok bool) {
	switch v := t.(type) {
	case *Variable:
		return func(tr *Trail, target Term, mode UnifyMode) bool {
			return bindVariable(tr, v, target, mode)
		}, true
	case *MemberVariable:
		return func(tr *Trail, target Term, mode UnifyMode) bool {
			return bindMemberOrFallback(tr, v, target, mode)
		}, true
	default:
		return nil, false
	}
}

// sameVariableIdentity reports whether a and b are the same variable cell —
// the same *Variable pointer, or the same object property slot for two
// *MemberVariable values. Variables of different kinds are never the same
// cell.
func sameVariableIdentity(a, b Term) bool {
	switch av := a.(type) {
	case *Variable:
		bv, ok := b.(*Variable)
		return ok && av == bv
	case *MemberVariable:
		bv, ok := b.(*MemberVariable)
		return ok && av.slot == bv.slot
	default:
		return false
	}
}

// bindVariable binds v to t, occurs-checking in default mode: cyclic
// structures are disallowed by refusing the bind, not by raising.
func bindVariable(tr *Trail, v *Variable, t Term, mode UnifyMode) bool {
	if mode == ModeDefault && occurs(v, t) {
		return false
	}
	bindVariableTrailed(tr, v, t)
	return true
}

// occurs reports whether v appears anywhere inside t.
func occurs(v *Variable, t Term) bool {
	switch t := Dereference(t).(type) {
	case *Variable:
		return t == v
	case *MemberVariable:
		return false
	case Compound:
		for i := 0; i < t.Arity(); i++ {
			if occurs(v, t.Arg(i)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// unifyNonVar compares t1 against t2 once neither side is an unbound
// variable of either kind (asFreeVariable in unify has already peeled those
// off), so neither operand here is ever a *Variable or *MemberVariable.
func unifyNonVar(tr *Trail, t1, t2 Term, mode UnifyMode) bool {
	switch a := t1.(type) {
	case Atom:
		return unifyAtom(a, t2)
	case String:
		b, ok := t2.(String)
		return ok && a == b
	case Integer:
		b, ok := t2.(Integer)
		return ok && a == b
	case Real:
		b, ok := t2.(Real)
		return ok && a.Eq(b)
	case Compound:
		b, ok := t2.(Compound)
		if !ok {
			if at, ok := t2.(Atom); ok {
				return unifyAtom(at, a)
			}
			return false
		}
		return unifyCompound(tr, a, b, mode)
	case *Object:
		b, ok := t2.(*Object)
		return ok && a == b
	case *PredicateIndicator:
		b, ok := t2.(*PredicateIndicator)
		return ok && a.Name == b.Name && a.Arity == b.Arity
	default:
		return false
	}
}

func unifyAtom(a Atom, t2 Term) bool {
	switch b := t2.(type) {
	case Atom:
		return a == b
	case Compound:
		return b.Arity() == 0 && b.Functor() == a
	default:
		return false
	}
}

// bindMemberOrFallback binds mv's property slot to t, occurs-checking in
// default mode exactly like bindVariable does for a free *Variable.
func bindMemberOrFallback(tr *Trail, mv *MemberVariable, t Term, mode UnifyMode) bool {
	if mode == ModeDefault && occursMember(mv, t) {
		return false
	}
	tr.push(undoRecord{kind: undoProperty, obj: mv.obj, key: mv.name, slot: mv.slot, prevTerm: mv.slot.term, slotExisted: true})
	mv.slot.term = t
	return true
}

func occursMember(mv *MemberVariable, t Term) bool {
	switch t := Dereference(t).(type) {
	case *MemberVariable:
		return t == mv
	case Compound:
		for i := 0; i < t.Arity(); i++ {
			if occursMember(mv, t.Arg(i)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func unifyCompound(tr *Trail, a, b Compound, mode UnifyMode) bool {
	if a.Functor() != b.Functor() || a.Arity() != b.Arity() {
		return false
	}
	for i := 0; i < a.Arity(); i++ {
		if !unify(tr, a.Arg(i), b.Arg(i), mode) {
			return false
		}
	}
	return true
}
