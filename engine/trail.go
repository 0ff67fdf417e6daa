package engine

// Trail is a strictly growing stack of reversible-mutation records.
// mark/backtrack are its only two primitive operations; every other
// mutation that must survive a failed branch goes through push plus one of
// the bindXxxTrailed helpers below.
type Trail struct {
	entries []undoRecord
}

// NewTrail returns an empty trail.
func NewTrail() *Trail { return &Trail{} }

// Mark is an opaque position token returned by Mark and consumed by
// Backtrack.
type Mark int

// Mark returns a position token for the trail's current length.
func (t *Trail) Mark() Mark { return Mark(len(t.entries)) }

// Len reports how many undo records are currently on the trail.
func (t *Trail) Len() int { return len(t.entries) }

type undoKind int

const (
	undoVariable undoKind = iota
	undoFunctorArg
	undoListTail
	undoProperty
)

type undoRecord struct {
	kind undoKind

	// undoVariable / undoFunctorArg share a generic "slot" concept but
	// need different receivers to restore into, so each kind carries only
	// the fields it needs.
	v *Variable

	f   *functor
	idx int

	l       *list
	oldTail Term

	obj         *Object
	key         Atom
	slot        *propSlot
	prevTerm    Term
	slotExisted bool
}

func (t *Trail) push(r undoRecord) {
	t.entries = append(t.entries, r)
}

// Backtrack pops entries and applies their inverse in LIFO order down to
// mark.
func (t *Trail) Backtrack(m Mark) {
	for len(t.entries) > int(m) {
		last := len(t.entries) - 1
		r := t.entries[last]
		t.entries = t.entries[:last]
		switch r.kind {
		case undoVariable:
			r.v.ref = nil
		case undoFunctorArg:
			r.f.args[r.idx] = nil
		case undoListTail:
			r.l.tail = r.oldTail
		case undoProperty:
			if !r.slotExisted {
				delete(r.obj.props, r.key)
				for i, k := range r.obj.order {
					if k == r.key {
						r.obj.order = append(r.obj.order[:i], r.obj.order[i+1:]...)
						break
					}
				}
			} else {
				r.slot.term = r.prevTerm
			}
		}
	}
}

// bindVariableTrailed binds v to value, recording the mutation so it can
// be undone. v must be unbound; callers (the unifier) are responsible for
// checking that first.
func bindVariableTrailed(tr *Trail, v *Variable, value Term) {
	tr.push(undoRecord{kind: undoVariable, v: v})
	v.ref = value
}

// bindFunctorArgTrailed is BindFunctorArg made reversible: the write is
// recorded on tr so a backtrack clears the slot again. The matcher/builder
// VM does not call it; RunBuilder builds functors with
// CreateFunctorWithArgs.
func bindFunctorArgTrailed(tr *Trail, t Term, i int, term Term) error {
	f, ok := t.(*functor)
	if !ok {
		return errNotAFunctor
	}
	if i < 0 || i >= len(f.args) {
		return errArgOutOfRange
	}
	if term == nil {
		return errNilTerm
	}
	if f.args[i] != nil {
		if f.args[i] != term {
			return errArgAlreadySet
		}
		return nil
	}
	tr.push(undoRecord{kind: undoFunctorArg, f: f, idx: i})
	f.args[i] = term
	return nil
}

// setTailTrailed is SetTail made reversible.
func setTailTrailed(tr *Trail, l *list, newTail Term) {
	tr.push(undoRecord{kind: undoListTail, l: l, oldTail: l.tail})
	l.tail = newTail
}
