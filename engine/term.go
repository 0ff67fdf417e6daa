package engine

import (
	"io"
)

// Term is any value the term store can allocate: an atom, string, integer,
// real, variable, member variable, list, functor, predicate indicator, or
// object.
type Term interface {
	// WriteTerm writes a canonical textual form of the term to w.
	WriteTerm(w io.Writer, opts *WriteOptions, env *Env) error
	// Compare returns -1, 0 or 1 comparing the receiver to t under the
	// standard order of terms.
	Compare(t Term, env *Env) int
}

// Env threads the trail through term operations that need to make
// reversible mutations. Unlike a substitution map, binding state lives on
// the Variable/MemberVariable nodes themselves; Env only carries the Trail
// that makes those bindings undoable, plus an OccursCheck field. No
// unification path reads OccursCheck: default-mode Unify always performs
// the occurs check.
type Env struct {
	Trail       *Trail
	OccursCheck bool
}

// WriteOptions controls how WriteTerm renders a term.
type WriteOptions struct {
	Quoted        bool
	IgnoreOps     bool
	VariableNames map[*Variable]Atom
	MaxDepth      int
}

var defaultWriteOptions = WriteOptions{}

// Dereference follows a variable's (or member variable's) binding chain
// until it reaches a non-variable term or an unbound variable. Because
// binding only ever targets a previously-unbound variable, and default-mode
// binding is occurs-checked, this walk always terminates.
func Dereference(t Term) Term {
	for {
		switch v := t.(type) {
		case *Variable:
			if v.ref == nil {
				return v
			}
			t = v.ref
		case *MemberVariable:
			ref := v.slot.term
			if ref == nil {
				return v
			}
			t = ref
		default:
			return t
		}
	}
}

// kindRank implements the standard order of terms:
// variable < real < integer < string < atom < functor/list. Predicate
// indicators and objects aren't part of that base ordering; they're placed
// above functor/list, each in their own rank so their Compare never has to
// type-assert against an unrelated Compound.
func kindRank(t Term) int {
	switch t.(type) {
	case *Variable, *MemberVariable:
		return 0
	case Real:
		return 1
	case Integer:
		return 2
	case String:
		return 3
	case *PredicateIndicator:
		return 6
	case *Object:
		return 7
	case Atom:
		return 4
	default:
		return 5
	}
}

// Precedes implements the standard order of terms comparator. It returns
// -1, 0 or 1.
func Precedes(a, b Term) int {
	a = Dereference(a)
	return a.Compare(b, nil)
}

// compareByKind is the common shape of every atomic Compare method: if the
// other term resolves to a different kind, the kind ranking decides;
// otherwise cmp decides between two values of the same kind.
func compareByKind(t Term, other Term, cmp func(Term) int) int {
	other = Dereference(other)
	rt, ro := kindRank(t), kindRank(other)
	if rt != ro {
		if rt < ro {
			return -1
		}
		return 1
	}
	return cmp(other)
}
