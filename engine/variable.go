package engine

import (
	"fmt"
	"io"
	"sync/atomic"
)

// varCounter gives every Variable a creation-order id, used only for
// printing anonymous names and for breaking ties in the standard order of
// terms; identity itself is the pointer.
var varCounter int64

// Variable is a free or bound logic variable. Its binding slot (ref) is
// mutated in place and undone through the Trail; two distinct variables
// that happen to share a name must never compare equal, which pointer
// identity gives for free.
type Variable struct {
	id   int64
	name Atom // atomEmpty means anonymous
	ref  Term
}

// NewVariable creates a fresh anonymous variable.
func NewVariable() *Variable {
	return &Variable{id: atomic.AddInt64(&varCounter, 1)}
}

// NewNamedVariable creates a fresh variable carrying name for printing. A
// zero/empty name behaves like NewVariable.
func NewNamedVariable(name Atom) *Variable {
	v := NewVariable()
	v.name = name
	return v
}

// Name returns the variable's name, or atomEmpty when anonymous.
func (v *Variable) Name() Atom { return v.name }

func (v *Variable) WriteTerm(w io.Writer, opts *WriteOptions, env *Env) error {
	if r := Dereference(v); r != Term(v) {
		return r.WriteTerm(w, opts, env)
	}
	if opts != nil && opts.VariableNames != nil {
		if n, ok := opts.VariableNames[v]; ok {
			return n.WriteTerm(w, opts, env)
		}
	}
	_, err := fmt.Fprintf(w, "_%d", v.id)
	return err
}

func (v *Variable) Compare(t Term, env *Env) int {
	if r := Dereference(v); r != Term(v) {
		return r.Compare(t, env)
	}
	return compareByKind(v, t, func(other Term) int {
		o, ok := other.(*Variable)
		if !ok {
			return -1 // same kind rank as *MemberVariable; Variable sorts first
		}
		switch {
		case v.id < o.id:
			return -1
		case v.id > o.id:
			return 1
		default:
			return 0
		}
	})
}

// MemberVariable is a variable whose identity is tied to an object-slot
// pair rather than a free binding cell. Its binding slot lives on the
// object's property table; binding a MemberVariable mutates that slot
// through the trail exactly like a free variable's ref.
type MemberVariable struct {
	obj  *Object
	name Atom
	slot *propSlot
}

// NewMemberVariable returns the MemberVariable for obj's name property,
// creating an unbound own-property slot first if none exists.
func NewMemberVariable(obj *Object, name Atom) *MemberVariable {
	slot, ok := obj.props[name]
	if !ok {
		slot = &propSlot{}
		obj.props[name] = slot
		obj.order = append(obj.order, name)
	}
	return &MemberVariable{obj: obj, name: name, slot: slot}
}

func (v *MemberVariable) WriteTerm(w io.Writer, opts *WriteOptions, env *Env) error {
	if r := Dereference(v); r != Term(v) {
		return r.WriteTerm(w, opts, env)
	}
	_, err := fmt.Fprintf(w, "%s.%s", v.obj.className(), string(v.name))
	return err
}

func (v *MemberVariable) Compare(t Term, env *Env) int {
	if r := Dereference(v); r != Term(v) {
		return r.Compare(t, env)
	}
	return compareByKind(v, t, func(other Term) int {
		o, ok := other.(*MemberVariable)
		if !ok {
			return 1 // same kind rank as *Variable; MemberVariable sorts after
		}
		if v.obj != o.obj {
			pv, po := fmt.Sprintf("%p", v.obj), fmt.Sprintf("%p", o.obj)
			if pv < po {
				return -1
			}
			return 1
		}
		switch {
		case v.name < o.name:
			return -1
		case v.name > o.name:
			return 1
		default:
			return 0
		}
	})
}
