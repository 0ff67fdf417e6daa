package engine

import (
	"errors"
	"io"
)

// Standard property names every context reuses by name.
const (
	atomPrototype = Atom("prototype")
	atomClassName = Atom("className")
)

var (
	errNotAnObject       = errors.New("not an object")
	errNonAtomKey        = errors.New("property key is not an atom")
	errBadPrototypeValue = errors.New("prototype must be a class object")
	errBadClassNameValue = errors.New("className must be an atom")
)

// propSlot is a property's binding cell. It is addressed by pointer so a
// MemberVariable can share identity with the slot it names.
type propSlot struct {
	term Term
}

// Object is a property-table term: either a class (className set) or an
// instance (prototype pointing at its class). The physical table is never
// exposed; callers only see own-property/property/add-property.
type Object struct {
	props map[Atom]*propSlot
	order []Atom // insertion order, for deterministic printing/iteration
}

func newObject() *Object {
	return &Object{props: map[Atom]*propSlot{}}
}

// CreateClassObject allocates a class object named className, optionally
// chained to parent. parent may be nil for a root class.
func CreateClassObject(className Atom, parent *Object) *Object {
	o := newObject()
	o.setRaw(atomClassName, className)
	if parent != nil {
		o.setRaw(atomPrototype, parent)
	}
	return o
}

// CreateObject allocates an instance of class, or a bare object when class
// is nil.
func CreateObject(class *Object) *Object {
	o := newObject()
	if class != nil {
		o.setRaw(atomPrototype, class)
	}
	return o
}

func (o *Object) setRaw(key Atom, t Term) {
	slot, ok := o.props[key]
	if !ok {
		slot = &propSlot{}
		o.props[key] = slot
		o.order = append(o.order, key)
	}
	slot.term = t
}

// className returns the object's className atom, walking to its class if
// o is itself an instance, for diagnostic printing only.
func (o *Object) className() Atom {
	if cn, ok := o.props[atomClassName]; ok {
		if a, ok := cn.term.(Atom); ok {
			return a
		}
	}
	if p, ok := o.props[atomPrototype]; ok {
		if po, ok := p.term.(*Object); ok {
			return po.className()
		}
	}
	return Atom("object")
}

// OwnProperty looks up key in o's local table only, with no prototype-chain
// walk.
func OwnProperty(o *Object, key Atom) (Term, bool) {
	slot, ok := o.props[key]
	if !ok || slot.term == nil {
		return nil, false
	}
	return slot.term, true
}

// Property looks up key, walking the prototype chain when o doesn't carry
// it directly. The walk stops at an object it has already visited, so it
// terminates even if AddProperty has made the chain cyclic.
func Property(o *Object, key Atom) (Term, bool) {
	seen := map[*Object]bool{}
	for cur := o; cur != nil && !seen[cur]; {
		seen[cur] = true
		if v, ok := OwnProperty(cur, key); ok {
			return v, true
		}
		proto, ok := cur.props[atomPrototype]
		if !ok {
			return nil, false
		}
		next, ok := proto.term.(*Object)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// AddProperty sets key to value on t, rejecting overwriting prototype with
// a non-object value, className with a non-atom value, writing to a
// non-object term, or a non-atom key.
func AddProperty(t Term, key Term, value Term) error {
	o, ok := t.(*Object)
	if !ok {
		return errNotAnObject
	}
	k, ok := Dereference(key).(Atom)
	if !ok {
		return errNonAtomKey
	}
	v := Dereference(value)
	switch k {
	case atomPrototype:
		if _, ok := v.(*Object); !ok {
			return errBadPrototypeValue
		}
	case atomClassName:
		if _, ok := v.(Atom); !ok {
			return errBadClassNameValue
		}
	}
	o.setRaw(k, v)
	return nil
}

// AddPropertyTrailed is AddProperty made reversible: the prior value (or
// absence) of the slot is recorded on tr so a later backtrack restores it.
func AddPropertyTrailed(tr *Trail, t Term, key Term, value Term) error {
	o, ok := t.(*Object)
	if !ok {
		return errNotAnObject
	}
	k, ok := Dereference(key).(Atom)
	if !ok {
		return errNonAtomKey
	}
	v := Dereference(value)
	switch k {
	case atomPrototype:
		if _, ok := v.(*Object); !ok {
			return errBadPrototypeValue
		}
	case atomClassName:
		if _, ok := v.(Atom); !ok {
			return errBadClassNameValue
		}
	}

	slot, existed := o.props[k]
	if !existed {
		slot = &propSlot{}
	}
	prev := slot.term
	tr.push(undoRecord{kind: undoProperty, obj: o, key: k, slot: slot, prevTerm: prev, slotExisted: existed})
	if !existed {
		o.props[k] = slot
		o.order = append(o.order, k)
	}
	slot.term = v
	return nil
}

func (o *Object) WriteTerm(w io.Writer, opts *WriteOptions, env *Env) error {
	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, k := range o.order {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := k.WriteTerm(w, opts, env); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		v := o.props[k].term
		if v == nil {
			v = NewVariable()
		}
		if err := v.WriteTerm(w, opts, env); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

func (o *Object) Compare(t Term, env *Env) int {
	return compareByKind(o, t, func(other Term) int {
		p := other.(*Object)
		switch {
		case o == p:
			return 0
		case fmtPtr(o) < fmtPtr(p):
			return -1
		default:
			return 1
		}
	})
}
