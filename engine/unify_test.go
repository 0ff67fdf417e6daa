package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnify_Default(t *testing.T) {
	tests := []struct {
		title string
		t1    func() Term
		t2    func() Term
		ok    bool
	}{
		{"atom=atom same", func() Term { return Atom("a") }, func() Term { return Atom("a") }, true},
		{"atom=atom different", func() Term { return Atom("a") }, func() Term { return Atom("b") }, false},
		{"integer=integer same", func() Term { return Integer(1) }, func() Term { return Integer(1) }, true},
		{"integer=integer different", func() Term { return Integer(1) }, func() Term { return Integer(2) }, false},
		{"var=atom binds", func() Term { return NewVariable() }, func() Term { return Atom("a") }, true},
		{"compound=compound same shape", func() Term { return Atom("f").Apply(Atom("a"), Integer(1)) }, func() Term { return Atom("f").Apply(Atom("a"), Integer(1)) }, true},
		{"compound=compound different arity", func() Term { return Atom("f").Apply(Atom("a")) }, func() Term { return Atom("f").Apply(Atom("a"), Atom("b")) }, false},
		{"compound=compound different functor", func() Term { return Atom("f").Apply(Atom("a")) }, func() Term { return Atom("g").Apply(Atom("a")) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			tr := NewTrail()
			assert.Equal(t, tt.ok, Unify(tr, tt.t1(), tt.t2(), ModeDefault))
		})
	}
}

func TestUnify_Default_BindsBothDirections(t *testing.T) {
	tr := NewTrail()
	v := NewVariable()
	assert.True(t, Unify(tr, v, Atom("a"), ModeDefault))
	assert.Equal(t, Term(Atom("a")), Dereference(v))

	tr2 := NewTrail()
	v2 := NewVariable()
	assert.True(t, Unify(tr2, Atom("b"), v2, ModeDefault))
	assert.Equal(t, Term(Atom("b")), Dereference(v2))
}

func TestUnify_Default_VariableToVariable(t *testing.T) {
	tr := NewTrail()
	a, b := NewVariable(), NewVariable()
	assert.True(t, Unify(tr, a, b, ModeDefault))
	assert.True(t, Dereference(a) == Term(b) || Dereference(b) == Term(a))
}

func TestUnify_OccursCheck(t *testing.T) {
	tr := NewTrail()
	v := NewVariable()
	cyclic := Atom("f").Apply(v)
	assert.False(t, Unify(tr, v, cyclic, ModeDefault))
}

func TestUnify_OneWay_OnlyBindsRightSide(t *testing.T) {
	tr := NewTrail()
	left := NewVariable()
	assert.False(t, Unify(tr, left, Atom("a"), ModeOneWay), "an unbound left-side variable may not receive a binding")

	tr2 := NewTrail()
	right := NewVariable()
	assert.True(t, Unify(tr2, Atom("a"), right, ModeOneWay))
	assert.Equal(t, Term(Atom("a")), Dereference(right))
}

func TestUnify_Equality(t *testing.T) {
	tr := NewTrail()
	v := NewVariable()
	assert.True(t, Unify(tr, v, v, ModeEquality), "identical variable compares equal to itself")

	tr2 := NewTrail()
	a, b := NewVariable(), NewVariable()
	assert.False(t, Unify(tr2, a, b, ModeEquality), "equality mode never binds distinct variables")
	assert.Nil(t, a.ref)
	assert.Nil(t, b.ref)

	tr3 := NewTrail()
	assert.True(t, Unify(tr3, Atom("f").Apply(Atom("a")), Atom("f").Apply(Atom("a")), ModeEquality))
	assert.False(t, Unify(tr3, NewVariable(), Atom("a"), ModeEquality))
}

func TestUnifiable_RollsBackOnSuccess(t *testing.T) {
	tr := NewTrail()
	v := NewVariable()
	assert.True(t, Unifiable(tr, v, Atom("a"), ModeDefault))
	assert.Nil(t, v.ref, "Unifiable must not leave bindings behind")
}

func TestUnifiable_RollsBackOnFailure(t *testing.T) {
	tr := NewTrail()
	v := NewVariable()
	bindVariableTrailed(tr, v, Atom("a"))
	m := tr.Mark()
	assert.False(t, Unifiable(tr, v, Atom("b"), ModeDefault))
	assert.Equal(t, m, tr.Mark())
}
