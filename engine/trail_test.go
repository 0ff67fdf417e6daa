package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrail_MarkBacktrack(t *testing.T) {
	tr := NewTrail()
	v1 := NewVariable()
	v2 := NewVariable()

	m0 := tr.Mark()
	bindVariableTrailed(tr, v1, Atom("a"))
	m1 := tr.Mark()
	bindVariableTrailed(tr, v2, Atom("b"))

	assert.Equal(t, Term(Atom("a")), v1.ref)
	assert.Equal(t, Term(Atom("b")), v2.ref)

	tr.Backtrack(m1)
	assert.Equal(t, Term(Atom("a")), v1.ref)
	assert.Nil(t, v2.ref)

	tr.Backtrack(m0)
	assert.Nil(t, v1.ref)
	assert.Nil(t, v2.ref)
}

func TestTrail_BacktrackFunctorArg(t *testing.T) {
	tr := NewTrail()
	f, err := CreateFunctor(NewAtom("f"), 2)
	assert.NoError(t, err)

	m := tr.Mark()
	assert.NoError(t, bindFunctorArgTrailed(tr, f, 0, Atom("a")))
	assert.Equal(t, Term(Atom("a")), f.(*functor).args[0])

	tr.Backtrack(m)
	assert.Nil(t, f.(*functor).args[0])
}

func TestTrail_BacktrackListTail(t *testing.T) {
	tr := NewTrail()
	l := &list{head: Atom("a"), tail: listNil}

	m := tr.Mark()
	setTailTrailed(tr, l, Atom("b"))
	assert.Equal(t, Term(Atom("b")), l.tail)

	tr.Backtrack(m)
	assert.Equal(t, Term(listNil), l.tail)
}

func TestTrail_NestedMarks(t *testing.T) {
	tr := NewTrail()
	vs := make([]*Variable, 5)
	for i := range vs {
		vs[i] = NewVariable()
	}

	marks := make([]Mark, len(vs))
	for i, v := range vs {
		marks[i] = tr.Mark()
		bindVariableTrailed(tr, v, Integer(i))
	}

	tr.Backtrack(marks[2])
	assert.NotNil(t, vs[0].ref)
	assert.NotNil(t, vs[1].ref)
	assert.Nil(t, vs[2].ref)
	assert.Nil(t, vs[3].ref)
	assert.Nil(t, vs[4].ref)
}
