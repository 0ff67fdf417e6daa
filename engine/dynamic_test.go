package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertz_Retract_RoundTrip(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}

	fact := Atom("likes").Apply(Atom("alice"), Atom("bob"))
	ok, err := ctx.Assertz(fact, trueK, env).Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	proc, exists := ctx.DB.lookup(NewAtom("likes"), 2)
	assert.True(t, exists)
	assert.Len(t, proc.clauses, 1)
	assert.True(t, proc.dynamic)

	x, y := NewVariable(), NewVariable()
	pattern := Atom("likes").Apply(x, y)
	ok2, err := ctx.Retract(pattern, trueK, env).Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok2)
	assert.Equal(t, Term(Atom("alice")), Dereference(x))
	assert.Equal(t, Term(Atom("bob")), Dereference(y))
	assert.Empty(t, proc.clauses)
}

func TestAsserta_InsertsAtFront(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}

	_, err := ctx.Assertz(Atom("seq").Apply(Integer(1)), trueK, env).Force(context.Background())
	assert.NoError(t, err)
	_, err = ctx.Asserta(Atom("seq").Apply(Integer(0)), trueK, env).Force(context.Background())
	assert.NoError(t, err)
	_, err = ctx.Assertz(Atom("seq").Apply(Integer(2)), trueK, env).Force(context.Background())
	assert.NoError(t, err)

	proc, _ := ctx.DB.lookup(NewAtom("seq"), 1)
	assert.Len(t, proc.clauses, 3)
	assert.Equal(t, Term(Integer(0)), proc.clauses[0].headArgs[0])
	assert.Equal(t, Term(Integer(1)), proc.clauses[1].headArgs[0])
	assert.Equal(t, Term(Integer(2)), proc.clauses[2].headArgs[0])
}

func TestDynamic_DeclaresEmptyProcedure(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}
	pi, _ := CreatePredicate(NewAtom("foo"), 2)

	ok, err := ctx.Dynamic(pi, trueK, env).Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	proc, exists := ctx.DB.lookup(NewAtom("foo"), 2)
	assert.True(t, exists)
	assert.True(t, proc.dynamic)
	assert.Empty(t, proc.clauses)
}

func TestAbolish_StaticProcedure_RaisesPermissionError(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}
	pi, _ := CreatePredicate(NewAtom("abolish"), 1)

	_, err := ctx.Abolish(pi, trueK, env).Force(context.Background())
	assert.Error(t, err)
	ex, ok := err.(Exception)
	assert.True(t, ok)

	expected := NewAtom("error").Apply(
		NewAtom("permission_error").Apply(NewAtom("modify"), NewAtom("static_procedure"), Atom("/").Apply(NewAtom("abolish"), Integer(1))),
		NewVariable(),
	)
	tr := NewTrail()
	assert.True(t, Unify(tr, ex.Term(), expected, ModeOneWay))
}

func TestAbolish_ConsultedClauseIsStatic(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}
	ctx.DB.addClause(NewAtom("fact"), nil, atomTrue)

	pi, _ := CreatePredicate(NewAtom("fact"), 0)
	_, err := ctx.Abolish(pi, trueK, env).Force(context.Background())
	assert.Error(t, err)
	_, ok := err.(Exception)
	assert.True(t, ok)
}

func TestAbolish_DynamicProcedure_Succeeds(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}
	ctx.DB.declareDynamic(NewAtom("fact"), 0)
	ctx.DB.addClause(NewAtom("fact"), nil, atomTrue)

	pi, _ := CreatePredicate(NewAtom("fact"), 0)
	ok, err := ctx.Abolish(pi, trueK, env).Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	proc, _ := ctx.DB.lookup(NewAtom("fact"), 0)
	assert.Empty(t, proc.clauses)
}

func TestAssertz_OnConsultedStaticPredicate_RaisesPermissionError(t *testing.T) {
	ctx := NewContext()
	env := &Env{Trail: ctx.Trail}
	ctx.DB.addClause(NewAtom("fact"), nil, atomTrue)

	_, err := ctx.Assertz(Atom("fact"), trueK, env).Force(context.Background())
	assert.Error(t, err)
	_, ok := err.(Exception)
	assert.True(t, ok)
}
