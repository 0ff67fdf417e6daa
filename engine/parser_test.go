package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustParseOne(t *testing.T, src string) Term {
	t.Helper()
	p, err := NewParser(src)
	assert.NoError(t, err)
	term, err := p.ReadClause()
	assert.NoError(t, err)
	return term
}

func TestParser_Atom(t *testing.T) {
	assert.Equal(t, Term(Atom("foo")), mustParseOne(t, "foo."))
}

func TestParser_QuotedAtom(t *testing.T) {
	assert.Equal(t, Term(Atom("hello world")), mustParseOne(t, "'hello world'."))
}

func TestParser_Integer(t *testing.T) {
	assert.Equal(t, Term(Integer(42)), mustParseOne(t, "42."))
}

func TestParser_Real(t *testing.T) {
	assert.Equal(t, Term(Real(3.5)), mustParseOne(t, "3.5."))
}

func TestParser_String(t *testing.T) {
	assert.Equal(t, Term(CreateString([]byte("hi"))), mustParseOne(t, `"hi".`))
}

func TestParser_Compound(t *testing.T) {
	term := mustParseOne(t, "f(a, b, 1).")
	c, ok := term.(Compound)
	assert.True(t, ok)
	assert.Equal(t, Atom("f"), c.Functor())
	assert.Equal(t, 3, c.Arity())
	assert.Equal(t, Term(Atom("a")), c.Arg(0))
	assert.Equal(t, Term(Integer(1)), c.Arg(2))
}

func TestParser_List(t *testing.T) {
	term := mustParseOne(t, "[a, b, c].")
	tr := NewTrail()
	assert.True(t, Unify(tr, term, List(Atom("a"), Atom("b"), Atom("c")), ModeDefault))
}

func TestParser_ListWithTail(t *testing.T) {
	term := mustParseOne(t, "[a, b | T].")
	c, ok := term.(Compound)
	assert.True(t, ok)
	assert.Equal(t, Term(Atom("a")), c.Arg(0))
}

func TestParser_OperatorPrecedence(t *testing.T) {
	// "," binds tighter than ";", so a,b;c parses as (a,b);c.
	term := mustParseOne(t, "a, b ; c.")
	c, ok := term.(Compound)
	assert.True(t, ok)
	assert.Equal(t, Atom(";"), c.Functor())
	left, ok := c.Arg(0).(Compound)
	assert.True(t, ok)
	assert.Equal(t, Atom(","), left.Functor())
}

func TestParser_ClauseWithBody(t *testing.T) {
	term := mustParseOne(t, "p(X) :- q(X), r(X).")
	c, ok := term.(Compound)
	assert.True(t, ok)
	assert.Equal(t, Atom(":-"), c.Functor())
}

func TestParser_SameVariableWithinClauseSharesIdentity(t *testing.T) {
	term := mustParseOne(t, "p(X, X).")
	c := term.(Compound)
	assert.Same(t, c.Arg(0).(*Variable), c.Arg(1).(*Variable))
}

func TestParser_DistinctClausesGetFreshVariables(t *testing.T) {
	p, err := NewParser("p(X). q(X).")
	assert.NoError(t, err)
	t1, err := p.ReadClause()
	assert.NoError(t, err)
	t2, err := p.ReadClause()
	assert.NoError(t, err)

	v1 := t1.(Compound).Arg(0).(*Variable)
	v2 := t2.(Compound).Arg(0).(*Variable)
	assert.NotSame(t, v1, v2)
}

func TestParser_PrefixMinus(t *testing.T) {
	term := mustParseOne(t, "- a.")
	c, ok := term.(Compound)
	assert.True(t, ok)
	assert.Equal(t, Atom("-"), c.Functor())
	assert.Equal(t, 1, c.Arity())
}

func TestParser_MultipleClauses(t *testing.T) {
	p, err := NewParser("a.\nb.\n")
	assert.NoError(t, err)

	t1, err := p.ReadClause()
	assert.NoError(t, err)
	assert.Equal(t, Term(Atom("a")), t1)

	t2, err := p.ReadClause()
	assert.NoError(t, err)
	assert.Equal(t, Term(Atom("b")), t2)

	assert.True(t, p.AtEOF())
}
