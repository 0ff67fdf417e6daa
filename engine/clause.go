package engine

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// clause is one head/body pair of a user-defined predicate, stored in
// source-term form; a fresh matcher program is compiled per activation
// once the clause's variables are renamed, rather than cached against a
// fixed register layout — clause bodies are interpreted directly as goal
// terms rather than compiled to the register VM (see DESIGN.md).
type clause struct {
	headArgs []Term
	body     Term
	key      ArgKey // first-argument key of headArgs[0], ArgKindVariable if arity 0
}

// procedure is one (name, arity) entry of the predicate database.
type procedure struct {
	arity   int
	dynamic bool
	static  bool // declared by a consulted clause with no preceding `dynamic` directive
	clauses []*clause
}

// predicateKey is the map key for a Name/Arity pair.
type predicateKey struct {
	Name  Atom
	Arity int
}

// predicateDB is the engine's clause database: an insertion-ordered map
// from predicate indicator to procedure, keeping procedures in the order
// they were first defined. Clause order within a procedure is the order of
// its clauses slice.
type predicateDB struct {
	procedures *orderedmap.OrderedMap[predicateKey, *procedure]
}

func newPredicateDB() *predicateDB {
	return &predicateDB{procedures: orderedmap.New[predicateKey, *procedure]()}
}

func (db *predicateDB) lookup(name Atom, arity int) (*procedure, bool) {
	return db.procedures.Get(predicateKey{Name: name, Arity: arity})
}

func (db *predicateDB) ensure(name Atom, arity int) *procedure {
	k := predicateKey{Name: name, Arity: arity}
	if p, ok := db.procedures.Get(k); ok {
		return p
	}
	p := &procedure{arity: arity}
	db.procedures.Set(k, p)
	return p
}

// addClause appends a clause to name/arity's procedure, marking the
// procedure static unless it was already declared dynamic.
func (db *predicateDB) addClause(name Atom, head []Term, body Term) *procedure {
	p := db.ensure(name, len(head))
	if !p.dynamic {
		p.static = true
	}
	key := ArgKey{Kind: ArgKindVariable}
	if len(head) > 0 {
		key = ArgumentKey(head[0])
	}
	p.clauses = append(p.clauses, &clause{headArgs: head, body: body, key: key})
	return p
}

// declareDynamic marks name/arity dynamic, creating it with no clauses if
// it doesn't exist yet. A procedure declared dynamic before any clause is
// consulted never becomes static.
func (db *predicateDB) declareDynamic(name Atom, arity int) {
	p := db.ensure(name, arity)
	p.dynamic = true
	p.static = false
}

// renameClause instantiates a clause with fresh variables private to one
// activation, grounded on the same rename-on-call idea as a one-shot
// consistent substitution over the clause's variable set.
func renameClause(c *clause) (args []Term, body Term) {
	mapping := map[*Variable]*Variable{}
	args = make([]Term, len(c.headArgs))
	for i, a := range c.headArgs {
		args[i] = renameTerm(a, mapping)
	}
	body = renameTerm(c.body, mapping)
	return args, body
}

func renameTerm(t Term, mapping map[*Variable]*Variable) Term {
	switch v := t.(type) {
	case *Variable:
		if v.ref != nil {
			return renameTerm(v.ref, mapping)
		}
		fresh, ok := mapping[v]
		if !ok {
			fresh = NewNamedVariable(v.name)
			mapping[v] = fresh
		}
		return fresh
	case *list:
		return &list{head: renameTerm(v.head, mapping), tail: renameTerm(v.tail, mapping)}
	case *functor:
		args := make([]Term, len(v.args))
		for i, a := range v.args {
			if a == nil {
				continue
			}
			args[i] = renameTerm(a, mapping)
		}
		return &functor{name: v.name, args: args}
	default:
		return t
	}
}
