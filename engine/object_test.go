package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ported from the original implementation's test_object(): a class/instance
// chain with a prototype walk and a batch of own-properties set on an
// instance, checked both directly and through the chain.
func TestObject_ClassAndInstancePrototypeChain(t *testing.T) {
	baseClass := CreateClassObject(Atom("Base"), nil)
	_, ok := OwnProperty(baseClass, atomPrototype)
	assert.False(t, ok)
	v, ok := OwnProperty(baseClass, atomClassName)
	assert.True(t, ok)
	assert.Equal(t, Term(Atom("Base")), v)

	subClass := CreateClassObject(Atom("Sub"), baseClass)
	v, ok = Property(subClass, atomPrototype)
	assert.True(t, ok)
	assert.Same(t, baseClass, v.(*Object))
	v, ok = Property(subClass, atomClassName)
	assert.True(t, ok)
	assert.Equal(t, Term(Atom("Sub")), v)

	obj1 := CreateObject(baseClass)
	v, ok = Property(obj1, atomPrototype)
	assert.True(t, ok)
	assert.Same(t, baseClass, v.(*Object))
	// className isn't obj1's own property; it's inherited from baseClass.
	v, ok = Property(obj1, atomClassName)
	assert.True(t, ok)
	assert.Equal(t, Term(Atom("Base")), v)
	_, ok = OwnProperty(obj1, atomClassName)
	assert.False(t, ok, "className lives on the class, not the instance")

	obj2 := CreateObject(subClass)
	v, ok = Property(obj2, atomClassName)
	assert.True(t, ok)
	assert.Equal(t, Term(Atom("Sub")), v)

	for i := 1; i < 100; i++ {
		name := Atom(fmt.Sprintf("name%d", i))
		assert.NoError(t, AddProperty(obj2, name, Integer(i)))
	}
	for i := 99; i >= 1; i-- {
		name := Atom(fmt.Sprintf("name%d", i))
		v, ok := Property(obj2, name)
		assert.True(t, ok)
		assert.Equal(t, Term(Integer(i)), v)
		v, ok = OwnProperty(obj2, name)
		assert.True(t, ok)
		assert.Equal(t, Term(Integer(i)), v)
		// The property was set on the instance, not the class.
		_, ok = OwnProperty(subClass, name)
		assert.False(t, ok)
	}
}

func TestObject_AddProperty_RejectsInvalidTargetsAndValues(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)

	assert.Error(t, AddProperty(Atom("not-an-object"), Atom("k"), Atom("v")))
	assert.Error(t, AddProperty(obj, Integer(1), Atom("v")), "a non-atom key is rejected")
	assert.Error(t, AddProperty(obj, atomPrototype, Atom("not-an-object")))
	assert.Error(t, AddProperty(obj, atomClassName, Integer(1)))
	assert.NoError(t, AddProperty(obj, Atom("ok"), Atom("v")))
}

func TestObject_Property_MissingKeyAndChainTermination(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)

	_, ok := Property(obj, Atom("nope"))
	assert.False(t, ok)
	_, ok = OwnProperty(obj, Atom("nope"))
	assert.False(t, ok)
}

func TestObject_AddPropertyTrailed_RollsBackOnBacktrack(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)
	tr := NewTrail()

	m := tr.Mark()
	assert.NoError(t, AddPropertyTrailed(tr, obj, Atom("count"), Integer(1)))
	v, ok := OwnProperty(obj, Atom("count"))
	assert.True(t, ok)
	assert.Equal(t, Term(Integer(1)), v)

	tr.Backtrack(m)
	_, ok = OwnProperty(obj, Atom("count"))
	assert.False(t, ok, "the property must not survive a backtrack past its mark")
}

// MemberVariable is the variable kind tied to an object's own-property
// slot; it must unify and compare exactly like a free Variable once its
// binding slot has been located, per the "member-variables are treated as
// variables" rule.
func TestMemberVariable_UnifiesLikeAFreeVariable(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)
	mv := NewMemberVariable(obj, Atom("x"))

	tr := NewTrail()
	assert.True(t, Unify(tr, mv, Atom("hello"), ModeDefault))
	assert.Equal(t, Term(Atom("hello")), Dereference(mv))

	obj2 := CreateObject(base)
	mv2 := NewMemberVariable(obj2, Atom("y"))
	tr2 := NewTrail()
	assert.True(t, Unify(tr2, Integer(42), mv2, ModeDefault))
	assert.Equal(t, Term(Integer(42)), Dereference(mv2))

	obj3 := CreateObject(base)
	mv3 := NewMemberVariable(obj3, Atom("z"))
	tr3 := NewTrail()
	assert.True(t, Unify(tr3, Real(1.5), mv3, ModeDefault))
	assert.Equal(t, Term(Real(1.5)), Dereference(mv3))

	obj4 := CreateObject(base)
	mv4 := NewMemberVariable(obj4, Atom("s"))
	tr4 := NewTrail()
	assert.True(t, Unify(tr4, CreateString([]byte("hi")), mv4, ModeDefault))
	assert.Equal(t, Term(CreateString([]byte("hi"))), Dereference(mv4))
}

// An unbound *Variable and an unbound *MemberVariable share the same rank in
// the standard order of terms; comparing across the two kinds must order
// them deterministically instead of panicking on a failed type assertion.
func TestPrecedes_VariableAndMemberVariable_DoNotPanic(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)
	mv := NewMemberVariable(obj, Atom("x"))
	fv := NewVariable()

	assert.NotPanics(t, func() {
		Precedes(fv, mv)
		Precedes(mv, fv)
	})
	assert.Equal(t, -1, Precedes(fv, mv))
	assert.Equal(t, 1, Precedes(mv, fv))

	mv2 := NewMemberVariable(obj, Atom("y"))
	assert.NotPanics(t, func() {
		Precedes(mv, mv2)
	})
}

func TestUnify_AtomVsUnboundMemberVariable_Binds(t *testing.T) {
	base := CreateClassObject(Atom("Base"), nil)
	obj := CreateObject(base)
	mv := NewMemberVariable(obj, Atom("p"))

	tr := NewTrail()
	assert.True(t, Unify(tr, Atom("value"), mv, ModeDefault))
	assert.Equal(t, Term(Atom("value")), Dereference(mv))
}
