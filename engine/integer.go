package engine

import "io"

// Integer is a signed machine integer; there is no bignum tower.
type Integer int64

func (i Integer) WriteTerm(w io.Writer, _ *WriteOptions, _ *Env) error {
	return writeFprintf(w, "%d", int64(i))
}

func (i Integer) Compare(t Term, env *Env) int {
	return compareByKind(i, t, func(other Term) int {
		o := other.(Integer)
		switch {
		case i < o:
			return -1
		case i > o:
			return 1
		default:
			return 0
		}
	})
}

// IntegerValue reads t as an Integer. It accepts nil and unbound
// variables, returning 0, and dereferences bound variables.
func IntegerValue(t Term) Integer {
	if t == nil {
		return 0
	}
	switch v := Dereference(t).(type) {
	case Integer:
		return v
	default:
		return 0
	}
}
