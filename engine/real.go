package engine

import (
	"io"
	"strconv"
	"strings"
)

// Real is an IEEE double; the numeric tower is pinned to machine integers
// and doubles, with no arbitrary-precision decimal type.
type Real float64

func (r Real) WriteTerm(w io.Writer, _ *WriteOptions, _ *Env) error {
	s := strconv.FormatFloat(float64(r), 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	} else if strings.Contains(s, "e") && !strings.Contains(s, ".") {
		s = strings.Replace(s, "e", ".0e", 1)
	}
	_, err := io.WriteString(w, s)
	return err
}

func (r Real) Compare(t Term, env *Env) int {
	return compareByKind(r, t, func(other Term) int {
		o := other.(Real)
		switch {
		case r < o:
			return -1
		case r > o:
			return 1
		default:
			return 0
		}
	})
}

func (r Real) Eq(o Real) bool { return float64(r) == float64(o) }

// RealValue reads t as a Real. It accepts nil and unbound variables,
// returning 0, and dereferences bound variables.
func RealValue(t Term) Real {
	if t == nil {
		return 0
	}
	switch v := Dereference(t).(type) {
	case Real:
		return v
	default:
		return 0
	}
}
