package engine

import "bytes"

// Exception is an error represented by a term: instantiation_error,
// type_error/2, domain_error/2, existence_error/2, or permission_error/3,
// or a bare thrown term when the program calls throw/1 directly.
type Exception struct {
	term Term
}

// NewException wraps term as a raised error.
func NewException(term Term) Exception {
	return Exception{term: term}
}

// Term returns the underlying raised term.
func (e Exception) Term() Term { return e.term }

func (e Exception) Error() string {
	var buf bytes.Buffer
	_ = e.term.WriteTerm(&buf, &defaultWriteOptions, nil)
	return buf.String()
}

var atomError = Atom("error")

func wrapError(kind Term) Exception {
	return NewException(atomError.Apply(kind, NewVariable()))
}

// InstantiationError reports that an argument needed to be bound.
func InstantiationError() Exception {
	return wrapError(NewAtom("instantiation_error"))
}

// validType names the kind an argument (or one of its components) was
// expected to be.
type validType uint8

const (
	validTypeAtom validType = iota
	validTypeAtomic
	validTypeCallable
	validTypeCompound
	validTypeInteger
	validTypeList
	validTypeNumber
	validTypePair
	validTypePredicateIndicator
	validTypeFloat
	validTypeObject
)

var validTypeAtoms = [...]Atom{
	validTypeAtom:               "atom",
	validTypeAtomic:             "atomic",
	validTypeCallable:           "callable",
	validTypeCompound:           "compound",
	validTypeInteger:            "integer",
	validTypeList:               "list",
	validTypeNumber:             "number",
	validTypePair:               "pair",
	validTypePredicateIndicator: "predicate_indicator",
	validTypeFloat:              "float",
	validTypeObject:             "object",
}

func (t validType) Term() Term { return validTypeAtoms[t] }

// TypeError reports that culprit was not of the expected type.
func TypeError(typ validType, culprit Term) Exception {
	return wrapError(NewAtom("type_error").Apply(typ.Term(), culprit))
}

// validDomain names the set of values an argument was expected to come
// from.
type validDomain uint8

const (
	validDomainNonEmptyList validDomain = iota
	validDomainNotLessThanZero
	validDomainOperatorPriority
	validDomainOperatorSpecifier
	validDomainOrder
	validDomainFlagValue
	validDomainClassObject
)

var validDomainAtoms = [...]Atom{
	validDomainNonEmptyList:     "non_empty_list",
	validDomainNotLessThanZero:  "not_less_than_zero",
	validDomainOperatorPriority: "operator_priority",
	validDomainOperatorSpecifier: "operator_specifier",
	validDomainOrder:            "order",
	validDomainFlagValue:        "flag_value",
	validDomainClassObject:      "class_object",
}

func (d validDomain) Term() Term { return validDomainAtoms[d] }

// DomainError reports that culprit, though of the right type, was outside
// the domain the operation requires.
func DomainError(domain validDomain, culprit Term) Exception {
	return wrapError(NewAtom("domain_error").Apply(domain.Term(), culprit))
}

// objectType names what kind of thing an existence_error/2 is missing.
type objectType uint8

const (
	objectTypeProcedure objectType = iota
)

var objectTypeAtoms = [...]Atom{
	objectTypeProcedure: "procedure",
}

func (o objectType) Term() Term { return objectTypeAtoms[o] }

// ExistenceError reports that culprit names something that doesn't exist.
func ExistenceError(kind objectType, culprit Term) Exception {
	return wrapError(NewAtom("existence_error").Apply(kind.Term(), culprit))
}

// operation names the action a permission_error/3 was raised against.
type operation uint8

const (
	operationModify operation = iota
)

var operationAtoms = [...]Atom{
	operationModify: "modify",
}

func (o operation) Term() Term { return operationAtoms[o] }

// permissionType names the kind of thing a permission_error/3 concerns.
type permissionType uint8

const (
	permissionTypeStaticProcedure permissionType = iota
)

var permissionTypeAtoms = [...]Atom{
	permissionTypeStaticProcedure: "static_procedure",
}

func (p permissionType) Term() Term { return permissionTypeAtoms[p] }

// PermissionError reports that op is not permitted on culprit because of
// typ.
func PermissionError(op operation, typ permissionType, culprit Term) Exception {
	return wrapError(NewAtom("permission_error").Apply(op.Term(), typ.Term(), culprit))
}
