package dispatch

import (
	"reflect"
	"strings"
)

// Any is the unconstrained operand category. It matches every operand,
// including an untyped nil.
var Any reflect.Type

// Signature is an ordered sequence of operand categories used as a dispatch key.
//
// Each position is one of:
//   - Any (nil): matches every operand
//   - an interface type: matches operands implementing it
//   - a concrete type: matches operands of exactly that type
type Signature []reflect.Type

// Sig builds a Signature from operand categories.
//
// Example:
//
//	dispatch.Sig(reflect.TypeFor[*forward.Value](), dispatch.Any)
func Sig(types ...reflect.Type) Signature {
	return Signature(types)
}

// SignatureOf returns the concrete signature of a call's operands.
func SignatureOf(args ...any) Signature {
	sig := make(Signature, len(args))
	for i, a := range args {
		sig[i] = reflect.TypeOf(a)
	}
	return sig
}

// String renders the signature as "(any, *forward.Value)".
func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = typeName(t)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// key identifies a signature in the exact-match index.
// Package paths keep same-named types from different packages apart.
func (s Signature) key() string {
	var b strings.Builder
	for i, t := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		if t == nil {
			b.WriteByte('*')
			continue
		}
		b.WriteString(qualifiedName(t))
	}
	return b.String()
}

// match scores how well s accepts the operand types.
// Returns -1 when s does not accept them.
func (s Signature) match(args Signature) int {
	if len(s) != len(args) {
		return -1
	}
	score := 0
	for i, want := range s {
		got := args[i]
		switch {
		case want == nil:
		case got == nil:
			return -1
		case want == got:
			score += 2
		case want.Kind() == reflect.Interface && got.Implements(want):
			score++
		default:
			return -1
		}
	}
	return score
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// qualifiedName names t by package path. Only unnamed pointer and slice
// types are unwrapped, so a named slice keys apart from its underlying type.
func qualifiedName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	default:
		return t.String()
	}
}
