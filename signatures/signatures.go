// Package signatures implements field, constructor and method signatures, as
// written in code execution requests and in field updates.
package signatures

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/types"
)

var (
	// ErrInvalidSignature indicates a signature with a missing class, name or type.
	ErrInvalidSignature = errors.New("signatures: invalid signature")

	// ErrUnknownSelector indicates a code signature selector that no signature encodes to.
	ErrUnknownSelector = errors.New("signatures: unknown code signature selector")
)

// CodeSelector tags a code signature in the stream. It is a separate table
// from types.ClassSelector even where byte values coincide.
type CodeSelector uint8

const (
	SelConstructor    CodeSelector = 0
	SelNonVoidMethod  CodeSelector = 1
	SelVoidMethod     CodeSelector = 2
	SelEOAConstructor CodeSelector = 3 // the whole signature is implied
)

// CodeSignature is the signature of a constructor or of a method.
type CodeSignature interface {
	hotmarsh.Marshallable
	fmt.Stringer
	DefiningClass() types.ClassType
	Formals() []types.StorageType
	isCodeSignature()
}

var (
	_ CodeSignature = ConstructorSignature{}
	_ CodeSignature = MethodSignature{}
)

type code struct {
	definingClass types.ClassType
	formals       []types.StorageType
}

func newCode(definingClass types.ClassType, formals []types.StorageType) (code, error) {
	if definingClass.Name() == "" {
		return code{}, fmt.Errorf("%w: missing defining class", ErrInvalidSignature)
	}
	for i, f := range formals {
		if f == nil {
			return code{}, fmt.Errorf("%w: formal %d is nil", ErrInvalidSignature, i)
		}
	}
	return code{definingClass: definingClass, formals: append([]types.StorageType(nil), formals...)}, nil
}

func (s code) DefiningClass() types.ClassType { return s.definingClass }

// Formals returns a copy of the formal argument types.
func (s code) Formals() []types.StorageType {
	return append([]types.StorageType(nil), s.formals...)
}

func (s code) sameCode(o code) bool {
	if !s.definingClass.Equal(o.definingClass) || len(s.formals) != len(o.formals) {
		return false
	}
	for i := range s.formals {
		if !types.Equal(s.formals[i], o.formals[i]) {
			return false
		}
	}
	return true
}

func (s code) into(c *hotmarsh.Context) {
	s.definingClass.Into(c)
	hotmarsh.WriteList(c, s.formals)
}

func (s code) formalsString() string {
	names := make([]string, len(s.formals))
	for i, f := range s.formals {
		names[i] = f.Name()
	}
	return "(" + strings.Join(names, ",") + ")"
}

// ConstructorSignature is the signature of a constructor.
type ConstructorSignature struct {
	code
}

// NewConstructor returns the signature of the constructor of definingClass with the given formals.
func NewConstructor(definingClass types.ClassType, formals ...types.StorageType) (ConstructorSignature, error) {
	c, err := newCode(definingClass, formals)
	return ConstructorSignature{c}, err
}

// MustConstructor is NewConstructor for arguments known to be valid.
func MustConstructor(definingClass types.ClassType, formals ...types.StorageType) ConstructorSignature {
	s, err := NewConstructor(definingClass, formals...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s ConstructorSignature) Equal(o ConstructorSignature) bool { return s.sameCode(o.code) }

func (s ConstructorSignature) String() string {
	return s.definingClass.Name() + s.formalsString()
}

func (ConstructorSignature) isCodeSignature() {}

// Into writes the constructor of an externally owned account as a bare selector.
func (s ConstructorSignature) Into(c *hotmarsh.Context) {
	if s.Equal(EOAConstructor) {
		c.WriteUint8(uint8(SelEOAConstructor))
		return
	}
	c.WriteUint8(uint8(SelConstructor))
	s.into(c)
}

// MethodSignature is the signature of a method. Void methods have no return type.
type MethodSignature struct {
	code
	name    string
	returns types.StorageType
}

// NewVoidMethod returns the signature of a method that returns nothing.
func NewVoidMethod(definingClass types.ClassType, name string, formals ...types.StorageType) (MethodSignature, error) {
	return newMethod(definingClass, name, nil, formals)
}

// NewNonVoidMethod returns the signature of a method returning a value of type returns.
func NewNonVoidMethod(definingClass types.ClassType, name string, returns types.StorageType, formals ...types.StorageType) (MethodSignature, error) {
	if returns == nil {
		return MethodSignature{}, fmt.Errorf("%w: missing return type", ErrInvalidSignature)
	}
	return newMethod(definingClass, name, returns, formals)
}

func newMethod(definingClass types.ClassType, name string, returns types.StorageType, formals []types.StorageType) (MethodSignature, error) {
	if name == "" {
		return MethodSignature{}, fmt.Errorf("%w: missing method name", ErrInvalidSignature)
	}
	c, err := newCode(definingClass, formals)
	if err != nil {
		return MethodSignature{}, err
	}
	return MethodSignature{code: c, name: name, returns: returns}, nil
}

func mustMethod(s MethodSignature, err error) MethodSignature {
	if err != nil {
		panic(err)
	}
	return s
}

func (s MethodSignature) Name() string { return s.name }

// Returns returns the return type, nil for void methods.
func (s MethodSignature) Returns() types.StorageType { return s.returns }

func (s MethodSignature) IsVoid() bool { return s.returns == nil }

func (s MethodSignature) Equal(o MethodSignature) bool {
	return s.name == o.name && types.Equal(s.returns, o.returns) && s.sameCode(o.code)
}

func (s MethodSignature) String() string {
	ret := "void"
	if s.returns != nil {
		ret = s.returns.Name()
	}
	return ret + " " + s.definingClass.Name() + "." + s.name + s.formalsString()
}

func (MethodSignature) isCodeSignature() {}

func (s MethodSignature) Into(c *hotmarsh.Context) {
	if s.name == "" {
		c.Failf(ErrInvalidSignature, "missing method name")
		return
	}
	if s.IsVoid() {
		c.WriteUint8(uint8(SelVoidMethod))
	} else {
		c.WriteUint8(uint8(SelNonVoidMethod))
	}
	s.into(c)
	c.WriteUTF(s.name)
	if !s.IsVoid() {
		s.returns.Into(c)
	}
}

// Read decodes a code signature written by its Into method.
func Read(r *hotmarsh.Reader) CodeSignature {
	b, err := r.ReadByte()
	if err != nil {
		return nil
	}
	sel := CodeSelector(b)
	if sel == SelEOAConstructor {
		return EOAConstructor
	}
	if sel > SelVoidMethod {
		r.Fail(fmt.Errorf("%w: %d", ErrUnknownSelector, b))
		return nil
	}
	definingClass := types.ReadClass(r)
	formals := hotmarsh.ReadList(r, types.Read)
	if r.Err() != nil {
		return nil
	}
	c := code{definingClass: definingClass, formals: formals}
	switch sel {
	case SelConstructor:
		return ConstructorSignature{c}
	case SelVoidMethod:
		var name string
		r.ReadUTF(&name)
		if r.Err() != nil {
			return nil
		}
		return MethodSignature{code: c, name: name}
	default:
		var name string
		r.ReadUTF(&name)
		returns := types.Read(r)
		if r.Err() != nil {
			return nil
		}
		return MethodSignature{code: c, name: name, returns: returns}
	}
}
