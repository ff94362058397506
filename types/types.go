// Package types implements the storage types of the ledger: the eight primitive
// types and class types, together with the selectors they are written with.
package types

import (
	"fmt"

	"github.com/oy3o/hotmarsh"
)

// StorageType is either a BasicType or a ClassType.
type StorageType interface {
	hotmarsh.Marshallable
	fmt.Stringer
	Name() string
	isStorageType()
}

var (
	_ StorageType = BasicType(0)
	_ StorageType = ClassType{}
)

// Parse returns the primitive type with the given name, or else the class type
// with that name.
func Parse(name string) (StorageType, error) {
	if b, err := BasicTypeOf(name); err == nil {
		return b, nil
	}
	return NewClassType(name)
}

// MustParse is Parse for names known to be valid, such as constants.
func MustParse(name string) StorageType {
	t, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Equal reports whether a and b are the same storage type.
func Equal(a, b StorageType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// Read decodes a storage type written by its Into method.
// Dotted inner-class spellings come back in their binary '$' form.
func Read(r *hotmarsh.Reader) StorageType {
	b, err := r.ReadByte()
	if err != nil {
		return nil
	}
	return readAfterSelector(r, b)
}

func readAfterSelector(r *hotmarsh.Reader, b byte) StorageType {
	if t := BasicType(b); t.valid() {
		return t
	}
	sel := ClassSelector(b)
	if name, ok := classNameOf(sel); ok {
		return ClassType{name: name}
	}
	prefix, ok := prefixOf(sel)
	if !ok {
		r.Fail(fmt.Errorf("%w: %d", ErrUnknownSelector, b))
		return nil
	}
	var rest string
	r.ReadStringShared(&rest)
	if r.Err() != nil {
		return nil
	}
	if prefix+rest == "" {
		r.Fail(fmt.Errorf("%w: empty class name", ErrUnknownType))
		return nil
	}
	return ClassType{name: prefix + rest}
}

// ReadClass decodes a class type, failing on primitive types.
func ReadClass(r *hotmarsh.Reader) ClassType {
	t := Read(r)
	if t == nil {
		return ClassType{}
	}
	ct, ok := t.(ClassType)
	if !ok {
		r.Fail(fmt.Errorf("%w: %s is not a class type", ErrUnknownType, t))
		return ClassType{}
	}
	return ct
}
