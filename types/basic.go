package types

import (
	"fmt"

	"github.com/oy3o/hotmarsh"
)

// BasicType is one of the eight primitive types.
// Its numeric value is the selector it is written with.
type BasicType uint8

const (
	Boolean BasicType = iota
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

var basicNames = [...]string{
	Boolean: "boolean",
	Byte:    "byte",
	Char:    "char",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

// BasicTypeOf returns the primitive type with the given name.
func BasicTypeOf(name string) (BasicType, error) {
	for i, n := range basicNames {
		if n == name {
			return BasicType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a primitive type", ErrUnknownType, name)
}

func (b BasicType) valid() bool { return int(b) < len(basicNames) }

func (b BasicType) Name() string {
	if !b.valid() {
		return fmt.Sprintf("BasicType(%d)", uint8(b))
	}
	return basicNames[b]
}

func (b BasicType) String() string { return b.Name() }

func (b BasicType) Into(c *hotmarsh.Context) {
	if !b.valid() {
		c.Failf(ErrUnknownType, "basic type %d", uint8(b))
		return
	}
	c.WriteUint8(uint8(b))
}

func (BasicType) isStorageType() {}
