package signatures

import (
	"fmt"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/types"
)

// FieldSignature identifies a field by its defining class, name and type.
type FieldSignature struct {
	DefiningClass types.ClassType
	Name          string
	Type          types.StorageType
}

// NewField returns a field signature.
func NewField(definingClass types.ClassType, name string, typ types.StorageType) (FieldSignature, error) {
	f := FieldSignature{DefiningClass: definingClass, Name: name, Type: typ}
	if err := f.validate(); err != nil {
		return FieldSignature{}, err
	}
	return f, nil
}

func (f FieldSignature) validate() error {
	switch {
	case f.DefiningClass.Name() == "":
		return fmt.Errorf("%w: missing defining class", ErrInvalidSignature)
	case f.Name == "":
		return fmt.Errorf("%w: missing field name", ErrInvalidSignature)
	case f.Type == nil:
		return fmt.Errorf("%w: missing field type", ErrInvalidSignature)
	}
	return nil
}

func (f FieldSignature) String() string {
	if f.Type == nil {
		return f.DefiningClass.Name() + "." + f.Name
	}
	return f.DefiningClass.Name() + "." + f.Name + ":" + f.Type.Name()
}

func (f FieldSignature) Equal(o FieldSignature) bool {
	return f.DefiningClass.Equal(o.DefiningClass) && f.Name == o.Name && types.Equal(f.Type, o.Type)
}

// Into writes f through the field signature table, keyed by type, name and defining class.
func (f FieldSignature) Into(c *hotmarsh.Context) {
	if err := f.validate(); err != nil {
		c.Fail(err)
		return
	}
	key := f.Type.Name() + f.Name + f.DefiningClass.Name()
	c.WriteFieldSignatureShared(key, func(c *hotmarsh.Context) {
		f.DefiningClass.Into(c)
		c.WriteUTF(f.Name)
		f.Type.Into(c)
	})
}

// ReadField decodes a field signature written by Into.
func ReadField(r *hotmarsh.Reader) FieldSignature {
	return hotmarsh.ReadShared(r, hotmarsh.TableFieldSignatures, func(r *hotmarsh.Reader) FieldSignature {
		var f FieldSignature
		f.DefiningClass = types.ReadClass(r)
		r.ReadUTF(&f.Name)
		f.Type = types.Read(r)
		return f
	})
}
