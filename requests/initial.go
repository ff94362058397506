package requests

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/values"
)

// JarStoreInitialRequest installs a jar while the node is being initialized.
type JarStoreInitialRequest struct {
	Jar          []byte
	Dependencies []values.TransactionReference
}

func (*JarStoreInitialRequest) Kind() Kind { return KindJarStoreInitial }

func (req *JarStoreInitialRequest) Validate() error {
	return validateJar(req.Jar, req.Dependencies)
}

func (req *JarStoreInitialRequest) Into(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelJarStoreInitial))
	c.WriteLengthAndBytes(req.Jar)
	hotmarsh.WriteList(c, req.Dependencies)
}

func validateJar(jar []byte, deps []values.TransactionReference) error {
	if len(jar) == 0 {
		return errors.Wrap(ErrMissingField, "jar")
	}
	for i, d := range deps {
		if d.IsZero() {
			return errors.Wrapf(ErrMissingField, "dependency %d", i)
		}
	}
	return nil
}

// GameteCreationRequest creates the gamete, the account holding the initial coins.
type GameteCreationRequest struct {
	Classpath        values.TransactionReference
	InitialAmount    *big.Int
	RedInitialAmount *big.Int
	PublicKey        string
}

func (*GameteCreationRequest) Kind() Kind { return KindGameteCreation }

func (req *GameteCreationRequest) Validate() error {
	if req.Classpath.IsZero() {
		return errors.Wrap(ErrMissingField, "classpath")
	}
	if err := nonNegative("initial amount", req.InitialAmount); err != nil {
		return err
	}
	if err := nonNegative("red initial amount", req.RedInitialAmount); err != nil {
		return err
	}
	if req.PublicKey == "" {
		return errors.Wrap(ErrMissingField, "public key")
	}
	return nil
}

func (req *GameteCreationRequest) Into(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelGameteCreation))
	req.Classpath.Into(c)
	c.WriteBigInteger(req.InitialAmount)
	c.WriteBigInteger(req.RedInitialAmount)
	c.WriteUTF(req.PublicKey)
}

// InitializationRequest marks the node as initialized, with the given manifest.
type InitializationRequest struct {
	Classpath values.TransactionReference
	Manifest  values.StorageReference
}

func (*InitializationRequest) Kind() Kind { return KindInitialization }

func (req *InitializationRequest) Validate() error {
	if req.Classpath.IsZero() {
		return errors.Wrap(ErrMissingField, "classpath")
	}
	if req.Manifest.IsZero() {
		return errors.Wrap(ErrMissingField, "manifest")
	}
	return nil
}

func (req *InitializationRequest) Into(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelInitialization))
	req.Classpath.Into(c)
	req.Manifest.IntoWithoutSelector(c)
}
