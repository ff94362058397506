// Package requests implements the transaction requests sent to a node, in the
// exact byte layout the node expects, together with their signing envelope.
package requests

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/values"
)

// Selector tags a request in the stream.
type Selector uint8

const (
	SelJarStoreInitial          Selector = 1
	SelGameteCreation           Selector = 2
	SelJarStore                 Selector = 3
	SelConstructorCall          Selector = 4
	SelInstanceMethodCall       Selector = 5
	SelStaticMethodCall         Selector = 6
	SelTransferInt              Selector = 7
	SelTransferLong             Selector = 8
	SelTransferBigInteger       Selector = 9
	SelInitialization           Selector = 10
	SelInstanceSystemMethodCall Selector = 11
)

// Kind names a request variant in envelopes and request files.
type Kind string

const (
	KindJarStoreInitial          Kind = "jar-store-initial"
	KindGameteCreation           Kind = "gamete-creation"
	KindInitialization           Kind = "initialization"
	KindJarStore                 Kind = "jar-store"
	KindConstructorCall          Kind = "constructor-call"
	KindStaticMethodCall         Kind = "static-method-call"
	KindInstanceMethodCall       Kind = "instance-method-call"
	KindInstanceSystemMethodCall Kind = "instance-system-method-call"
)

var kinds = []Kind{
	KindJarStoreInitial, KindGameteCreation, KindInitialization, KindJarStore,
	KindConstructorCall, KindStaticMethodCall, KindInstanceMethodCall, KindInstanceSystemMethodCall,
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Signed reports whether requests of kind k carry a chain id and a signature.
func (k Kind) Signed() bool {
	switch k {
	case KindJarStore, KindConstructorCall, KindStaticMethodCall, KindInstanceMethodCall:
		return true
	}
	return false
}

// Request is a transaction request. Into writes its full encoding and fails
// with the Validate error before writing anything when the request is invalid.
type Request interface {
	hotmarsh.Marshallable
	Kind() Kind
	Validate() error
}

// Signable is a request that carries a signature. IntoWithoutSignature writes
// the encoding that is signed and sent on the wire.
type Signable interface {
	Request
	IntoWithoutSignature(c *hotmarsh.Context)
	SetSignature(sig []byte)
	signing() *Signature
}

var (
	_ Request  = (*JarStoreInitialRequest)(nil)
	_ Request  = (*GameteCreationRequest)(nil)
	_ Request  = (*InitializationRequest)(nil)
	_ Request  = (*InstanceSystemMethodCallRequest)(nil)
	_ Signable = (*JarStoreRequest)(nil)
	_ Signable = (*ConstructorCallRequest)(nil)
	_ Signable = (*StaticMethodCallRequest)(nil)
	_ Signable = (*InstanceMethodCallRequest)(nil)
)

// Header holds the fields every non-initial request starts with.
type Header struct {
	Caller    values.StorageReference
	GasLimit  *big.Int
	GasPrice  *big.Int
	Classpath values.TransactionReference
	Nonce     *big.Int
}

func (h *Header) validate() error {
	if h.Caller.IsZero() {
		return errors.Wrap(ErrMissingField, "caller")
	}
	if h.Classpath.IsZero() {
		return errors.Wrap(ErrMissingField, "classpath")
	}
	if err := nonNegative("gas limit", h.GasLimit); err != nil {
		return err
	}
	if err := nonNegative("gas price", h.GasPrice); err != nil {
		return err
	}
	return nonNegative("nonce", h.Nonce)
}

func (h *Header) into(c *hotmarsh.Context) {
	h.Caller.IntoWithoutSelector(c)
	c.WriteBigInteger(h.GasLimit)
	c.WriteBigInteger(h.GasPrice)
	h.Classpath.Into(c)
	c.WriteBigInteger(h.Nonce)
}

func readHeader(r *hotmarsh.Reader) Header {
	var h Header
	h.Caller = values.ReadStorageReference(r)
	h.GasLimit = r.ReadBigInteger()
	h.GasPrice = r.ReadBigInteger()
	h.Classpath = values.ReadTransactionReference(r)
	h.Nonce = r.ReadBigInteger()
	return h
}

// Signature holds the chain id and the signature of a signed request.
type Signature struct {
	ChainID   string
	Signature []byte
}

// SetSignature replaces the signature written at the end of the full encoding.
func (s *Signature) SetSignature(sig []byte) {
	s.Signature = append([]byte(nil), sig...)
}

func (s *Signature) signing() *Signature { return s }

func (s *Signature) validate() error {
	if s.ChainID == "" {
		return errors.Wrap(ErrMissingField, "chain id")
	}
	return nil
}

func nonNegative(name string, v *big.Int) error {
	if v == nil {
		return errors.Wrap(ErrMissingField, name)
	}
	if v.Sign() < 0 {
		return errors.Wrapf(ErrNegativeAmount, "%s %s", name, v)
	}
	return nil
}

// valid latches the validation error of req into c and reports whether encoding may go on.
func valid(c *hotmarsh.Context, req Request) bool {
	if err := req.Validate(); err != nil {
		c.Fail(err)
		return false
	}
	return c.Err() == nil
}

// signed writes the full encoding of a signed request. A request not yet
// signed ends with an empty signature.
func signed(c *hotmarsh.Context, req Signable) {
	req.IntoWithoutSignature(c)
	sig := req.signing().Signature
	if sig == nil {
		sig = []byte{}
	}
	c.WriteLengthAndBytes(sig)
}
