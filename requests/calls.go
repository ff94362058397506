package requests

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/signatures"
	"github.com/oy3o/hotmarsh/types"
	"github.com/oy3o/hotmarsh/values"
)

// JarStoreRequest installs a jar, paid for by the caller.
type JarStoreRequest struct {
	Header
	Signature
	Jar          []byte
	Dependencies []values.TransactionReference
}

func (*JarStoreRequest) Kind() Kind { return KindJarStore }

func (req *JarStoreRequest) Validate() error {
	if err := req.Header.validate(); err != nil {
		return err
	}
	if err := req.Signature.validate(); err != nil {
		return err
	}
	return validateJar(req.Jar, req.Dependencies)
}

func (req *JarStoreRequest) IntoWithoutSignature(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelJarStore))
	c.WriteUTF(req.ChainID)
	req.Header.into(c)
	c.WriteLengthAndBytes(req.Jar)
	hotmarsh.WriteList(c, req.Dependencies)
}

func (req *JarStoreRequest) Into(c *hotmarsh.Context) { signed(c, req) }

// ConstructorCallRequest creates an object by running a constructor.
type ConstructorCallRequest struct {
	Header
	Signature
	Constructor signatures.ConstructorSignature
	Actuals     []values.StorageValue
}

func (*ConstructorCallRequest) Kind() Kind { return KindConstructorCall }

func (req *ConstructorCallRequest) Validate() error {
	if err := req.Header.validate(); err != nil {
		return err
	}
	if err := req.Signature.validate(); err != nil {
		return err
	}
	if req.Constructor.DefiningClass().Name() == "" {
		return errors.Wrap(ErrMissingField, "constructor")
	}
	return validateActuals(req.Constructor.Formals(), req.Actuals)
}

func (req *ConstructorCallRequest) IntoWithoutSignature(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelConstructorCall))
	c.WriteUTF(req.ChainID)
	req.Header.into(c)
	hotmarsh.WriteList(c, req.Actuals)
	req.Constructor.Into(c)
}

func (req *ConstructorCallRequest) Into(c *hotmarsh.Context) { signed(c, req) }

// StaticMethodCallRequest runs a static method.
type StaticMethodCallRequest struct {
	Header
	Signature
	Method  signatures.MethodSignature
	Actuals []values.StorageValue
}

func (*StaticMethodCallRequest) Kind() Kind { return KindStaticMethodCall }

func (req *StaticMethodCallRequest) Validate() error {
	if err := req.Header.validate(); err != nil {
		return err
	}
	if err := req.Signature.validate(); err != nil {
		return err
	}
	return validateMethod(req.Method, req.Actuals)
}

func (req *StaticMethodCallRequest) IntoWithoutSignature(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	c.WriteUint8(uint8(SelStaticMethodCall))
	c.WriteUTF(req.ChainID)
	req.Header.into(c)
	hotmarsh.WriteList(c, req.Actuals)
	req.Method.Into(c)
}

func (req *StaticMethodCallRequest) Into(c *hotmarsh.Context) { signed(c, req) }

// InstanceMethodCallRequest runs an instance method on Receiver. Calls to the
// receive methods of a payable contract are written in the shorter transfer layout.
type InstanceMethodCallRequest struct {
	Header
	Signature
	Method   signatures.MethodSignature
	Receiver values.StorageReference
	Actuals  []values.StorageValue
}

// NewTransfer returns the request sending amount coins from caller to receiver.
// The method is receive(int), receive(long) or receive(BigInteger), whichever
// is the narrowest one holding amount.
func NewTransfer(h Header, chainID string, receiver values.StorageReference, amount *big.Int) *InstanceMethodCallRequest {
	req := &InstanceMethodCallRequest{
		Header:    h,
		Signature: Signature{ChainID: chainID},
		Receiver:  receiver,
	}
	switch {
	case amount == nil:
		req.Method = signatures.ReceiveBigInteger
		req.Actuals = []values.StorageValue{values.BigIntegerValue{}}
	case amount.IsInt64() && int64(int32(amount.Int64())) == amount.Int64():
		req.Method = signatures.ReceiveInt
		req.Actuals = []values.StorageValue{values.IntValue(amount.Int64())}
	case amount.IsInt64():
		req.Method = signatures.ReceiveLong
		req.Actuals = []values.StorageValue{values.LongValue(amount.Int64())}
	default:
		req.Method = signatures.ReceiveBigInteger
		req.Actuals = []values.StorageValue{values.NewBigIntegerValue(amount)}
	}
	return req
}

func (*InstanceMethodCallRequest) Kind() Kind { return KindInstanceMethodCall }

func (req *InstanceMethodCallRequest) Validate() error {
	if err := req.Header.validate(); err != nil {
		return err
	}
	if err := req.Signature.validate(); err != nil {
		return err
	}
	if req.Receiver.IsZero() {
		return errors.Wrap(ErrMissingField, "receiver")
	}
	if err := validateMethod(req.Method, req.Actuals); err != nil {
		return err
	}
	if sel := req.transferSelector(); sel != 0 {
		return validateAmount(sel, req.Actuals[0])
	}
	return nil
}

// transferSelector returns the selector of the transfer layout, or 0 when the
// method is not one of the receive methods of a payable contract.
func (req *InstanceMethodCallRequest) transferSelector() Selector {
	switch {
	case req.Method.Equal(signatures.ReceiveInt):
		return SelTransferInt
	case req.Method.Equal(signatures.ReceiveLong):
		return SelTransferLong
	case req.Method.Equal(signatures.ReceiveBigInteger):
		return SelTransferBigInteger
	}
	return 0
}

func validateAmount(sel Selector, amount values.StorageValue) error {
	ok := false
	switch v := amount.(type) {
	case values.IntValue:
		ok = sel == SelTransferInt
	case values.LongValue:
		ok = sel == SelTransferLong
	case values.BigIntegerValue:
		ok = sel == SelTransferBigInteger && v.V != nil
	}
	if !ok {
		return errors.Wrapf(ErrTransferArgument, "amount %v", amount)
	}
	return nil
}

func (req *InstanceMethodCallRequest) IntoWithoutSignature(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	if sel := req.transferSelector(); sel != 0 {
		c.WriteUint8(uint8(sel))
		c.WriteUTF(req.ChainID)
		req.Header.into(c)
		req.Receiver.IntoWithoutSelector(c)
		switch v := req.Actuals[0].(type) {
		case values.IntValue:
			c.WriteInt(int32(v))
		case values.LongValue:
			c.WriteLong(int64(v))
		case values.BigIntegerValue:
			c.WriteBigInteger(v.V)
		}
		return
	}
	c.WriteUint8(uint8(SelInstanceMethodCall))
	c.WriteUTF(req.ChainID)
	req.Header.into(c)
	hotmarsh.WriteList(c, req.Actuals)
	req.Method.Into(c)
	req.Receiver.IntoWithoutSelector(c)
}

func (req *InstanceMethodCallRequest) Into(c *hotmarsh.Context) { signed(c, req) }

// InstanceSystemMethodCallRequest runs an instance method on behalf of the node.
// It has no chain id and no signature, and its gas price is always zero.
type InstanceSystemMethodCallRequest struct {
	Header
	Method   signatures.MethodSignature
	Receiver values.StorageReference
	Actuals  []values.StorageValue
}

func (*InstanceSystemMethodCallRequest) Kind() Kind { return KindInstanceSystemMethodCall }

func (req *InstanceSystemMethodCallRequest) Validate() error {
	h := req.withZeroGasPrice()
	if err := h.validate(); err != nil {
		return err
	}
	if req.GasPrice != nil && req.GasPrice.Sign() != 0 {
		return errors.Wrapf(ErrSystemGasPrice, "gas price %s", req.GasPrice)
	}
	if req.Receiver.IsZero() {
		return errors.Wrap(ErrMissingField, "receiver")
	}
	return validateMethod(req.Method, req.Actuals)
}

func (req *InstanceSystemMethodCallRequest) withZeroGasPrice() Header {
	h := req.Header
	if h.GasPrice == nil {
		h.GasPrice = new(big.Int)
	}
	return h
}

func (req *InstanceSystemMethodCallRequest) Into(c *hotmarsh.Context) {
	if !valid(c, req) {
		return
	}
	h := req.withZeroGasPrice()
	c.WriteUint8(uint8(SelInstanceSystemMethodCall))
	h.into(c)
	hotmarsh.WriteList(c, req.Actuals)
	req.Method.Into(c)
	req.Receiver.IntoWithoutSelector(c)
}

func validateMethod(m signatures.MethodSignature, actuals []values.StorageValue) error {
	if m.Name() == "" {
		return errors.Wrap(ErrMissingField, "method")
	}
	return validateActuals(m.Formals(), actuals)
}

func validateActuals(formals []types.StorageType, actuals []values.StorageValue) error {
	if len(formals) != len(actuals) {
		return errors.Wrapf(ErrArityMismatch, "%d formals, %d actuals", len(formals), len(actuals))
	}
	for i, a := range actuals {
		if a == nil {
			return errors.Wrapf(ErrMissingField, "actual %d", i)
		}
	}
	return nil
}
