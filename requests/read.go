package requests

import (
	"github.com/pkg/errors"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/signatures"
	"github.com/oy3o/hotmarsh/values"
)

// Read decodes a request written by its Into method.
func Read(r *hotmarsh.Reader) Request {
	return read(r, true)
}

// Unmarshal decodes a framed request written by Marshal.
func Unmarshal(framed []byte) (Request, error) {
	var req Request
	if err := hotmarsh.Unmarshal(framed, func(r *hotmarsh.Reader) { req = Read(r) }); err != nil {
		return nil, err
	}
	return req, nil
}

func read(r *hotmarsh.Reader, withSignature bool) Request {
	b, err := r.ReadByte()
	if err != nil {
		return nil
	}
	var req Request
	switch sel := Selector(b); sel {
	case SelJarStoreInitial:
		jsi := &JarStoreInitialRequest{}
		jsi.Jar = r.ReadLengthAndBytes()
		jsi.Dependencies = hotmarsh.ReadList(r, values.ReadTransactionReference)
		req = jsi
	case SelGameteCreation:
		gc := &GameteCreationRequest{}
		gc.Classpath = values.ReadTransactionReference(r)
		gc.InitialAmount = r.ReadBigInteger()
		gc.RedInitialAmount = r.ReadBigInteger()
		r.ReadUTF(&gc.PublicKey)
		req = gc
	case SelInitialization:
		in := &InitializationRequest{}
		in.Classpath = values.ReadTransactionReference(r)
		in.Manifest = values.ReadStorageReference(r)
		req = in
	case SelInstanceSystemMethodCall:
		sys := &InstanceSystemMethodCallRequest{}
		sys.Header = readHeader(r)
		sys.Actuals = hotmarsh.ReadList(r, values.Read)
		sys.Method = readMethod(r)
		sys.Receiver = values.ReadStorageReference(r)
		req = sys
	case SelJarStore, SelConstructorCall, SelStaticMethodCall, SelInstanceMethodCall,
		SelTransferInt, SelTransferLong, SelTransferBigInteger:
		req = readSigned(r, sel, withSignature)
	default:
		r.Fail(errors.Wrapf(ErrUnknownKind, "selector %d", b))
	}
	if r.Err() != nil {
		return nil
	}
	return req
}

func readSigned(r *hotmarsh.Reader, sel Selector, withSignature bool) Signable {
	var s Signature
	r.ReadUTF(&s.ChainID)
	h := readHeader(r)
	var req Signable
	switch sel {
	case SelJarStore:
		js := &JarStoreRequest{Header: h}
		js.Jar = r.ReadLengthAndBytes()
		js.Dependencies = hotmarsh.ReadList(r, values.ReadTransactionReference)
		req = js
	case SelConstructorCall:
		cc := &ConstructorCallRequest{Header: h}
		cc.Actuals = hotmarsh.ReadList(r, values.Read)
		if ctor, ok := signatures.Read(r).(signatures.ConstructorSignature); ok {
			cc.Constructor = ctor
		} else if r.Err() == nil {
			r.Fail(errors.Wrap(signatures.ErrUnknownSelector, "expected a constructor"))
		}
		req = cc
	case SelStaticMethodCall:
		sc := &StaticMethodCallRequest{Header: h}
		sc.Actuals = hotmarsh.ReadList(r, values.Read)
		sc.Method = readMethod(r)
		req = sc
	case SelInstanceMethodCall:
		ic := &InstanceMethodCallRequest{Header: h}
		ic.Actuals = hotmarsh.ReadList(r, values.Read)
		ic.Method = readMethod(r)
		ic.Receiver = values.ReadStorageReference(r)
		req = ic
	default:
		req = readTransfer(r, sel, h)
	}
	if r.Err() != nil {
		return nil
	}
	if withSignature {
		s.Signature = r.ReadLengthAndBytes()
	}
	*req.signing() = s
	return req
}

func readTransfer(r *hotmarsh.Reader, sel Selector, h Header) *InstanceMethodCallRequest {
	tr := &InstanceMethodCallRequest{Header: h}
	tr.Receiver = values.ReadStorageReference(r)
	switch sel {
	case SelTransferInt:
		var v int32
		r.ReadInt(&v)
		tr.Method = signatures.ReceiveInt
		tr.Actuals = []values.StorageValue{values.IntValue(v)}
	case SelTransferLong:
		var v int64
		r.ReadLong(&v)
		tr.Method = signatures.ReceiveLong
		tr.Actuals = []values.StorageValue{values.LongValue(v)}
	default:
		tr.Method = signatures.ReceiveBigInteger
		tr.Actuals = []values.StorageValue{values.BigIntegerValue{V: r.ReadBigInteger()}}
	}
	return tr
}

func readMethod(r *hotmarsh.Reader) signatures.MethodSignature {
	m, ok := signatures.Read(r).(signatures.MethodSignature)
	if !ok && r.Err() == nil {
		r.Fail(errors.Wrap(signatures.ErrUnknownSelector, "expected a method"))
	}
	return m
}
