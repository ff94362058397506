package requests

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/signatures"
	"github.com/oy3o/hotmarsh/signer"
	"github.com/oy3o/hotmarsh/types"
	"github.com/oy3o/hotmarsh/values"
)

const (
	testHash  = "d0e496468c25fca59179885fa7c5ff4f440efbd0e0c96c2426b7997336619882"
	testChain = "chaintest"
	testSeed  = "nWGxne/9WmC6hEr0kuwsxERJxWl7MmkZcDusAxyuf2A="
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func header(gasLimit, gasPrice int64) Header {
	return Header{
		Caller:    values.MustStorageReference(testHash, 0),
		GasLimit:  big.NewInt(gasLimit),
		GasPrice:  big.NewInt(gasPrice),
		Classpath: values.MustTransactionReference(testHash),
		Nonce:     big.NewInt(1),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func unsignedBase64(t *testing.T, req Signable) string {
	t.Helper()
	framed, err := hotmarsh.MarshalFunc(req.IntoWithoutSignature)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(framed)
}

func body(t *testing.T, m hotmarsh.Marshallable) []byte {
	t.Helper()
	framed, err := hotmarsh.Marshal(m)
	require.NoError(t, err)
	return framed[6:]
}

func constructorCall() *ConstructorCallRequest {
	return &ConstructorCallRequest{
		Header:      header(11500, 500),
		Signature:   Signature{ChainID: testChain},
		Constructor: signatures.MustConstructor(types.Manifest, types.BigInteger),
		Actuals:     []values.StorageValue{values.NewBigIntegerValue(big.NewInt(999))},
	}
}

func TestRequests_Vectors(t *testing.T) {
	caller := values.MustStorageReference(testHash, 0)
	cases := []struct {
		name string
		req  Signable
		want string
	}{
		{"constructorCall", constructorCall(), "rO0ABXdABAAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQALOwAAfQABQEGAAPnABMBGg=="},
		{
			"staticBalance",
			&StaticMethodCallRequest{
				Header:    header(5000, 4000),
				Signature: Signature{ChainID: testChain},
				Method:    must(signatures.NewNonVoidMethod(types.GasStation, "balance", types.BigInteger, types.Storage)),
				Actuals:   []values.StorageValue{caller},
			},
			"rO0ABXdIBgAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQELAAEoARcAB2JhbGFuY2Ua",
		},
		{
			"staticReceiveInt",
			&StaticMethodCallRequest{
				Header:    header(5000, 4000),
				Signature: Signature{ChainID: testChain},
				Method:    signatures.ReceiveInt,
				Actuals:   []values.StorageValue{values.IntValue(300)},
			},
			"rO0ABXdKBgAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQEOAAABLAIbAQQAB3JlY2VpdmU=",
		},
		{
			"staticNonce",
			&StaticMethodCallRequest{
				Header:    header(5000, 4000),
				Signature: Signature{ChainID: testChain},
				Method:    signatures.Nonce,
			},
			"rO0ABXdDBgAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQABEgAABW5vbmNlGg==",
		},
		{
			"transferInt",
			&InstanceMethodCallRequest{
				Header:    header(5000, 4000),
				Signature: Signature{ChainID: testChain},
				Method:    signatures.ReceiveInt,
				Receiver:  caller,
				Actuals:   []values.StorageValue{values.IntValue(300)},
			},
			"rO0ABXc8BwAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQAAAAEs",
		},
		{
			"instanceGetGamete",
			&InstanceMethodCallRequest{
				Header:    header(5000, 4000),
				Signature: Signature{ChainID: testChain},
				Method:    signatures.GetGamete,
				Receiver:  caller,
			},
			"rO0ABXdRBQAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQABEwAACWdldEdhbWV0ZQr/AAZHYW1ldGUA",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, unsignedBase64(t, tc.req))
		})
	}
}

func TestRequests_InitialLayouts(t *testing.T) {
	hash, _ := base64.StdEncoding.DecodeString("0OSWRowl/KWReYhfp8X/T0QO+9DgyWwkJreZczZhmII=")
	require.Len(t, hash, 32)
	cp := values.MustTransactionReference(testHash)

	t.Run("JarStoreInitial", func(t *testing.T) {
		req := &JarStoreInitialRequest{Jar: []byte{1, 2, 3}, Dependencies: []values.TransactionReference{cp}}
		want := append([]byte{1, 3, 1, 2, 3, 1, 0xFF}, hash...)
		assert.Equal(t, want, body(t, req))
	})

	t.Run("GameteCreation", func(t *testing.T) {
		req := &GameteCreationRequest{Classpath: cp, InitialAmount: big.NewInt(100), RedInitialAmount: big.NewInt(0), PublicKey: "key"}
		want := append(append([]byte{2, 0xFF}, hash...), 104, 4, 0, 3, 'k', 'e', 'y')
		assert.Equal(t, want, body(t, req))
	})

	t.Run("Initialization", func(t *testing.T) {
		req := &InitializationRequest{Classpath: cp, Manifest: values.MustStorageReference(testHash, 1)}
		want := append(append([]byte{10, 0xFF}, hash...), 0xFF, 0, 5)
		assert.Equal(t, want, body(t, req))
	})

	t.Run("InstanceSystemMethodCall", func(t *testing.T) {
		h := header(10000, 0)
		h.GasPrice = nil
		req := &InstanceSystemMethodCallRequest{Header: h, Method: signatures.GetGamete, Receiver: values.MustStorageReference(testHash, 2)}
		got := body(t, req)
		want := append(append([]byte{11, 0xFF, 0xFF}, hash...), 4, 0, 0x27, 0x10, 4, 0, 5, 0)
		require.Greater(t, len(got), len(want))
		assert.Equal(t, want, got[:len(want)])
		assert.Equal(t, []byte{0xFF, 0, 6}, got[len(got)-3:])
	})
}

func TestRequests_FullEncoding(t *testing.T) {
	req := constructorCall()
	unsigned := body(t, hotmarsh.MarshallableFunc(req.IntoWithoutSignature))

	assert.Equal(t, append(append([]byte(nil), unsigned...), 0), body(t, req))

	req.SetSignature([]byte{0xAA, 0xBB})
	assert.Equal(t, append(append([]byte(nil), unsigned...), 2, 0xAA, 0xBB), body(t, req))
}

func TestTransferShortcut(t *testing.T) {
	caller := values.MustStorageReference(testHash, 0)
	call := func(m signatures.MethodSignature, actual values.StorageValue) *InstanceMethodCallRequest {
		return &InstanceMethodCallRequest{
			Header:    header(5000, 4000),
			Signature: Signature{ChainID: testChain},
			Method:    m,
			Receiver:  caller,
			Actuals:   []values.StorageValue{actual},
		}
	}
	selectorOf := func(req *InstanceMethodCallRequest) byte {
		return body(t, hotmarsh.MarshallableFunc(req.IntoWithoutSignature))[0]
	}

	assert.Equal(t, byte(SelTransferInt), selectorOf(call(signatures.ReceiveInt, values.IntValue(1))))
	assert.Equal(t, byte(SelTransferLong), selectorOf(call(signatures.ReceiveLong, values.LongValue(1))))
	assert.Equal(t, byte(SelTransferBigInteger), selectorOf(call(signatures.ReceiveBigInteger, values.NewBigIntegerValue(big.NewInt(1)))))

	// any difference from the receive methods falls back to the generic layout
	renamed := must(signatures.NewVoidMethod(types.PayableContract, "receiveRed", types.Int))
	otherClass := must(signatures.NewVoidMethod(types.Contract, "receive", types.Int))
	otherFormal := must(signatures.NewVoidMethod(types.PayableContract, "receive", types.Short))
	nonVoid := must(signatures.NewNonVoidMethod(types.PayableContract, "receive", types.Int, types.Int))
	assert.Equal(t, byte(SelInstanceMethodCall), selectorOf(call(renamed, values.IntValue(1))))
	assert.Equal(t, byte(SelInstanceMethodCall), selectorOf(call(otherClass, values.IntValue(1))))
	assert.Equal(t, byte(SelInstanceMethodCall), selectorOf(call(otherFormal, values.ShortValue(1))))
	assert.Equal(t, byte(SelInstanceMethodCall), selectorOf(call(nonVoid, values.IntValue(1))))

	_, err := hotmarsh.Marshal(call(signatures.ReceiveInt, values.LongValue(1)))
	assert.ErrorIs(t, err, ErrTransferArgument)
	_, err = hotmarsh.Marshal(call(signatures.ReceiveBigInteger, values.BigIntegerValue{}))
	assert.ErrorIs(t, err, ErrTransferArgument)
}

func TestNewTransfer(t *testing.T) {
	receiver := values.MustStorageReference(testHash, 3)
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	cases := []struct {
		amount *big.Int
		method signatures.MethodSignature
	}{
		{big.NewInt(300), signatures.ReceiveInt},
		{big.NewInt(1 << 40), signatures.ReceiveLong},
		{huge, signatures.ReceiveBigInteger},
	}
	for _, tc := range cases {
		req := NewTransfer(header(10000, 1), testChain, receiver, tc.amount)
		assert.True(t, req.Method.Equal(tc.method), tc.amount.String())
		require.NoError(t, req.Validate())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(req *ConstructorCallRequest)
		want   error
	}{
		{"missingCaller", func(req *ConstructorCallRequest) { req.Caller = values.StorageReference{} }, ErrMissingField},
		{"missingClasspath", func(req *ConstructorCallRequest) { req.Classpath = values.TransactionReference{} }, ErrMissingField},
		{"negativeGas", func(req *ConstructorCallRequest) { req.GasLimit = big.NewInt(-1) }, ErrNegativeAmount},
		{"negativePrice", func(req *ConstructorCallRequest) { req.GasPrice = big.NewInt(-1) }, ErrNegativeAmount},
		{"missingNonce", func(req *ConstructorCallRequest) { req.Nonce = nil }, ErrMissingField},
		{"missingChain", func(req *ConstructorCallRequest) { req.ChainID = "" }, ErrMissingField},
		{"arity", func(req *ConstructorCallRequest) { req.Actuals = nil }, ErrArityMismatch},
		{"nilActual", func(req *ConstructorCallRequest) { req.Actuals = []values.StorageValue{nil} }, ErrMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := constructorCall()
			tc.mutate(req)
			assert.ErrorIs(t, req.Validate(), tc.want)
			framed, err := hotmarsh.Marshal(req)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, framed)
		})
	}

	_, err := hotmarsh.Marshal(&JarStoreInitialRequest{})
	assert.ErrorIs(t, err, ErrMissingField)

	sys := &InstanceSystemMethodCallRequest{Header: header(1, 5), Method: signatures.GetGamete, Receiver: values.MustStorageReference(testHash, 2)}
	assert.ErrorIs(t, sys.Validate(), ErrSystemGasPrice)

	_, err = ParseKind("transfer")
	assert.ErrorIs(t, err, ErrUnknownKind)
	k, err := ParseKind("jar-store")
	require.NoError(t, err)
	assert.True(t, k.Signed())
	assert.False(t, KindGameteCreation.Signed())
}

func allKinds() []Request {
	cp := values.MustTransactionReference(testHash)
	h := header(10000, 100)
	signed := Signature{ChainID: testChain, Signature: []byte{9, 8, 7}}
	receiver := values.MustStorageReference(testHash, 7)
	return []Request{
		&JarStoreInitialRequest{Jar: []byte("jar"), Dependencies: []values.TransactionReference{cp}},
		&GameteCreationRequest{Classpath: cp, InitialAmount: new(big.Int).Lsh(big.NewInt(1), 80), RedInitialAmount: big.NewInt(5), PublicKey: "pk"},
		&InitializationRequest{Classpath: cp, Manifest: receiver},
		&JarStoreRequest{Header: h, Signature: signed, Jar: []byte("jar"), Dependencies: []values.TransactionReference{cp, cp}},
		constructorCall(),
		&ConstructorCallRequest{
			Header: h, Signature: signed, Constructor: signatures.EOAConstructor,
			Actuals: []values.StorageValue{values.NewBigIntegerValue(big.NewInt(1000)), values.StringValue("key")},
		},
		&StaticMethodCallRequest{Header: h, Signature: signed, Method: signatures.GetGasPrice},
		&InstanceMethodCallRequest{Header: h, Signature: signed, Method: signatures.GetGamete, Receiver: receiver},
		NewTransfer(h, testChain, receiver, big.NewInt(12)),
		NewTransfer(h, testChain, receiver, big.NewInt(1<<40)),
		NewTransfer(h, testChain, receiver, new(big.Int).Lsh(big.NewInt(1), 70)),
		&InstanceSystemMethodCallRequest{
			Header: header(10000, 0), Method: signatures.ReceiveInt, Receiver: receiver,
			Actuals: []values.StorageValue{values.IntValue(4)},
		},
	}
}

func TestRead_RoundTrip(t *testing.T) {
	for _, req := range allKinds() {
		t.Run(string(req.Kind()), func(t *testing.T) {
			framed, err := hotmarsh.Marshal(req)
			require.NoError(t, err)
			back, err := Unmarshal(framed)
			require.NoError(t, err)
			assert.Equal(t, req.Kind(), back.Kind())
			again, err := hotmarsh.Marshal(back)
			require.NoError(t, err)
			assert.Equal(t, framed, again)
		})
	}

	_, err := Unmarshal([]byte{0xAC, 0xED, 0x00, 0x05, 0x77, 0x01, 12})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSign(t *testing.T) {
	s, err := signer.New(signer.ED25519, testSeed)
	require.NoError(t, err)

	req := constructorCall()
	env, err := Sign(req, s)
	require.NoError(t, err)
	assert.Equal(t, KindConstructorCall, env.Kind)
	assert.Equal(t, "rO0ABXdABAAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQALOwAAfQABQEGAAPnABMBGg==",
		base64.StdEncoding.EncodeToString(env.Request))
	require.NoError(t, signer.Verify(s.PublicKey(), env.Request, env.Signature))
	assert.Len(t, req.Signature.Signature, 64)

	again, err := Sign(constructorCall(), s)
	require.NoError(t, err)
	assert.Equal(t, env.Signature, again.Signature)

	other := constructorCall()
	other.Nonce = big.NewInt(2)
	changed, err := Sign(other, s)
	require.NoError(t, err)
	assert.NotEqual(t, env.Signature, changed.Signature)

	back, err := env.Decode()
	require.NoError(t, err)
	full, err := hotmarsh.Marshal(req)
	require.NoError(t, err)
	fullBack, err := hotmarsh.Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, full, fullBack)

	bad := constructorCall()
	bad.ChainID = ""
	_, err = Sign(bad, s)
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = Sign(constructorCall(), nil)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestEnvelope(t *testing.T) {
	env, err := Envelope(&InitializationRequest{Classpath: values.MustTransactionReference(testHash), Manifest: values.MustStorageReference(testHash, 1)})
	require.NoError(t, err)
	assert.Empty(t, env.Signature)
	req, err := env.Decode()
	require.NoError(t, err)
	assert.Equal(t, KindInitialization, req.Kind())

	env.Signature = "AAAA"
	_, err = env.Decode()
	assert.ErrorIs(t, err, ErrNotSignable)

	env.Kind = KindJarStore
	_, err = env.Decode()
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSignedRequest_Formats(t *testing.T) {
	s, err := signer.New(signer.ED25519, testSeed)
	require.NoError(t, err)
	env, err := Sign(constructorCall(), s)
	require.NoError(t, err)

	t.Run("JSON", func(t *testing.T) {
		b, err := json.Marshal(env)
		require.NoError(t, err)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(b, &fields))
		assert.Equal(t, "constructor-call", fields["kind"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(env.Request), fields["request"])
		assert.Equal(t, env.Signature, fields["signature"])
	})

	t.Run("YAML", func(t *testing.T) {
		b, err := yaml.Marshal(env)
		require.NoError(t, err)
		assert.Contains(t, string(b), "request: "+base64.StdEncoding.EncodeToString(env.Request))
		var back SignedRequest
		require.NoError(t, yaml.Unmarshal(b, &back))
		assert.Equal(t, env, back)
	})

	t.Run("CBOR", func(t *testing.T) {
		b, err := cbor.Marshal(env)
		require.NoError(t, err)
		var back SignedRequest
		require.NoError(t, cbor.Unmarshal(b, &back))
		assert.Equal(t, env, back)
	})
}

func TestConcurrentEncoding(t *testing.T) {
	const want = "rO0ABXdABAAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQALOwAAfQABQEGAAPnABMBGg=="
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				framed, err := hotmarsh.MarshalFunc(constructorCall().IntoWithoutSignature)
				if err != nil || base64.StdEncoding.EncodeToString(framed) != want {
					errs <- base64.StdEncoding.EncodeToString(framed)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent encoding produced %s", got)
	}
}
