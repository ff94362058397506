package reqfile

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/hotmarsh"
	"github.com/oy3o/hotmarsh/requests"
	"github.com/oy3o/hotmarsh/values"
)

const testHash = "d0e496468c25fca59179885fa7c5ff4f440efbd0e0c96c2426b7997336619882"

const constructorCall = `
kind: constructor-call
chain_id: chaintest
caller: ` + testHash + `#0
gas_limit: 11500
gas_price: 500
classpath: ` + testHash + `
nonce: 1
constructor:
  class: io.takamaka.code.lang.Manifest
  formals: [java.math.BigInteger]
actuals:
  - {type: java.math.BigInteger, value: 999}
`

func unsigned(t *testing.T, req requests.Request) string {
	t.Helper()
	s, ok := req.(requests.Signable)
	require.True(t, ok)
	framed, err := hotmarsh.MarshalFunc(s.IntoWithoutSignature)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(framed)
}

func TestParse_ConstructorCall(t *testing.T) {
	req, err := Parse([]byte(constructorCall), ".")
	require.NoError(t, err)
	assert.Equal(t, requests.KindConstructorCall, req.Kind())
	assert.Equal(t, "rO0ABXdABAAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQALOwAAfQABQEGAAPnABMBGg==", unsigned(t, req))
}

func TestParse_Methods(t *testing.T) {
	static := `
kind: static-method-call
chain_id: chaintest
caller: ` + testHash + `#0
gas_limit: 5000
gas_price: 4000
classpath: ` + testHash + `
nonce: 1
method:
  class: io.takamaka.code.lang.Account
  name: nonce
  returns: java.math.BigInteger
`
	req, err := Parse([]byte(static), ".")
	require.NoError(t, err)
	assert.Equal(t, "rO0ABXdDBgAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQABEgAABW5vbmNlGg==", unsigned(t, req))

	transfer := `
kind: transfer
chain_id: chaintest
caller: ` + testHash + `#0
gas_limit: 5000
gas_price: 4000
classpath: ` + testHash + `
nonce: 1
receiver: ` + testHash + `#0
amount: 300
`
	req, err = Parse([]byte(transfer), ".")
	require.NoError(t, err)
	assert.Equal(t, requests.KindInstanceMethodCall, req.Kind())
	assert.Equal(t, "rO0ABXc8BwAJY2hhaW50ZXN0///Q5JZGjCX8pZF5iF+nxf9PRA770ODJbCQmt5lzNmGYggQAE4gAD6AABQAAAAEs", unsigned(t, req))

	system := `
kind: instance-system-method-call
caller: ` + testHash + `#0
gas_limit: 10000
classpath: ` + testHash + `
nonce: 0
receiver: ` + testHash + `#2
method:
  class: io.takamaka.code.lang.Manifest
  name: getGamete
  returns: io.takamaka.code.lang.Gamete
`
	req, err = Parse([]byte(system), ".")
	require.NoError(t, err)
	sys, ok := req.(*requests.InstanceSystemMethodCallRequest)
	require.True(t, ok)
	assert.Equal(t, "getGamete", sys.Method.Name())
	assert.Zero(t, sys.GasPrice.Sign())
}

func TestLoad_JarStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "code.jar"), []byte("PK\x03\x04"), 0o600))
	file := `
kind: jar-store-initial
jar: code.jar
dependencies: [` + testHash + `]
`
	path := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(file), 0o600))

	req, err := Load(path)
	require.NoError(t, err)
	jsi, ok := req.(*requests.JarStoreInitialRequest)
	require.True(t, ok)
	assert.Equal(t, []byte("PK\x03\x04"), jsi.Jar)
	assert.Equal(t, []values.TransactionReference{values.MustTransactionReference(testHash)}, jsi.Dependencies)

	req, err = Parse([]byte("kind: jar-store-initial\njar_base64: UEsDBA==\n"), dir)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), req.(*requests.JarStoreInitialRequest).Jar)
}

func TestParse_Initial(t *testing.T) {
	gamete := "kind: gamete-creation\nclasspath: " + testHash + "\ninitial_amount: 100000000000000000000000\npublic_key: key\n"
	req, err := Parse([]byte(gamete), ".")
	require.NoError(t, err)
	g := req.(*requests.GameteCreationRequest)
	assert.Equal(t, "100000000000000000000000", g.InitialAmount.String())
	assert.Zero(t, g.RedInitialAmount.Sign())

	init := "kind: initialization\nclasspath: " + testHash + "\nmanifest: " + testHash + "#1\n"
	req, err = Parse([]byte(init), ".")
	require.NoError(t, err)
	assert.Equal(t, requests.KindInitialization, req.Kind())
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		want error
	}{
		{"unknownField", constructorCall + "colour: red\n", ErrInvalidFile},
		{"unknownKind", "kind: teleport\n", requests.ErrUnknownKind},
		{"missingCaller", "kind: static-method-call\nchain_id: c\n", ErrInvalidFile},
		{"badNonce", "kind: gamete-creation\nclasspath: " + testHash + "\ninitial_amount: lots\n", ErrInvalidFile},
		{"badReference", "kind: initialization\nclasspath: " + testHash + "\nmanifest: nowhere\n", values.ErrInvalidReference},
		{"missingJar", "kind: jar-store-initial\n", requests.ErrMissingField},
		{"bothJars", "kind: jar-store-initial\njar: a.jar\njar_base64: AA==\n", ErrInvalidFile},
		{"arity", constructorCall + "  - {type: int, value: 1}\n", requests.ErrArityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.file), t.TempDir())
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
