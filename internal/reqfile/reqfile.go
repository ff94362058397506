// Package reqfile reads request descriptions written in YAML.
package reqfile

import (
	"bytes"
	"encoding/base64"
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/hotmarsh/requests"
	"github.com/oy3o/hotmarsh/signatures"
	"github.com/oy3o/hotmarsh/types"
	"github.com/oy3o/hotmarsh/values"
)

// ErrInvalidFile indicates a request file with a missing or malformed field.
var ErrInvalidFile = errors.New("reqfile: invalid request file")

// KindTransfer describes an instance call to the receive method that fits Amount.
const KindTransfer = "transfer"

// File is a request description. Which fields are used depends on Kind.
// Numbers are decimal and may exceed 64 bits.
type File struct {
	Kind string `yaml:"kind"`

	ChainID   string `yaml:"chain_id,omitempty"`
	Caller    string `yaml:"caller,omitempty"`
	GasLimit  string `yaml:"gas_limit,omitempty"`
	GasPrice  string `yaml:"gas_price,omitempty"`
	Classpath string `yaml:"classpath,omitempty"`
	Nonce     string `yaml:"nonce,omitempty"`

	Constructor *Code    `yaml:"constructor,omitempty"`
	Method      *Code    `yaml:"method,omitempty"`
	Receiver    string   `yaml:"receiver,omitempty"`
	Actuals     []Actual `yaml:"actuals,omitempty"`
	Amount      string   `yaml:"amount,omitempty"`

	// Jar is a path, relative to the request file. JarBase64 is the jar itself.
	Jar          string   `yaml:"jar,omitempty"`
	JarBase64    string   `yaml:"jar_base64,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`

	InitialAmount    string `yaml:"initial_amount,omitempty"`
	RedInitialAmount string `yaml:"red_initial_amount,omitempty"`
	PublicKey        string `yaml:"public_key,omitempty"`
	Manifest         string `yaml:"manifest,omitempty"`
}

// Code describes a constructor or a method. Methods without Returns are void.
type Code struct {
	Class   string   `yaml:"class"`
	Name    string   `yaml:"name,omitempty"`
	Returns string   `yaml:"returns,omitempty"`
	Formals []string `yaml:"formals,omitempty"`
}

// Actual is an actual argument, given as its type and its textual value.
type Actual struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Load reads and converts the request file at path.
func Load(path string) (requests.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading request file")
	}
	req, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return req, nil
}

// Parse decodes a request file. Relative jar paths are resolved against dir.
// Unknown fields are rejected.
func Parse(data []byte, dir string) (requests.Request, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrapf(ErrInvalidFile, "yaml: %v", err)
	}
	return f.Request(dir)
}

// Request converts f into a request and validates it.
func (f *File) Request(dir string) (requests.Request, error) {
	req, err := f.build(dir)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (f *File) build(dir string) (requests.Request, error) {
	if f.Kind == KindTransfer {
		h, err := f.header()
		if err != nil {
			return nil, err
		}
		receiver, err := reference("receiver", f.Receiver)
		if err != nil {
			return nil, err
		}
		amount, err := integer("amount", f.Amount)
		if err != nil {
			return nil, err
		}
		return requests.NewTransfer(h, f.ChainID, receiver, amount), nil
	}

	kind, err := requests.ParseKind(f.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case requests.KindJarStoreInitial:
		jar, deps, err := f.jar(dir)
		if err != nil {
			return nil, err
		}
		return &requests.JarStoreInitialRequest{Jar: jar, Dependencies: deps}, nil
	case requests.KindGameteCreation:
		req := &requests.GameteCreationRequest{PublicKey: f.PublicKey}
		if req.Classpath, err = transaction("classpath", f.Classpath); err != nil {
			return nil, err
		}
		if req.InitialAmount, err = integer("initial_amount", f.InitialAmount); err != nil {
			return nil, err
		}
		if req.RedInitialAmount, err = optionalInteger("red_initial_amount", f.RedInitialAmount); err != nil {
			return nil, err
		}
		return req, nil
	case requests.KindInitialization:
		req := &requests.InitializationRequest{}
		if req.Classpath, err = transaction("classpath", f.Classpath); err != nil {
			return nil, err
		}
		if req.Manifest, err = reference("manifest", f.Manifest); err != nil {
			return nil, err
		}
		return req, nil
	}

	h, err := f.header()
	if err != nil {
		return nil, err
	}
	sig := requests.Signature{ChainID: f.ChainID}
	actuals, err := f.actuals()
	if err != nil {
		return nil, err
	}
	switch kind {
	case requests.KindJarStore:
		jar, deps, err := f.jar(dir)
		if err != nil {
			return nil, err
		}
		return &requests.JarStoreRequest{Header: h, Signature: sig, Jar: jar, Dependencies: deps}, nil
	case requests.KindConstructorCall:
		ctor, err := f.Constructor.constructor()
		if err != nil {
			return nil, err
		}
		return &requests.ConstructorCallRequest{Header: h, Signature: sig, Constructor: ctor, Actuals: actuals}, nil
	case requests.KindStaticMethodCall:
		m, err := f.Method.method()
		if err != nil {
			return nil, err
		}
		return &requests.StaticMethodCallRequest{Header: h, Signature: sig, Method: m, Actuals: actuals}, nil
	}

	m, err := f.Method.method()
	if err != nil {
		return nil, err
	}
	receiver, err := reference("receiver", f.Receiver)
	if err != nil {
		return nil, err
	}
	if kind == requests.KindInstanceSystemMethodCall {
		return &requests.InstanceSystemMethodCallRequest{Header: h, Method: m, Receiver: receiver, Actuals: actuals}, nil
	}
	return &requests.InstanceMethodCallRequest{Header: h, Signature: sig, Method: m, Receiver: receiver, Actuals: actuals}, nil
}

func (f *File) header() (requests.Header, error) {
	var h requests.Header
	var err error
	if h.Caller, err = reference("caller", f.Caller); err != nil {
		return h, err
	}
	if h.Classpath, err = transaction("classpath", f.Classpath); err != nil {
		return h, err
	}
	if h.GasLimit, err = integer("gas_limit", f.GasLimit); err != nil {
		return h, err
	}
	if h.GasPrice, err = optionalInteger("gas_price", f.GasPrice); err != nil {
		return h, err
	}
	if h.Nonce, err = integer("nonce", f.Nonce); err != nil {
		return h, err
	}
	return h, nil
}

func (f *File) jar(dir string) ([]byte, []values.TransactionReference, error) {
	var jar []byte
	var err error
	switch {
	case f.Jar != "" && f.JarBase64 != "":
		return nil, nil, errors.Wrap(ErrInvalidFile, "jar and jar_base64 are exclusive")
	case f.Jar != "":
		path := f.Jar
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if jar, err = os.ReadFile(path); err != nil {
			return nil, nil, errors.Wrap(err, "reading jar")
		}
	case f.JarBase64 != "":
		if jar, err = base64.StdEncoding.DecodeString(f.JarBase64); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidFile, "jar_base64: %v", err)
		}
	}
	deps := make([]values.TransactionReference, 0, len(f.Dependencies))
	for _, d := range f.Dependencies {
		ref, err := transaction("dependencies", d)
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, ref)
	}
	return jar, deps, nil
}

func (f *File) actuals() ([]values.StorageValue, error) {
	out := make([]values.StorageValue, 0, len(f.Actuals))
	for i, a := range f.Actuals {
		v, err := values.Parse(a.Type, a.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "actual %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Code) parts(field string) (types.ClassType, []types.StorageType, error) {
	if c == nil {
		return types.ClassType{}, nil, errors.Wrapf(ErrInvalidFile, "missing %s", field)
	}
	class, err := types.NewClassType(c.Class)
	if err != nil {
		return types.ClassType{}, nil, errors.Wrapf(err, "%s class", field)
	}
	formals := make([]types.StorageType, 0, len(c.Formals))
	for _, name := range c.Formals {
		t, err := types.Parse(name)
		if err != nil {
			return types.ClassType{}, nil, errors.Wrapf(err, "%s formal", field)
		}
		formals = append(formals, t)
	}
	return class, formals, nil
}

func (c *Code) constructor() (signatures.ConstructorSignature, error) {
	class, formals, err := c.parts("constructor")
	if err != nil {
		return signatures.ConstructorSignature{}, err
	}
	return signatures.NewConstructor(class, formals...)
}

func (c *Code) method() (signatures.MethodSignature, error) {
	class, formals, err := c.parts("method")
	if err != nil {
		return signatures.MethodSignature{}, err
	}
	if c.Returns == "" {
		return signatures.NewVoidMethod(class, c.Name, formals...)
	}
	returns, err := types.Parse(c.Returns)
	if err != nil {
		return signatures.MethodSignature{}, errors.Wrap(err, "method returns")
	}
	return signatures.NewNonVoidMethod(class, c.Name, returns, formals...)
}

func integer(field, s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.Wrapf(ErrInvalidFile, "missing %s", field)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidFile, "%s: %q is not an integer", field, s)
	}
	return v, nil
}

func optionalInteger(field, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	return integer(field, s)
}

func reference(field, s string) (values.StorageReference, error) {
	if s == "" {
		return values.StorageReference{}, errors.Wrapf(ErrInvalidFile, "missing %s", field)
	}
	ref, err := values.ParseStorageReference(s)
	return ref, errors.Wrap(err, field)
}

func transaction(field, s string) (values.TransactionReference, error) {
	if s == "" {
		return values.TransactionReference{}, errors.Wrapf(ErrInvalidFile, "missing %s", field)
	}
	ref, err := values.NewTransactionReference(s)
	return ref, errors.Wrap(err, field)
}
