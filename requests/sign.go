package requests

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/hotmarsh"
)

// Signer signs the encoding of a request, returning a base64 signature.
// *signer.Signer implements it.
type Signer interface {
	Sign(data []byte) (string, error)
}

// SignedRequest is the envelope a request travels in: its encoding without
// signature, next to the detached base64 signature. Unsigned kinds leave
// Signature empty.
type SignedRequest struct {
	Kind      Kind   `json:"kind" yaml:"kind" cbor:"kind"`
	Request   []byte `json:"request" yaml:"request" cbor:"request"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty" cbor:"signature,omitempty"`
}

// Sign validates req, signs the encoding of req without signature and
// returns the envelope. The signature is also stored into req.
func Sign(req Signable, s Signer, opts ...hotmarsh.Option) (SignedRequest, error) {
	if s == nil {
		return SignedRequest{}, errors.Wrap(ErrMissingField, "signer")
	}
	body, err := hotmarsh.MarshalFunc(req.IntoWithoutSignature, opts...)
	if err != nil {
		return SignedRequest{}, errors.Wrapf(err, "encoding %s request", req.Kind())
	}
	sig, err := s.Sign(body)
	if err != nil {
		return SignedRequest{}, errors.Wrapf(err, "signing %s request", req.Kind())
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return SignedRequest{}, errors.Wrap(err, "signer returned invalid base64")
	}
	req.SetSignature(raw)
	return SignedRequest{Kind: req.Kind(), Request: body, Signature: sig}, nil
}

// Envelope returns the envelope of req. Signed kinds carry the signature
// already stored in req, if any.
func Envelope(req Request, opts ...hotmarsh.Option) (SignedRequest, error) {
	env := SignedRequest{Kind: req.Kind()}
	var err error
	if s, ok := req.(Signable); ok {
		env.Request, err = hotmarsh.MarshalFunc(s.IntoWithoutSignature, opts...)
		if sig := s.signing().Signature; len(sig) > 0 {
			env.Signature = base64.StdEncoding.EncodeToString(sig)
		}
	} else {
		env.Request, err = hotmarsh.Marshal(req, opts...)
	}
	if err != nil {
		return SignedRequest{}, errors.Wrapf(err, "encoding %s request", req.Kind())
	}
	return env, nil
}

// Decode rebuilds the request held by env, with its signature.
func (env SignedRequest) Decode() (Request, error) {
	var req Request
	err := hotmarsh.Unmarshal(env.Request, func(r *hotmarsh.Reader) {
		req = read(r, false)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decoding request")
	}
	if req.Kind() != env.Kind {
		return nil, errors.Wrapf(ErrUnknownKind, "envelope says %s, request is %s", env.Kind, req.Kind())
	}
	if env.Signature == "" {
		return req, nil
	}
	s, ok := req.(Signable)
	if !ok {
		return nil, errors.Wrapf(ErrNotSignable, "%s", req.Kind())
	}
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "decoding signature")
	}
	s.SetSignature(sig)
	return req, nil
}

type envelopeYAML struct {
	Kind      Kind   `yaml:"kind"`
	Request   string `yaml:"request"`
	Signature string `yaml:"signature,omitempty"`
}

// MarshalYAML writes the request bytes in base64, as JSON does.
func (env SignedRequest) MarshalYAML() (any, error) {
	return envelopeYAML{Kind: env.Kind, Request: base64.StdEncoding.EncodeToString(env.Request), Signature: env.Signature}, nil
}

func (env *SignedRequest) UnmarshalYAML(node *yaml.Node) error {
	var e envelopeYAML
	if err := node.Decode(&e); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(e.Request)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	*env = SignedRequest{Kind: e.Kind, Request: raw, Signature: e.Signature}
	return nil
}
