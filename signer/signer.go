// Package signer signs request encodings with a private key.
package signer

import (
	"crypto/x509"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

var (
	// ErrUnknownAlgorithm indicates an algorithm name that is not recognized.
	ErrUnknownAlgorithm = errors.New("signer: unknown signature algorithm")

	// ErrUnimplementedAlgorithm indicates a recognized algorithm that cannot sign.
	ErrUnimplementedAlgorithm = errors.New("signer: signature algorithm not implemented")

	// ErrInvalidKey indicates key material that is neither base64 nor PEM, or has the wrong size.
	ErrInvalidKey = errors.New("signer: invalid private key")

	// ErrBadSignature indicates a signature that does not verify.
	ErrBadSignature = errors.New("signer: signature verification failed")
)

// Algorithm names a signature algorithm.
type Algorithm string

const (
	ED25519   Algorithm = "ed25519"
	SHA256DSA Algorithm = "sha256dsa"
)

// ParseAlgorithm returns the algorithm with the given name, in any case.
// SHA256DSA is recognized but cannot be used to sign.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case ED25519:
		return a, nil
	case SHA256DSA:
		return "", errors.Wrapf(ErrUnimplementedAlgorithm, "%q", name)
	}
	return "", errors.Wrapf(ErrUnknownAlgorithm, "%q", name)
}

// Signer holds one private key. Signing is deterministic: the same key and
// data always give the same signature.
type Signer struct {
	alg Algorithm
	key ed25519.PrivateKey
}

// New returns a signer for the private key in text, which is either base64 or
// PEM. See ParseKey for the accepted forms.
func New(alg Algorithm, text string) (*Signer, error) {
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	key, err := ParseKey(text)
	if err != nil {
		return nil, err
	}
	return &Signer{alg: ED25519, key: key}, nil
}

// FromKey returns an ed25519 signer for key.
func FromKey(key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKey, "%d bytes", len(key))
	}
	return &Signer{alg: ED25519, key: append(ed25519.PrivateKey(nil), key...)}, nil
}

func (s *Signer) Algorithm() Algorithm { return s.alg }

// Sign returns the base64 signature of data.
func (s *Signer) Sign(data []byte) (string, error) {
	if s == nil || len(s.key) != ed25519.PrivateKeySize {
		return "", ErrInvalidKey
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(s.key, data)), nil
}

// PublicKey returns the base64 public key matching the private key.
func (s *Signer) PublicKey() string {
	return base64.StdEncoding.EncodeToString(s.key.Public().(ed25519.PublicKey))
}

// Verify checks the base64 signature sig of data against the base64 public key.
func Verify(publicKey string, data []byte, sig string) error {
	pub, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return errors.Wrap(ErrInvalidKey, "public key")
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return errors.Wrap(ErrBadSignature, "signature is not base64")
	}
	if !ed25519.Verify(pub, data, raw) {
		return ErrBadSignature
	}
	return nil
}

// ParseKey decodes an ed25519 private key. The text is base64, optionally
// between PEM fences, in which case the payload is the text between the
// first and the last line. The decoded bytes are a 32 byte seed, a 64 byte
// private key or a PKCS#8 document.
func ParseKey(text string) (ed25519.PrivateKey, error) {
	payload, err := pemPayload(text)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, "not base64")
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "%d bytes, not PKCS#8: %v", len(raw), err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidKey, "PKCS#8 key of type %T", parsed)
	}
	return key, nil
}

func pemPayload(text string) (string, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "-----BEGIN") {
		return strings.Join(strings.Fields(text), ""), nil
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 3 || !strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "-----END") {
		return "", errors.Wrap(ErrInvalidKey, "unterminated PEM")
	}
	var b strings.Builder
	for _, l := range lines[1 : len(lines)-1] {
		b.WriteString(strings.TrimSpace(l))
	}
	return b.String(), nil
}
