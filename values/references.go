package values

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/oy3o/hotmarsh"
)

// HashSize is the size in bytes of a transaction hash.
const HashSize = 32

// TransactionReference identifies a transaction by its hash.
type TransactionReference struct {
	hash string // lowercase hex
}

// NewTransactionReference returns the reference to the transaction with the given hex hash.
func NewTransactionReference(hash string) (TransactionReference, error) {
	if len(hash) != 2*HashSize {
		return TransactionReference{}, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return TransactionReference{}, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return TransactionReference{hash: strings.ToLower(hash)}, nil
}

// MustTransactionReference is NewTransactionReference for hashes known to be valid.
func MustTransactionReference(hash string) TransactionReference {
	t, err := NewTransactionReference(hash)
	if err != nil {
		panic(err)
	}
	return t
}

// Kind is the kind of transaction references built by this package.
func (TransactionReference) Kind() string { return "local" }

func (t TransactionReference) Hash() string   { return t.hash }
func (t TransactionReference) String() string { return t.hash }
func (t TransactionReference) IsZero() bool   { return t.hash == "" }

// Into writes t through the transaction reference table. The full form is the raw hash.
func (t TransactionReference) Into(c *hotmarsh.Context) {
	raw, err := hex.DecodeString(t.hash)
	if err != nil || len(raw) != HashSize {
		c.Failf(ErrInvalidHash, "%q", t.hash)
		return
	}
	c.WriteTransactionReferenceShared(t.hash, func(c *hotmarsh.Context) {
		c.WriteBytes(raw)
	})
}

// ReadTransactionReference decodes a transaction reference written by Into.
func ReadTransactionReference(r *hotmarsh.Reader) TransactionReference {
	return hotmarsh.ReadShared(r, hotmarsh.TableTransactionReferences, func(r *hotmarsh.Reader) TransactionReference {
		raw := r.ReadBytes(HashSize)
		return TransactionReference{hash: hex.EncodeToString(raw)}
	})
}

// StorageReference identifies an object by the transaction that created it
// and its progressive number among the objects created by that transaction.
type StorageReference struct {
	transaction TransactionReference
	progressive *big.Int
}

// NewStorageReference returns a storage reference. progressive must not be negative.
func NewStorageReference(transaction TransactionReference, progressive *big.Int) (StorageReference, error) {
	if transaction.IsZero() {
		return StorageReference{}, fmt.Errorf("%w: missing transaction", ErrInvalidReference)
	}
	if progressive == nil || progressive.Sign() < 0 {
		return StorageReference{}, ErrInvalidProgressive
	}
	return StorageReference{transaction: transaction, progressive: new(big.Int).Set(progressive)}, nil
}

// MustStorageReference is NewStorageReference for a hash and progressive known to be valid.
func MustStorageReference(hash string, progressive int64) StorageReference {
	s, err := NewStorageReference(MustTransactionReference(hash), big.NewInt(progressive))
	if err != nil {
		panic(err)
	}
	return s
}

// ParseStorageReference parses the textual form hash#progressive, with the
// progressive in hexadecimal as printed by String.
func ParseStorageReference(s string) (StorageReference, error) {
	hash, prog, ok := strings.Cut(s, "#")
	if !ok {
		return StorageReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	t, err := NewTransactionReference(hash)
	if err != nil {
		return StorageReference{}, err
	}
	p, ok := new(big.Int).SetString(prog, 16)
	if !ok {
		return StorageReference{}, fmt.Errorf("%w: %q", ErrInvalidProgressive, prog)
	}
	return NewStorageReference(t, p)
}

func (s StorageReference) Transaction() TransactionReference { return s.transaction }

// Progressive returns a copy of the progressive number.
func (s StorageReference) Progressive() *big.Int {
	if s.progressive == nil {
		return nil
	}
	return new(big.Int).Set(s.progressive)
}

func (s StorageReference) IsZero() bool { return s.transaction.IsZero() }

func (s StorageReference) String() string {
	if s.IsZero() {
		return "<nil reference>"
	}
	return s.transaction.hash + "#" + s.progressive.Text(16)
}

// Equal reports whether s and o reference the same object.
func (s StorageReference) Equal(o StorageReference) bool {
	if s.IsZero() || o.IsZero() {
		return s.IsZero() == o.IsZero()
	}
	return s.transaction == o.transaction && s.progressive.Cmp(o.progressive) == 0
}

func (StorageReference) isStorageValue() {}

// Into writes s as a storage value: its selector followed by the shared reference.
func (s StorageReference) Into(c *hotmarsh.Context) {
	c.WriteUint8(uint8(SelReference))
	s.IntoWithoutSelector(c)
}

// IntoWithoutSelector writes s through the storage reference table, where the
// type of s is implied by the position, as for callers and receivers.
func (s StorageReference) IntoWithoutSelector(c *hotmarsh.Context) {
	if s.IsZero() || s.progressive == nil {
		c.Failf(ErrInvalidReference, "missing storage reference")
		return
	}
	key := s.progressive.String() + s.transaction.hash
	c.WriteStorageReferenceShared(key, func(c *hotmarsh.Context) {
		s.transaction.Into(c)
		c.WriteBigInteger(s.progressive)
	})
}

// ReadStorageReference decodes a storage reference written by IntoWithoutSelector.
func ReadStorageReference(r *hotmarsh.Reader) StorageReference {
	return hotmarsh.ReadShared(r, hotmarsh.TableStorageReferences, func(r *hotmarsh.Reader) StorageReference {
		t := ReadTransactionReference(r)
		p := r.ReadBigInteger()
		if r.Err() != nil {
			return StorageReference{}
		}
		if p.Sign() < 0 {
			r.Fail(ErrInvalidProgressive)
			return StorageReference{}
		}
		return StorageReference{transaction: t, progressive: p}
	})
}
