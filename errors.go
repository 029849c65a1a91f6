package ece

import (
	"errors"
	"fmt"
)

// Kind discriminates the failure modes a codec call can report. Every
// entry point returns at most one Kind; callers should switch on it
// instead of matching error strings.
type Kind int

const (
	// ErrNone is the zero value; never returned wrapped in an Error.
	ErrNone Kind = iota
	ErrOutOfMemory
	ErrInvalidPrivateKey
	ErrInvalidPublicKey
	ErrInvalidAuthSecret
	ErrInvalidSalt
	ErrInvalidRS
	ErrInvalidHeader
	ErrZeroCiphertext
	ErrZeroPlaintext
	ErrShortBlock
	ErrDecrypt
	ErrDecryptPadding
	ErrEncrypt
	ErrEncryptPadding
	ErrEncodePublicKey
	ErrKeyDerivation
)

var kindText = map[Kind]string{
	ErrOutOfMemory:       "output buffer too small",
	ErrInvalidPrivateKey: "invalid private key",
	ErrInvalidPublicKey:  "invalid public key",
	ErrInvalidAuthSecret: "invalid auth secret length",
	ErrInvalidSalt:       "invalid salt",
	ErrInvalidRS:         "invalid record size",
	ErrInvalidHeader:     "invalid aes128gcm header",
	ErrZeroCiphertext:    "zero length ciphertext",
	ErrZeroPlaintext:     "zero length plaintext",
	ErrShortBlock:        "ciphertext record too short",
	ErrDecrypt:           "decryption failed",
	ErrDecryptPadding:    "invalid record padding",
	ErrEncrypt:           "encryption failed",
	ErrEncryptPadding:    "requested padding would leak message length",
	ErrEncodePublicKey:   "failed to encode sender public key",
	ErrKeyDerivation:     "key derivation failed",
}

// Error is the single discriminated error type returned by every codec
// entry point. No partial output should be trusted when Error is non-nil;
// callers must discard whatever output they were given.
type Error struct {
	Kind Kind
	// Err, when set, is the underlying cause (e.g. a GCM tag-verification
	// failure or an ecdh error). It is never required to diagnose the
	// failure class, only to add context.
	Err error
}

func (e *Error) Error() string {
	text := kindText[e.Kind]
	if text == "" {
		text = "ece: unknown error"
	}
	if e.Err != nil {
		return fmt.Sprintf("ece: %s: %v", text, e.Err)
	}
	return "ece: " + text
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind) error { return &Error{Kind: kind} }

func wrapErr(kind Kind, err error) error { return &Error{Kind: kind, Err: err} }

// Is reports whether err carries the given Kind. Mirrors errors.Is so
// callers can write `ece.Is(err, ece.ErrDecrypt)`.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
