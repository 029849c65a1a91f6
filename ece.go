// Package ece implements the Encrypted Content-Encoding (ECE) codec for
// HTTP, providing authenticated encryption and decryption of message
// payloads as used by the Web Push protocol.
//
// Two related schemes are implemented:
//
//   - aes128gcm: the standardized scheme (RFC 8188) where per-message
//     metadata (salt, record size, key identifier) is carried in a fixed
//     binary header prefixed to the ciphertext.
//   - aesgcm: the earlier, legacy scheme where metadata is carried
//     out-of-band in the Crypto-Key and Encryption HTTP headers, and
//     padding is prefixed to each record instead of suffixed.
//
// Both schemes derive a content encryption key and base nonce from a
// pre-shared input keying material and salt, split the plaintext into
// fixed-size records, AES-128-GCM-seal each record with a record-scoped
// IV, and concatenate the sealed records. Decryption reverses the
// pipeline and validates integrity.
//
// This package is purely synchronous and stateless between calls: a
// single Encrypt/Decrypt call owns its derived key material and scratch
// buffers, and nothing is shared across calls. Concurrent calls on
// disjoint buffers are safe.
//
// References:
//
// Encrypted Content-Encoding for HTTP:
// https://www.rfc-editor.org/rfc/rfc8188
//
// Message Encryption for Web Push:
// https://www.rfc-editor.org/rfc/rfc8291
package ece

const (
	// TagLength is the AES-128-GCM authentication tag length, in bytes.
	TagLength = 16

	// KeyLength is the AES-128 content encryption key length, in bytes.
	KeyLength = 16

	// NonceLength is the base nonce length, in bytes.
	NonceLength = 12

	// SaltLength is the per-message salt length, in bytes.
	SaltLength = 16

	// AuthSecretLength is the Web Push auth secret length, in bytes.
	AuthSecretLength = 16

	// WebPushPrivateKeyLength is the length of a raw P-256 private scalar.
	WebPushPrivateKeyLength = 32

	// WebPushPublicKeyLength is the length of an uncompressed P-256 public
	// point (0x04 || X || Y).
	WebPushPublicKeyLength = 65

	// aes128gcmHeaderLength is the fixed prefix before the variable-length
	// keyId: 16 (salt) + 4 (rs) + 1 (keyIdLen).
	aes128gcmHeaderLength = 21

	// DefaultRecordSize is the rs used when the legacy aesgcm Encryption
	// header omits the rs parameter.
	DefaultRecordSize = 4096

	aes128gcmPadSize = 1
	aesgcmPadSize    = 2
)
