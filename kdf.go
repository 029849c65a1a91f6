package ece

import (
	"crypto/ecdh"
	"crypto/sha256"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

var (
	webPushInfo              = []byte("WebPush: info\x00")
	contentEncryptionKeyInfo = []byte("Content-Encoding: aes128gcm\x00")
	nonceInfo                = []byte("Content-Encoding: nonce\x00")
	aesgcmAuthInfo           = []byte("Content-Encoding: auth\x00")
)

// keyAndNonce holds the secrets derived for a single call. Both fields
// must be zeroed via clear() once the caller is done with them.
type keyAndNonce struct {
	key   [KeyLength]byte
	nonce [NonceLength]byte
}

func (kn *keyAndNonce) clear() {
	zero(kn.key[:])
	zero(kn.nonce[:])
}

func hkdfExpandInto(dst []byte, prk, info []byte) error {
	r := hkdf.Expand(sha256.New, prk, info)
	_, err := io.ReadFull(r, dst)
	return err
}

// deriveAES128GCM implements spec §4.1 "aes128gcm (non-Web Push)": given a
// salt and a pre-shared 16-byte IKM, derive the CEK and base nonce.
func deriveAES128GCM(salt, ikm []byte) (*keyAndNonce, error) {
	prk := hkdf.Extract(sha256.New, ikm, salt)
	defer zero(prk)

	kn := new(keyAndNonce)
	if err := hkdfExpandInto(kn.key[:], prk, contentEncryptionKeyInfo); err != nil {
		return nil, wrapErr(ErrKeyDerivation, err)
	}
	if err := hkdfExpandInto(kn.nonce[:], prk, nonceInfo); err != nil {
		kn.clear()
		return nil, wrapErr(ErrKeyDerivation, err)
	}
	return kn, nil
}

// ecdhP256 performs P-256 scalar multiplication, returning the shared
// X-coordinate. localPriv is a raw 32-byte scalar; remotePub is a raw
// 65-byte uncompressed point (0x04 || X || Y).
func ecdhP256(localPriv, remotePub []byte) ([]byte, error) {
	priv, err := ecdh.P256().NewPrivateKey(localPriv)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	pub, err := ecdh.P256().NewPublicKey(remotePub)
	if err != nil {
		return nil, wrapErr(ErrInvalidPublicKey, err)
	}
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	return secret, nil
}

// deriveWebPushAES128GCM implements spec §4.1 "Web Push aes128gcm". The
// recipient public key (recvPub) is always the Web Push subscriber's key
// regardless of direction; localPriv/remotePub are swapped by the caller
// depending on whether it is encrypting (local=sender, remote=recipient)
// or decrypting (local=recipient, remote=sender).
func deriveWebPushAES128GCM(localPriv, remotePub, authSecret, salt, recvPub, senderPub []byte) (*keyAndNonce, error) {
	ecdhSecret, err := ecdhP256(localPriv, remotePub)
	if err != nil {
		return nil, err
	}
	defer zero(ecdhSecret)

	prkKey := hkdf.Extract(sha256.New, ecdhSecret, authSecret)
	defer zero(prkKey)

	keyInfo := slices.Concat(webPushInfo, recvPub, senderPub)
	ikm := make([]byte, 32)
	defer zero(ikm)
	if err := hkdfExpandInto(ikm, prkKey, keyInfo); err != nil {
		return nil, wrapErr(ErrKeyDerivation, err)
	}

	return deriveAES128GCM(salt, ikm)
}

// writeLenPrefixed appends a two-byte big-endian length followed by b, as
// used by the legacy aesgcm keyInfo/nonceInfo labels (e.g. "\x00\x41" then
// the 65-byte public key).
func writeLenPrefixed(dst []byte, b []byte) []byte {
	dst = append(dst, byte(len(b)>>8), byte(len(b)))
	return append(dst, b...)
}

// deriveWebPushAESGCM implements spec §4.1 "Web Push aesgcm" (legacy
// ordering): the auth-secret HKDF step produces an IKM that is then used
// directly as the HKDF-Extract secret (not chained through the
// aes128gcm cascade), and the CEK/nonce info labels embed both public
// keys with explicit 16-bit length prefixes.
func deriveWebPushAESGCM(localPriv, remotePub, authSecret, salt, recvPub, senderPub []byte) (*keyAndNonce, error) {
	ecdhSecret, err := ecdhP256(localPriv, remotePub)
	if err != nil {
		return nil, err
	}
	defer zero(ecdhSecret)

	prkAuth := hkdf.Extract(sha256.New, ecdhSecret, authSecret)
	defer zero(prkAuth)

	ikm := make([]byte, 32)
	defer zero(ikm)
	if err := hkdfExpandInto(ikm, prkAuth, aesgcmAuthInfo); err != nil {
		return nil, wrapErr(ErrKeyDerivation, err)
	}

	prk := hkdf.Extract(sha256.New, ikm, salt)
	defer zero(prk)

	var keyInfo, nonceInfoBuf []byte
	keyInfo = append(keyInfo, "Content-Encoding: aesgcm\x00"...)
	keyInfo = writeLenPrefixed(keyInfo, recvPub)
	keyInfo = writeLenPrefixed(keyInfo, senderPub)

	nonceInfoBuf = append(nonceInfoBuf, "Content-Encoding: nonce\x00"...)
	nonceInfoBuf = writeLenPrefixed(nonceInfoBuf, recvPub)
	nonceInfoBuf = writeLenPrefixed(nonceInfoBuf, senderPub)

	kn := new(keyAndNonce)
	if err := hkdfExpandInto(kn.key[:], prk, keyInfo); err != nil {
		return nil, wrapErr(ErrKeyDerivation, err)
	}
	if err := hkdfExpandInto(kn.nonce[:], prk, nonceInfoBuf); err != nil {
		kn.clear()
		return nil, wrapErr(ErrKeyDerivation, err)
	}
	return kn, nil
}
