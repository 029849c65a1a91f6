package ece

import (
	"crypto/ecdh"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/dunglas/httpsfv"
)

// EncryptWebPushAESGCM implements spec §6 façade entry point 5: encrypts
// a message using the legacy "aesgcm" scheme, returning the ciphertext
// alongside the Crypto-Key and Encryption HTTP headers a sender attaches
// to the push request.
func EncryptWebPushAESGCM(senderPriv, authSecret, salt, recvPub []byte, rs uint32, padLen uint64, plaintext []byte) ([]byte, map[string]string, error) {
	if len(authSecret) != AuthSecretLength {
		return nil, nil, newErr(ErrInvalidAuthSecret)
	}
	if len(salt) != SaltLength {
		return nil, nil, newErr(ErrInvalidSalt)
	}
	if len(senderPriv) != WebPushPrivateKeyLength {
		return nil, nil, newErr(ErrInvalidPrivateKey)
	}
	if len(recvPub) != WebPushPublicKeyLength {
		return nil, nil, newErr(ErrInvalidPublicKey)
	}

	senderKey, err := ecdh.P256().NewPrivateKey(senderPriv)
	if err != nil {
		return nil, nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	senderPub := senderKey.PublicKey().Bytes()

	kn, err := deriveWebPushAESGCM(senderPriv, recvPub, authSecret, salt, recvPub, senderPub)
	if err != nil {
		return nil, nil, err
	}
	defer kn.clear()

	// spec §9 open question: the aesgcm pipeline works in a record size
	// that includes the tag; the wire rs (in the Encryption header) never
	// does.
	ciphertext, err := sealRecords(kn, rs+TagLength, padLen, plaintext, &schemeAESGCM)
	if err != nil {
		return nil, nil, err
	}

	headers := map[string]string{
		"Crypto-Key": buildCryptoKeyHeader(senderPub),
		"Encryption": buildEncryptionHeader(salt, rs),
	}
	return ciphertext, headers, nil
}

// DecryptWebPushAESGCM implements spec §6 façade entry point 6: decrypts
// a legacy "aesgcm" message, reading salt/rs/sender-public-key out of the
// Crypto-Key and Encryption headers instead of a binary header prefix.
func DecryptWebPushAESGCM(recvPriv, authSecret []byte, cryptoKeyHeader, encryptionHeader string, ciphertext []byte) ([]byte, error) {
	if len(authSecret) != AuthSecretLength {
		return nil, newErr(ErrInvalidAuthSecret)
	}
	if len(recvPriv) != WebPushPrivateKeyLength {
		return nil, newErr(ErrInvalidPrivateKey)
	}
	if len(ciphertext) == 0 {
		return nil, newErr(ErrZeroCiphertext)
	}

	salt, rs, senderPub, err := parseWebPushAESGCMParams(cryptoKeyHeader, encryptionHeader)
	if err != nil {
		return nil, err
	}

	recvKey, err := ecdh.P256().NewPrivateKey(recvPriv)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	recvPub := recvKey.PublicKey().Bytes()

	kn, err := deriveWebPushAESGCM(recvPriv, senderPub, authSecret, salt, recvPub, senderPub)
	if err != nil {
		return nil, err
	}
	defer kn.clear()

	return openRecords(kn, rs+TagLength, ciphertext, &schemeAESGCM)
}

// AESGCMPlaintextMaxLength implements spec §6's aesgcm sizing query: every
// plaintext byte occupies one ciphertext byte, and each record adds its
// padding prefix and tag on top, so the bound is simply the ciphertext
// length.
func AESGCMPlaintextMaxLength(ciphertext []byte) int {
	return len(ciphertext)
}

// AESGCMCiphertextMaxLength implements spec §6's aesgcm encrypt sizing
// query, accounting for the rs += tagLen asymmetry.
func AESGCMCiphertextMaxLength(rs uint32, padLen uint64, plaintextLen int) int {
	return int(maxCiphertextLength(rs+TagLength, aesgcmPadSize, padLen, uint64(plaintextLen)))
}

func buildCryptoKeyHeader(senderPub []byte) string {
	return fmt.Sprintf(`keyid="p256dh"; dh=%s`, base64.RawURLEncoding.EncodeToString(senderPub))
}

func buildEncryptionHeader(salt []byte, rs uint32) string {
	return fmt.Sprintf(`keyid="p256dh"; salt=%s; rs=%d`, base64.RawURLEncoding.EncodeToString(salt), rs)
}

// parseLegacyParams accepts the pre-standardization Crypto-Key/Encryption
// header syntax (semicolon-separated key=value parameters, no outer
// dictionary comma) and reads it as an httpsfv Dictionary by normalizing
// it: the separator ";" becomes "," and every unquoted value is quoted,
// since bare base64 values (which may start with a digit, "-" or "_")
// are not always valid structured-field tokens.
func parseLegacyParams(header string) (map[string]string, error) {
	parts := strings.Split(header, ";")
	for i, part := range parts {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && !strings.HasPrefix(value, `"`) {
			parts[i] = name + `="` + value + `"`
		}
	}
	normalized := strings.Join(parts, ",")
	dict, err := httpsfv.UnmarshalDictionary([]string{normalized})
	if err != nil {
		return nil, wrapErr(ErrInvalidHeader, err)
	}

	out := make(map[string]string, len(dict.Names()))
	for _, name := range dict.Names() {
		member, ok := dict.Get(name)
		if !ok {
			continue
		}
		item, ok := member.(httpsfv.Item)
		if !ok {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			out[strings.ToLower(name)] = v
		case int64:
			out[strings.ToLower(name)] = strconv.FormatInt(v, 10)
		}
	}
	return out, nil
}

// parseWebPushAESGCMParams extracts salt, rs, and the sender public key
// from the legacy Crypto-Key/Encryption headers. rs defaults to
// DefaultRecordSize when the Encryption header omits it, per spec §6.
func parseWebPushAESGCMParams(cryptoKeyHeader, encryptionHeader string) (salt []byte, rs uint32, senderPub []byte, err error) {
	cryptoKeyParams, err := parseLegacyParams(cryptoKeyHeader)
	if err != nil {
		return nil, 0, nil, err
	}
	encryptionParams, err := parseLegacyParams(encryptionHeader)
	if err != nil {
		return nil, 0, nil, err
	}

	dh, ok := cryptoKeyParams["dh"]
	if !ok {
		return nil, 0, nil, newErr(ErrInvalidHeader)
	}
	senderPub, err = DecodeBase64(dh)
	if err != nil {
		return nil, 0, nil, wrapErr(ErrInvalidHeader, err)
	}

	saltParam, ok := encryptionParams["salt"]
	if !ok {
		return nil, 0, nil, newErr(ErrInvalidSalt)
	}
	salt, err = DecodeBase64(saltParam)
	if err != nil {
		return nil, 0, nil, wrapErr(ErrInvalidSalt, err)
	}

	rs = DefaultRecordSize
	if rsParam, ok := encryptionParams["rs"]; ok {
		parsed, err := strconv.ParseUint(rsParam, 10, 32)
		if err != nil {
			return nil, 0, nil, wrapErr(ErrInvalidRS, err)
		}
		rs = uint32(parsed)
	}

	return salt, rs, senderPub, nil
}
