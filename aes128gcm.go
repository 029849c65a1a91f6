package ece

import (
	"crypto/ecdh"
	"crypto/rand"
)

// EncryptAES128GCM implements spec §6 façade entry point 1: encrypts
// plaintext for a Web Push recipient, generating a fresh salt and sender
// ECDH keypair internally.
func EncryptAES128GCM(recvPub, authSecret []byte, rs uint32, padLen uint64, plaintext []byte) ([]byte, error) {
	if len(authSecret) != AuthSecretLength {
		return nil, newErr(ErrInvalidAuthSecret)
	}
	if len(recvPub) != WebPushPublicKeyLength {
		return nil, newErr(ErrInvalidPublicKey)
	}

	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, wrapErr(ErrInvalidSalt, err)
	}

	senderPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}

	return encryptWebPushAES128GCM(senderPriv.Bytes(), authSecret, salt, recvPub, rs, padLen, plaintext)
}

// EncryptAES128GCMWithKeys implements spec §6 façade entry point 2: a
// deterministic variant taking caller-supplied sender private key and
// salt, used for reproducing test vectors.
func EncryptAES128GCMWithKeys(senderPriv, authSecret, salt, recvPub []byte, rs uint32, padLen uint64, plaintext []byte) ([]byte, error) {
	if len(authSecret) != AuthSecretLength {
		return nil, newErr(ErrInvalidAuthSecret)
	}
	if len(salt) != SaltLength {
		return nil, newErr(ErrInvalidSalt)
	}
	if len(senderPriv) != WebPushPrivateKeyLength {
		return nil, newErr(ErrInvalidPrivateKey)
	}
	if len(recvPub) != WebPushPublicKeyLength {
		return nil, newErr(ErrInvalidPublicKey)
	}
	return encryptWebPushAES128GCM(senderPriv, authSecret, salt, recvPub, rs, padLen, plaintext)
}

func encryptWebPushAES128GCM(senderPriv, authSecret, salt, recvPub []byte, rs uint32, padLen uint64, plaintext []byte) ([]byte, error) {
	senderKey, err := ecdh.P256().NewPrivateKey(senderPriv)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	senderPub := senderKey.PublicKey().Bytes()

	kn, err := deriveWebPushAES128GCM(senderPriv, recvPub, authSecret, salt, recvPub, senderPub)
	if err != nil {
		return nil, err
	}
	defer kn.clear()

	ciphertext, err := sealRecords(kn, rs, padLen, plaintext, &schemeAES128GCM)
	if err != nil {
		return nil, err
	}

	payload := writeAES128GCMHeader(salt, rs, senderPub)
	return append(payload, ciphertext...), nil
}

// DecryptAES128GCM implements spec §6 façade entry point 3: decrypts an
// aes128gcm payload given a pre-shared 16-byte IKM (non-Web-Push usage).
func DecryptAES128GCM(ikm, payload []byte) ([]byte, error) {
	salt, rs, _, ciphertext, err := readAES128GCMHeader(payload)
	if err != nil {
		return nil, err
	}

	kn, err := deriveAES128GCM(salt, ikm)
	if err != nil {
		return nil, err
	}
	defer kn.clear()

	return openRecords(kn, rs, ciphertext, &schemeAES128GCM)
}

// DecryptWebPushAES128GCM implements spec §6 façade entry point 4.
func DecryptWebPushAES128GCM(recvPriv, authSecret, payload []byte) ([]byte, error) {
	if len(authSecret) != AuthSecretLength {
		return nil, newErr(ErrInvalidAuthSecret)
	}
	if len(recvPriv) != WebPushPrivateKeyLength {
		return nil, newErr(ErrInvalidPrivateKey)
	}

	salt, rs, senderPub, ciphertext, err := readAES128GCMHeader(payload)
	if err != nil {
		return nil, err
	}
	if len(senderPub) != WebPushPublicKeyLength {
		return nil, newErr(ErrInvalidPublicKey)
	}
	if len(ciphertext) == 0 {
		return nil, newErr(ErrZeroCiphertext)
	}

	recvKey, err := ecdh.P256().NewPrivateKey(recvPriv)
	if err != nil {
		return nil, wrapErr(ErrInvalidPrivateKey, err)
	}
	recvPub := recvKey.PublicKey().Bytes()

	kn, err := deriveWebPushAES128GCM(recvPriv, senderPub, authSecret, salt, recvPub, senderPub)
	if err != nil {
		return nil, err
	}
	defer kn.clear()

	return openRecords(kn, rs, ciphertext, &schemeAES128GCM)
}

// AES128GCMPlaintextMaxLength computes the upper bound on the plaintext
// a payload can yield, per spec §6: callers use this to size an output
// buffer upfront; actual output may be smaller due to padding.
func AES128GCMPlaintextMaxLength(payload []byte) (int, error) {
	_, rs, _, ciphertext, err := readAES128GCMHeader(payload)
	if err != nil {
		return 0, err
	}
	return int(plaintextMaxLengthFromCiphertext(rs, uint64(len(ciphertext)))), nil
}

func plaintextMaxLengthFromCiphertext(rs uint32, ciphertextLen uint64) uint64 {
	if rs == 0 {
		return 0
	}
	numRecords := ciphertextLen/uint64(rs) + 1
	overhead := uint64(TagLength) * numRecords
	if overhead > ciphertextLen {
		return 0
	}
	return ciphertextLen - overhead
}

// AES128GCMPayloadMaxLength computes the upper bound on the encoded
// payload (header + ciphertext) for a plaintext of the given length,
// assuming the maximum possible keyId (a Web Push public key).
func AES128GCMPayloadMaxLength(rs uint32, padLen uint64, plaintextLen int) int {
	ciphertextLen := maxCiphertextLength(rs, aes128gcmPadSize, padLen, uint64(plaintextLen))
	if ciphertextLen == 0 {
		return 0
	}
	return aes128gcmHeaderLength + WebPushPublicKeyLength + int(ciphertextLen)
}
