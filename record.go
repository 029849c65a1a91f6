package ece

import (
	"crypto/aes"
	"crypto/cipher"
)

// scheme is the per-variant behavior capsule named in spec §9: the
// padding/trailer policy that distinguishes aes128gcm from aesgcm. Key
// derivation is handled separately by the façade (kdf.go), since it also
// depends on whether the call is Web Push or plain aes128gcm.
type scheme struct {
	padSize      int
	minBlockPad  func(padLen, dataPerBlock uint64) uint64
	needsTrailer func(rs uint32, ciphertextLen uint64) bool
	assemble     func(plaintext []byte, blockPadLen uint64, lastRecord bool) []byte
	unpad        func(block []byte, isLastRecord bool) ([]byte, error)
}

var schemeAES128GCM = scheme{
	padSize:      aes128gcmPadSize,
	minBlockPad:  minBlockPadLen,
	needsTrailer: func(uint32, uint64) bool { return false },
	assemble:     assembleAES128GCMBlock,
	unpad:        unpadAES128GCM,
}

var schemeAESGCM = scheme{
	padSize:     aesgcmPadSize,
	minBlockPad: aesgcmMinBlockPadLen,
	needsTrailer: func(rs uint32, ciphertextLen uint64) bool {
		return ciphertextLen%uint64(rs) == 0
	},
	assemble: func(plaintext []byte, blockPadLen uint64, _ bool) []byte {
		return assembleAESGCMBlock(plaintext, blockPadLen)
	},
	unpad: func(block []byte, _ bool) ([]byte, error) { return unpadAESGCM(block) },
}

// maxCiphertextLength implements spec §4.4.1's sizing formula:
// maxCiphertext = (plaintextLen+padLen) + overhead*((plaintextLen+padLen)/dataPerBlock + 1)
// returning 0 if rs does not exceed the per-record overhead (the caller
// treats that as INVALID_RS).
func maxCiphertextLength(rs uint32, padSize int, padLen, plaintextLen uint64) uint64 {
	overhead := uint64(padSize) + TagLength
	if uint64(rs) <= overhead {
		return 0
	}
	dataLen := plaintextLen + padLen
	dataPerBlock := uint64(rs) - overhead
	numRecords := dataLen/dataPerBlock + 1
	return dataLen + overhead*numRecords
}

// sealRecords implements spec §4.4.1: split plaintext (plus padLen bytes
// of requested padding) into fixed-size records and AEAD-seal each one.
func sealRecords(kn *keyAndNonce, rs uint32, padLen uint64, plaintext []byte, sch *scheme) ([]byte, error) {
	overhead := uint64(sch.padSize + TagLength)
	if uint64(rs) <= overhead {
		return nil, newErr(ErrInvalidRS)
	}
	if len(plaintext) == 0 {
		return nil, newErr(ErrZeroPlaintext)
	}

	block, err := aes.NewCipher(kn.key[:])
	if err != nil {
		return nil, wrapErr(ErrEncrypt, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, wrapErr(ErrEncrypt, err)
	}

	dataPerBlock := uint64(rs) - overhead
	maxLen := maxCiphertextLength(rs, sch.padSize, padLen, uint64(len(plaintext)))
	out := make([]byte, 0, maxLen)

	plaintextLen := uint64(len(plaintext))
	remainingPadLen := padLen
	var plaintextStart, counter uint64
	for {
		blockPadLen := sch.minBlockPad(remainingPadLen, dataPerBlock)
		remainingPadLen -= blockPadLen

		plaintextEnd := plaintextStart + dataPerBlock - blockPadLen
		plaintextExhausted := false
		if plaintextEnd >= plaintextLen {
			plaintextEnd = plaintextLen
			plaintextExhausted = true
		}
		blockPlaintextLen := plaintextEnd - plaintextStart
		blockLen := blockPlaintextLen + blockPadLen

		writtenSoFar := uint64(len(out))
		lastRecord := remainingPadLen == 0 && plaintextExhausted &&
			!sch.needsTrailer(rs, writtenSoFar+blockLen+overhead)

		if !lastRecord && blockLen < dataPerBlock {
			// Padding left over, but not enough plaintext to fill a full
			// record: writing a trailing padding-only record would leak
			// the message length, so we refuse instead.
			return nil, newErr(ErrEncryptPadding)
		}

		if counter == ^uint64(0) {
			return nil, newErr(ErrEncrypt)
		}
		iv := generateIV(kn.nonce[:], counter)
		plain := sch.assemble(plaintext[plaintextStart:plaintextEnd], blockPadLen, lastRecord)
		out = gcm.Seal(out, iv[:], plain, nil)

		plaintextStart = plaintextEnd
		counter++
		if lastRecord {
			break
		}
	}
	return out, nil
}

// openRecords implements spec §4.4.2: walk fixed-size ciphertext records,
// AEAD-open each one, strip its padding, and concatenate the yielded
// plaintext.
func openRecords(kn *keyAndNonce, rs uint32, ciphertext []byte, sch *scheme) ([]byte, error) {
	overhead := uint64(sch.padSize + TagLength)
	if uint64(rs) <= overhead {
		return nil, newErr(ErrInvalidRS)
	}

	block, err := aes.NewCipher(kn.key[:])
	if err != nil {
		return nil, wrapErr(ErrDecrypt, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, wrapErr(ErrDecrypt, err)
	}

	var out []byte
	var recordStart, counter uint64
	ciphertextLen := uint64(len(ciphertext))
	for recordStart < ciphertextLen {
		recordEnd := recordStart + uint64(rs)
		if recordEnd > ciphertextLen {
			recordEnd = ciphertextLen
		}
		recordLen := recordEnd - recordStart
		if recordLen <= TagLength {
			return nil, newErr(ErrShortBlock)
		}

		if counter == ^uint64(0) {
			return nil, newErr(ErrDecrypt)
		}
		iv := generateIV(kn.nonce[:], counter)
		opened, err := gcm.Open(nil, iv[:], ciphertext[recordStart:recordEnd], nil)
		if err != nil {
			return nil, wrapErr(ErrDecrypt, err)
		}

		isLastRecord := recordEnd >= ciphertextLen
		plain, err := sch.unpad(opened, isLastRecord)
		if err != nil {
			return nil, err
		}
		out = append(out, plain...)

		recordStart = recordEnd
		counter++
	}
	return out, nil
}
