package ece

import "encoding/binary"

// generateIV derives the per-record IV from the base nonce and the
// record counter: the low 64 bits of the nonce are XORed with the
// big-endian counter; the high 32 bits are left untouched.
func generateIV(nonce []byte, counter uint64) [NonceLength]byte {
	var iv [NonceLength]byte
	copy(iv[:], nonce)

	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)
	for i := range counterBytes {
		iv[len(iv)-8+i] ^= counterBytes[i]
	}
	return iv
}
