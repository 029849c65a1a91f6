package ece

import "encoding/binary"

// minBlockPadLen implements spec §4.4.1 step 1's shared core: calculate
// padding so the block retains at least one plaintext byte, except when
// dataPerBlock is 1 and padding remains, where the block holds only padding.
func minBlockPadLen(padLen, dataPerBlock uint64) uint64 {
	blockPadLen := dataPerBlock - 1
	if padLen != 0 && blockPadLen == 0 {
		// dataPerBlock == 1: only one byte fits, so spend it on padding
		// first and carry the rest of the plaintext into later records.
		blockPadLen++
	}
	if blockPadLen > padLen {
		return padLen
	}
	return blockPadLen
}

// aesgcmMinBlockPadLen additionally clamps to the uint16 padLen field
// width used by the legacy scheme.
func aesgcmMinBlockPadLen(padLen, dataPerBlock uint64) uint64 {
	blockPadLen := minBlockPadLen(padLen, dataPerBlock)
	if blockPadLen > 0xffff {
		return 0xffff
	}
	return blockPadLen
}

// assembleAES128GCMBlock lays out plaintext, followed by the delimiter
// byte (0x02 for the last record, 0x01 otherwise), followed by
// blockPadLen zero bytes, per spec §3 invariant 3 and §4.3.
func assembleAES128GCMBlock(plaintext []byte, blockPadLen uint64, lastRecord bool) []byte {
	block := make([]byte, 0, len(plaintext)+1+int(blockPadLen))
	block = append(block, plaintext...)
	if lastRecord {
		block = append(block, 0x02)
	} else {
		block = append(block, 0x01)
	}
	block = append(block, make([]byte, blockPadLen)...)
	return block
}

// assembleAESGCMBlock lays out a big-endian uint16 padLen, followed by
// that many zero bytes, followed by plaintext, per spec §3 invariant 4
// and §4.3.
func assembleAESGCMBlock(plaintext []byte, blockPadLen uint64) []byte {
	block := make([]byte, 0, 2+int(blockPadLen)+len(plaintext))
	var padLenBytes [2]byte
	binary.BigEndian.PutUint16(padLenBytes[:], uint16(blockPadLen))
	block = append(block, padLenBytes[:]...)
	block = append(block, make([]byte, blockPadLen)...)
	block = append(block, plaintext...)
	return block
}

// unpadAES128GCM implements spec §4.3's aes128gcm remove step: scan
// backward over zero bytes, require the first non-zero byte to be the
// delimiter matching isLastRecord, and return the plaintext prefix.
func unpadAES128GCM(block []byte, isLastRecord bool) ([]byte, error) {
	blockLen := len(block)
	for blockLen > 0 {
		blockLen--
		if block[blockLen] == 0 {
			continue
		}
		wantDelim := byte(0x01)
		if isLastRecord {
			wantDelim = 0x02
		}
		if block[blockLen] != wantDelim {
			return nil, newErr(ErrDecryptPadding)
		}
		return block[:blockLen], nil
	}
	return nil, newErr(ErrZeroPlaintext)
}

// unpadAESGCM implements spec §4.3's aesgcm remove step: read the
// big-endian padLen prefix, verify the padding bytes are all zero, and
// return the plaintext that follows. isLastRecord is not consulted for
// aesgcm, per spec.
func unpadAESGCM(block []byte) ([]byte, error) {
	if len(block) < 2 {
		return nil, newErr(ErrDecryptPadding)
	}
	padLen := int(binary.BigEndian.Uint16(block))
	if padLen+2 > len(block) {
		return nil, newErr(ErrDecryptPadding)
	}
	for _, b := range block[2 : 2+padLen] {
		if b != 0 {
			return nil, newErr(ErrDecryptPadding)
		}
	}
	return block[2+padLen:], nil
}
