package ece

import "encoding/binary"

// writeAES128GCMHeader packs the fixed aes128gcm header described in spec
// §3: 16-byte salt, big-endian uint32 rs, one-byte keyId length, then the
// keyId itself.
func writeAES128GCMHeader(salt []byte, rs uint32, keyId []byte) []byte {
	header := make([]byte, 0, aes128gcmHeaderLength+len(keyId))
	header = append(header, salt...)
	header = binary.BigEndian.AppendUint32(header, rs)
	header = append(header, byte(len(keyId)))
	header = append(header, keyId...)
	return header
}

// readAES128GCMHeader unpacks the header from an aes128gcm payload,
// returning the salt, rs, keyId, and the remaining ciphertext. Per spec
// §4.5, failure (truncated header or a keyIdLen that overruns the
// payload) yields ErrInvalidHeader.
func readAES128GCMHeader(payload []byte) (salt []byte, rs uint32, keyId []byte, ciphertext []byte, err error) {
	if len(payload) < aes128gcmHeaderLength {
		return nil, 0, nil, nil, newErr(ErrInvalidHeader)
	}
	salt = payload[:SaltLength]
	rs = binary.BigEndian.Uint32(payload[SaltLength : SaltLength+4])
	keyIdLen := int(payload[SaltLength+4])
	end := aes128gcmHeaderLength + keyIdLen
	if len(payload) < end {
		return nil, 0, nil, nil, newErr(ErrInvalidHeader)
	}
	keyId = payload[aes128gcmHeaderLength:end]
	ciphertext = payload[end:]
	return salt, rs, keyId, ciphertext, nil
}
