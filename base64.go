package ece

import "encoding/base64"

// base64Encoding picks the base64 variant (URL vs standard alphabet,
// padded vs raw) matching s, so callers never have to know in advance
// which flavor a given subscription or header value was encoded with.
// Generalized from the teacher's permissive b64Decode.
func base64Encoding(s string) *base64.Encoding {
	hasPadding := len(s) > 0 && s[len(s)-1] == '='
	isURL := false

outer:
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-', '_':
			isURL = true
			break outer
		case '+', '/':
			break outer
		}
	}

	switch {
	case isURL && hasPadding:
		return base64.URLEncoding
	case isURL && !hasPadding:
		return base64.RawURLEncoding
	case !isURL && hasPadding:
		return base64.StdEncoding
	default:
		return base64.RawStdEncoding
	}
}

// DecodeBase64 decodes s permissively, accepting any of the standard
// base64 alphabet/padding combinations. Used for Web Push subscription
// keys and the legacy aesgcm header parameter values.
func DecodeBase64(s string) ([]byte, error) {
	return base64Encoding(s).DecodeString(s)
}
