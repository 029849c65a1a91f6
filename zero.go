package ece

// zero overwrites b with zeros. Used to scrub derived secrets (CEK, base
// nonce, PRK, IKM, ECDH shared secret) before they go out of scope, per
// the lifecycle discipline in spec §5: secrets live only for the duration
// of a single call and are released on every exit path.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
