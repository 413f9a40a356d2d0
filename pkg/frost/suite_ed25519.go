package frost

import (
	"crypto/sha512"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// Ed25519Suite is FROST(Ed25519, SHA-512) from RFC 9591.
//
// The challenge hash is plain SHA-512 without a context prefix so that the
// resulting signatures verify under RFC 8032 Ed25519 verifiers.
type Ed25519Suite struct{}

const ed25519Context = "FROST-ED25519-SHA512-v1"

func (Ed25519Suite) ID() SuiteID { return SuiteIDEd25519 }

func (Ed25519Suite) Name() string { return ed25519Context }

func (Ed25519Suite) Group() curve.Curve { return curve.Ed25519{} }

func ed25519HashToScalar(dst string, m []byte) curve.Scalar {
	h := sha512.New()
	_, _ = h.Write([]byte(ed25519Context))
	_, _ = h.Write([]byte(dst))
	_, _ = h.Write(m)
	return curve.Ed25519{}.NewScalar().SetUniformBytes(h.Sum(nil))
}

func (Ed25519Suite) H1(m []byte) curve.Scalar { return ed25519HashToScalar("rho", m) }

// H2 omits the context string for RFC 8032 compatibility.
func (Ed25519Suite) H2(m []byte) curve.Scalar {
	digest := sha512.Sum512(m)
	return curve.Ed25519{}.NewScalar().SetUniformBytes(digest[:])
}

func (Ed25519Suite) H3(m []byte) curve.Scalar { return ed25519HashToScalar("nonce", m) }

func (Ed25519Suite) H4(m []byte) []byte {
	h := sha512.New()
	_, _ = h.Write([]byte(ed25519Context))
	_, _ = h.Write([]byte("msg"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (Ed25519Suite) H5(m []byte) []byte {
	h := sha512.New()
	_, _ = h.Write([]byte(ed25519Context))
	_, _ = h.Write([]byte("com"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (Ed25519Suite) HDKG(m []byte) curve.Scalar { return ed25519HashToScalar("dkg", m) }

func (s Ed25519Suite) Challenge(R curve.Point, publicKey curve.Point, msg []byte) (curve.Scalar, error) {
	encodedR, err := R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	encodedKey, err := publicKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	input := make([]byte, 0, len(encodedR)+len(encodedKey)+len(msg))
	input = append(input, encodedR...)
	input = append(input, encodedKey...)
	input = append(input, msg...)
	return s.H2(input), nil
}
