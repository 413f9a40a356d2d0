package frost

import (
	"crypto/sha256"
	"fmt"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// Secp256k1Suite is FROST(secp256k1, SHA-256) from RFC 9591.
//
// It exists alongside the Ed25519 and RedPallas suites to keep the suite
// boundary honest: protocol code never mentions a concrete curve.
type Secp256k1Suite struct{}

const secp256k1Context = "FROST-secp256k1-SHA256-v1"

func (Secp256k1Suite) ID() SuiteID { return SuiteIDSecp256k1 }

func (Secp256k1Suite) Name() string { return secp256k1Context }

func (Secp256k1Suite) Group() curve.Curve { return curve.Secp256k1{} }

// hashToFieldLen is L = ceil((ceil(log2(n)) + k) / 8) with k = 128.
const hashToFieldLen = 48

func secp256k1HashToScalar(dst string, m []byte) curve.Scalar {
	uniform := expandMessageXMD(m, []byte(secp256k1Context+dst), hashToFieldLen)
	return curve.Secp256k1{}.NewScalar().SetUniformBytes(uniform)
}

func (Secp256k1Suite) H1(m []byte) curve.Scalar { return secp256k1HashToScalar("rho", m) }

func (Secp256k1Suite) H2(m []byte) curve.Scalar { return secp256k1HashToScalar("chal", m) }

func (Secp256k1Suite) H3(m []byte) curve.Scalar { return secp256k1HashToScalar("nonce", m) }

func (Secp256k1Suite) H4(m []byte) []byte {
	h := sha256.New()
	_, _ = h.Write([]byte(secp256k1Context))
	_, _ = h.Write([]byte("msg"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (Secp256k1Suite) H5(m []byte) []byte {
	h := sha256.New()
	_, _ = h.Write([]byte(secp256k1Context))
	_, _ = h.Write([]byte("com"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (Secp256k1Suite) HDKG(m []byte) curve.Scalar { return secp256k1HashToScalar("dkg", m) }

func (s Secp256k1Suite) Challenge(R curve.Point, publicKey curve.Point, msg []byte) (curve.Scalar, error) {
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

// expandMessageXMD implements expand_message_xmd from RFC 9380 with
// SHA-256, producing lenInBytes uniform bytes.
func expandMessageXMD(msg, dst []byte, lenInBytes int) []byte {
	const hashLen = sha256.Size
	const blockLen = 64

	ell := (lenInBytes + hashLen - 1) / hashLen
	if ell > 255 || len(dst) > 255 {
		panic(fmt.Sprintf("expandMessageXMD: parameters out of range: ell=%d dst=%d", ell, len(dst)))
	}

	dstPrime := append(append([]byte{}, dst...), byte(len(dst)))

	h := sha256.New()
	_, _ = h.Write(make([]byte, blockLen)) // Z_pad
	_, _ = h.Write(msg)
	_, _ = h.Write([]byte{byte(lenInBytes >> 8), byte(lenInBytes)})
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(dstPrime)
	b0 := h.Sum(nil)

	h = sha256.New()
	_, _ = h.Write(b0)
	_, _ = h.Write([]byte{1})
	_, _ = h.Write(dstPrime)
	bi := h.Sum(nil)

	out := make([]byte, 0, ell*hashLen)
	out = append(out, bi...)
	for i := 2; i <= ell; i++ {
		xored := make([]byte, hashLen)
		for j := range xored {
			xored[j] = b0[j] ^ bi[j]
		}
		h = sha256.New()
		_, _ = h.Write(xored)
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write(dstPrime)
		bi = h.Sum(nil)
		out = append(out, bi...)
	}
	return out[:lenInBytes]
}
