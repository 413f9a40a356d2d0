package frost

import (
	dchestblake2b "github.com/dchest/blake2b"
	"golang.org/x/crypto/blake2b"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// RedPallasSuite is FROST(RedPallas, BLAKE2b-512), following the ZF frost
// conventions for the Zcash Orchard shielded protocol. It supports
// rerandomized signing: signatures are produced under Y + ρ·B for a fresh
// randomizer ρ, which is what makes Orchard spend authorization unlinkable.
type RedPallasSuite struct{}

const redPallasContext = "FROST-RedPallasBLAKE2b512v1"

// redPallasHStarPersonal is the BLAKE2b personalization of the RedDSA
// challenge hash, shared with non-threshold RedPallas signatures.
var redPallasHStarPersonal = []byte("Zcash_RedPallasH")

func (RedPallasSuite) ID() SuiteID { return SuiteIDRedPallas }

func (RedPallasSuite) Name() string { return redPallasContext }

func (RedPallasSuite) Group() curve.Curve { return curve.Pallas{} }

func redPallasHashToScalar(dst string, m []byte) curve.Scalar {
	h, _ := blake2b.New512(nil)
	_, _ = h.Write([]byte(redPallasContext))
	_, _ = h.Write([]byte(dst))
	_, _ = h.Write(m)
	return curve.Pallas{}.NewScalar().SetUniformBytes(h.Sum(nil))
}

func (RedPallasSuite) H1(m []byte) curve.Scalar { return redPallasHashToScalar("rho", m) }

// H2 is the RedDSA HStar hash: BLAKE2b-512 personalized with
// "Zcash_RedPallasH", reduced as a little-endian wide integer.
func (RedPallasSuite) H2(m []byte) curve.Scalar {
	h, err := dchestblake2b.New(&dchestblake2b.Config{
		Size:   64,
		Person: redPallasHStarPersonal,
	})
	if err != nil {
		panic("frost: bad blake2b config: " + err.Error())
	}
	_, _ = h.Write(m)
	return curve.Pallas{}.NewScalar().SetUniformBytes(h.Sum(nil))
}

func (RedPallasSuite) H3(m []byte) curve.Scalar { return redPallasHashToScalar("nonce", m) }

func (RedPallasSuite) H4(m []byte) []byte {
	h, _ := blake2b.New512(nil)
	_, _ = h.Write([]byte(redPallasContext))
	_, _ = h.Write([]byte("msg"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (RedPallasSuite) H5(m []byte) []byte {
	h, _ := blake2b.New512(nil)
	_, _ = h.Write([]byte(redPallasContext))
	_, _ = h.Write([]byte("com"))
	_, _ = h.Write(m)
	return h.Sum(nil)
}

func (RedPallasSuite) HDKG(m []byte) curve.Scalar { return redPallasHashToScalar("dkg", m) }

// HRandomizer implements RandomizedSuite.
func (RedPallasSuite) HRandomizer(m []byte) curve.Scalar {
	return redPallasHashToScalar("randomizer", m)
}

func (s RedPallasSuite) Challenge(R curve.Point, publicKey curve.Point, msg []byte) (curve.Scalar, error) {
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
