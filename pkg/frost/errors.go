package frost

import (
	"errors"
	"fmt"

	"github.com/quorumsig/frost/pkg/party"
)

// Configuration and input errors.
var (
	ErrInvalidThreshold    = errors.New("invalid threshold")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnknownIdentifier   = errors.New("unknown identifier")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)

// Serialization errors.
var (
	ErrMalformedEncoding = errors.New("malformed encoding")
	ErrWrongCiphersuite  = errors.New("wrong ciphersuite")
)

// Signing errors.
var (
	ErrNonceReuse            = errors.New("signing nonces were already used")
	ErrInvalidSigningPackage = errors.New("invalid signing package")
	ErrInvalidAggregate      = errors.New("aggregate signature is invalid")
	ErrInvalidSignature      = errors.New("signature is invalid")
)

// DKG errors.
var (
	ErrInconsistentPublicKeyPackage = errors.New("public key package is inconsistent with own shares")
)

// InvalidProofOfKnowledgeError identifies a DKG participant whose round 1
// proof failed to verify.
type InvalidProofOfKnowledgeError struct {
	Culprit party.ID
}

func (e *InvalidProofOfKnowledgeError) Error() string {
	return fmt.Sprintf("invalid proof of knowledge from participant %s", e.Culprit)
}

// InvalidShareError identifies a DKG participant whose round 2 share was
// inconsistent with their round 1 commitment.
type InvalidShareError struct {
	Culprit party.ID
}

func (e *InvalidShareError) Error() string {
	return fmt.Sprintf("invalid secret share from participant %s", e.Culprit)
}

// MissingCommitmentsError identifies a signer whose commitments are absent
// from a signing package that should contain them.
type MissingCommitmentsError struct {
	Culprit party.ID
}

func (e *MissingCommitmentsError) Error() string {
	return fmt.Sprintf("missing commitments for participant %s", e.Culprit)
}

// InvalidSignatureShareError identifies a signer whose round 2 share failed
// verification during aggregation.
type InvalidSignatureShareError struct {
	Culprit party.ID
}

func (e *InvalidSignatureShareError) Error() string {
	return fmt.Sprintf("invalid signature share from participant %s", e.Culprit)
}
