package dkg

import (
	"fmt"

	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/frost"
	frostdkg "github.com/quorumsig/frost/pkg/frost/dkg"
)

// EncodeContent serializes a round's content for transport. The round
// number travels in the surrounding envelope.
func EncodeContent(suite frost.Suite, content round.Content) ([]byte, error) {
	switch body := content.(type) {
	case *broadcast2:
		return body.Package.Encode(suite)
	case *message3:
		return body.Package.Encode(suite)
	default:
		return nil, fmt.Errorf("dkg: cannot encode content of type %T", content)
	}
}

// DecodeContent parses transported bytes into the content of the given
// round.
func DecodeContent(suite frost.Suite, roundNumber round.Number, data []byte) (round.Content, error) {
	switch roundNumber {
	case 2:
		pkg, err := frostdkg.DecodeRound1Package(suite, data)
		if err != nil {
			return nil, err
		}
		return &broadcast2{Package: pkg}, nil
	case 3:
		pkg, err := frostdkg.DecodeRound2Package(suite, data)
		if err != nil {
			return nil, err
		}
		return &message3{Package: pkg}, nil
	default:
		return nil, fmt.Errorf("dkg: no content for round %d: %w", roundNumber, frost.ErrMalformedEncoding)
	}
}
