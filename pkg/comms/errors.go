package comms

import "errors"

// Transport-level errors. They are retryable at the transport layer only;
// protocol rounds are never retried automatically because a replayed round
// risks nonce reuse.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("session not found")
	ErrNotAMember         = errors.New("not a member of this session")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthenticatedPeer = errors.New("peer failed authentication")
	ErrNetworkFailure     = errors.New("network failure")
)
