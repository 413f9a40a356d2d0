package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// HexBytes is a byte slice that travels hex-encoded in JSON bodies.
type HexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*h = decoded
	return nil
}

// String renders the bytes as hex, which is also the map-key form used by
// the session state.
func (h HexBytes) String() string { return hex.EncodeToString(h) }

// ChallengeArgs is the body of POST /challenge.
type ChallengeArgs struct {
	PubKey HexBytes `json:"pubkey"`
}

// ChallengeOutput is the response of POST /challenge.
type ChallengeOutput struct {
	Challenge HexBytes `json:"challenge"`
}

// LoginArgs is the body of POST /login.
type LoginArgs struct {
	PubKey    HexBytes `json:"pubkey"`
	Signature HexBytes `json:"signature"`
}

// LoginOutput is the response of POST /login.
type LoginOutput struct {
	AccessToken uuid.UUID `json:"access_token"`
}

// CreateNewSessionArgs is the body of POST /create_new_session.
type CreateNewSessionArgs struct {
	PubKeys           []HexBytes `json:"pubkeys"`
	MessageCount      uint8      `json:"message_count"`
	CoordinatorPubKey HexBytes   `json:"coordinator_pubkey"`
}

// CreateNewSessionOutput is the response of POST /create_new_session.
type CreateNewSessionOutput struct {
	SessionID uuid.UUID `json:"session_id"`
}

// SessionInfoArgs is the body of POST /get_session_info.
type SessionInfoArgs struct {
	SessionID uuid.UUID `json:"session_id"`
}

// SessionInfoOutput is the response of POST /get_session_info.
type SessionInfoOutput struct {
	MessageCount      uint8      `json:"message_count"`
	PubKeys           []HexBytes `json:"pubkeys"`
	CoordinatorPubKey HexBytes   `json:"coordinator_pubkey"`
}

// SendArgs is the body of POST /send.
type SendArgs struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Recipients []HexBytes `json:"recipients"`
	Msg        HexBytes   `json:"msg"`
}

// Msg is one queued message, tagged with its sender.
type Msg struct {
	Sender HexBytes `json:"sender"`
	Msg    HexBytes `json:"msg"`
}

// ReceiveArgs is the body of POST /receive.
type ReceiveArgs struct {
	SessionID uuid.UUID `json:"session_id"`
}

// ReceiveOutput is the response of POST /receive.
type ReceiveOutput struct {
	Msgs []Msg `json:"msgs"`
}

// CloseSessionArgs is the body of POST /close_session.
type CloseSessionArgs struct {
	SessionID uuid.UUID `json:"session_id"`
}

// ListSessionsOutput is the response of POST /list_sessions.
type ListSessionsOutput struct {
	SessionIDs []uuid.UUID `json:"session_ids"`
}

// ErrorOutput is the JSON shape of every error response.
type ErrorOutput struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
