package comms

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/quorumsig/frost/server"
)

// Client speaks the server's JSON API. It is a thin transport: every call
// is one HTTP round trip and the bearer token is the only state.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, body, into interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var remote server.ErrorOutput
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		return apiError(resp.StatusCode, remote)
	}
	if into == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func apiError(status int, remote server.ErrorOutput) error {
	switch remote.Code {
	case "Unauthorized":
		return ErrUnauthorized
	case "NotFound":
		return ErrNotFound
	case "NotAMember":
		return ErrNotAMember
	}
	return fmt.Errorf("server returned %d (%s: %s): %w", status, remote.Code, remote.Msg, ErrNetworkFailure)
}

// Login authenticates with the identity's signing key: it requests a
// challenge, signs it, and stores the returned bearer token.
func (c *Client) Login(ctx context.Context, identity *Identity) error {
	pubkey := identity.PublicSigningKey()
	var challengeOut server.ChallengeOutput
	if err := c.post(ctx, "/challenge", server.ChallengeArgs{PubKey: server.HexBytes(pubkey)}, &challengeOut); err != nil {
		return err
	}
	signature := ed25519.Sign(identity.SigningKey, challengeOut.Challenge)
	var loginOut server.LoginOutput
	err := c.post(ctx, "/login", struct {
		PubKey    server.HexBytes `json:"pubkey"`
		Signature server.HexBytes `json:"signature"`
		Challenge server.HexBytes `json:"challenge"`
	}{
		PubKey:    server.HexBytes(pubkey),
		Signature: signature,
		Challenge: challengeOut.Challenge,
	}, &loginOut)
	if err != nil {
		return err
	}
	c.token = loginOut.AccessToken.String()
	return nil
}

// Logout invalidates the bearer token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, "/logout", struct{}{}, nil)
	c.token = ""
	return err
}

// CreateSession registers a session with the given member pubkeys and
// returns its id.
func (c *Client) CreateSession(ctx context.Context, members [][]byte, messageCount uint8) (uuid.UUID, error) {
	pubkeys := make([]server.HexBytes, len(members))
	for i, m := range members {
		pubkeys[i] = m
	}
	var out server.CreateNewSessionOutput
	err := c.post(ctx, "/create_new_session", server.CreateNewSessionArgs{
		PubKeys:      pubkeys,
		MessageCount: messageCount,
	}, &out)
	return out.SessionID, err
}

// ListSessions returns the ids of sessions the caller belongs to.
func (c *Client) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	var out server.ListSessionsOutput
	err := c.post(ctx, "/list_sessions", struct{}{}, &out)
	return out.SessionIDs, err
}

// SessionInfo returns the membership of a session.
func (c *Client) SessionInfo(ctx context.Context, sessionID uuid.UUID) (*server.SessionInfoOutput, error) {
	var out server.SessionInfoOutput
	err := c.post(ctx, "/get_session_info", server.SessionInfoArgs{SessionID: sessionID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Send enqueues msg for every recipient. An empty recipient list addresses
// the session's coordinator.
func (c *Client) Send(ctx context.Context, sessionID uuid.UUID, recipients [][]byte, msg []byte) error {
	encoded := make([]server.HexBytes, len(recipients))
	for i, r := range recipients {
		encoded[i] = r
	}
	return c.post(ctx, "/send", server.SendArgs{
		SessionID:  sessionID,
		Recipients: encoded,
		Msg:        msg,
	}, nil)
}

// Receive drains the caller's queue; it never blocks.
func (c *Client) Receive(ctx context.Context, sessionID uuid.UUID) ([]server.Msg, error) {
	var out server.ReceiveOutput
	err := c.post(ctx, "/receive", server.ReceiveArgs{SessionID: sessionID}, &out)
	return out.Msgs, err
}

// CloseSession deletes the session; only its coordinator may call this.
func (c *Client) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.post(ctx, "/close_session", server.CloseSessionArgs{SessionID: sessionID}, nil)
}
