package server

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	public ed25519.PublicKey
	secret ed25519.PrivateKey
	token  string
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(Config{Logger: zerolog.Nop()})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newTestClient(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	public, secret, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &testClient{t: t, server: ts, public: public, secret: secret}
}

func (c *testClient) post(path string, body interface{}, into interface{}) (int, *ErrorOutput) {
	c.t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(c.t, err)
	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, bytes.NewReader(encoded))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var remote ErrorOutput
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		return resp.StatusCode, &remote
	}
	if into != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode, nil
}

func (c *testClient) login() {
	c.t.Helper()
	var challengeOut ChallengeOutput
	status, _ := c.post("/challenge", ChallengeArgs{PubKey: HexBytes(c.public)}, &challengeOut)
	require.Equal(c.t, http.StatusOK, status)

	signature := ed25519.Sign(c.secret, challengeOut.Challenge)
	var loginOut LoginOutput
	status, _ = c.post("/login", map[string]interface{}{
		"pubkey":    HexBytes(c.public),
		"signature": HexBytes(signature),
		"challenge": challengeOut.Challenge,
	}, &loginOut)
	require.Equal(c.t, http.StatusOK, status)
	c.token = loginOut.AccessToken.String()
}

func (c *testClient) createSession(members []HexBytes) uuid.UUID {
	c.t.Helper()
	// the server insists the owner appears in the member list
	var out CreateNewSessionOutput
	status, _ := c.post("/create_new_session", CreateNewSessionArgs{
		PubKeys:      append(members, HexBytes(c.public)),
		MessageCount: 1,
	}, &out)
	require.Equal(c.t, http.StatusOK, status)
	return out.SessionID
}

func (c *testClient) send(session uuid.UUID, recipients []HexBytes, msg []byte) (int, *ErrorOutput) {
	return c.post("/send", SendArgs{SessionID: session, Recipients: recipients, Msg: msg}, nil)
}

func (c *testClient) receive(session uuid.UUID) ([]Msg, int) {
	var out ReceiveOutput
	status, _ := c.post("/receive", ReceiveArgs{SessionID: session}, &out)
	return out.Msgs, status
}

func TestLoginFlow(t *testing.T) {
	_, ts := newTestServer(t)
	client := newTestClient(t, ts)

	// no token: rejected
	status, remote := client.post("/list_sessions", struct{}{}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", remote.Code)

	client.login()
	var out ListSessionsOutput
	status, _ = client.post("/list_sessions", struct{}{}, &out)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, out.SessionIDs)

	// logout invalidates the token
	status, _ = client.post("/logout", struct{}{}, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = client.post("/list_sessions", struct{}{}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginRejectsBadSignature(t *testing.T) {
	_, ts := newTestServer(t)
	client := newTestClient(t, ts)

	var challengeOut ChallengeOutput
	status, _ := client.post("/challenge", ChallengeArgs{PubKey: HexBytes(client.public)}, &challengeOut)
	require.Equal(t, http.StatusOK, status)

	bogus := make([]byte, ed25519.SignatureSize)
	status, remote := client.post("/login", map[string]interface{}{
		"pubkey":    HexBytes(client.public),
		"signature": HexBytes(bogus),
		"challenge": challengeOut.Challenge,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", remote.Code)

	// a challenge is single use
	signature := ed25519.Sign(client.secret, challengeOut.Challenge)
	var loginOut LoginOutput
	status, _ = client.post("/login", map[string]interface{}{
		"pubkey":    HexBytes(client.public),
		"signature": HexBytes(signature),
		"challenge": challengeOut.Challenge,
	}, &loginOut)
	require.Equal(t, http.StatusOK, status)
	status, _ = client.post("/login", map[string]interface{}{
		"pubkey":    HexBytes(client.public),
		"signature": HexBytes(signature),
		"challenge": challengeOut.Challenge,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateSessionRequiresOwnerListed(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()

	// a member list without the owner is rejected
	status, remote := coordinator.post("/create_new_session", CreateNewSessionArgs{
		PubKeys:      []HexBytes{HexBytes(member.public)},
		MessageCount: 1,
	}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidArgument", remote.Code)

	// so is an empty member list
	status, remote = coordinator.post("/create_new_session", CreateNewSessionArgs{
		MessageCount: 1,
	}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidArgument", remote.Code)

	// listing the owner makes the same request succeed
	var out CreateNewSessionOutput
	status, _ = coordinator.post("/create_new_session", CreateNewSessionArgs{
		PubKeys:      []HexBytes{HexBytes(member.public), HexBytes(coordinator.public)},
		MessageCount: 1,
	}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, uuid.Nil, out.SessionID)
}

// FIFO: messages from one sender arrive in order.
func TestQueueFIFO(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	participant := newTestClient(t, ts)
	coordinator.login()
	participant.login()

	session := coordinator.createSession([]HexBytes{HexBytes(participant.public)})

	var sent [][]byte
	for i := byte(0); i < 5; i++ {
		msg := []byte{0x10, i}
		sent = append(sent, msg)
		status, _ := coordinator.send(session, []HexBytes{HexBytes(participant.public)}, msg)
		require.Equal(t, http.StatusOK, status)
	}

	msgs, status := participant.receive(session)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		assert.Equal(t, HexBytes(coordinator.public), msg.Sender)
		assert.Equal(t, HexBytes(sent[i]), msg.Msg)
	}

	// the queue was drained
	msgs, _ = participant.receive(session)
	assert.Empty(t, msgs)
}

// Isolation: messages never cross sessions, even with overlapping members.
func TestSessionIsolation(t *testing.T) {
	_, ts := newTestServer(t)
	coordinatorA := newTestClient(t, ts)
	coordinatorB := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinatorA.login()
	coordinatorB.login()
	member.login()

	sessionA := coordinatorA.createSession([]HexBytes{HexBytes(member.public)})
	sessionB := coordinatorB.createSession([]HexBytes{HexBytes(member.public)})

	status, _ := coordinatorA.send(sessionA, []HexBytes{HexBytes(member.public)}, []byte("for A"))
	require.Equal(t, http.StatusOK, status)

	msgs, _ := member.receive(sessionB)
	assert.Empty(t, msgs, "session B must not observe session A's message")

	msgs, _ = member.receive(sessionA)
	require.Len(t, msgs, 1)
	assert.Equal(t, HexBytes("for A"), msgs[0].Msg)
}

func TestSendToNonMember(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	stranger := newTestClient(t, ts)
	coordinator.login()
	member.login()
	stranger.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})

	// a stranger cannot send into the session
	status, remote := stranger.send(session, []HexBytes{HexBytes(member.public)}, []byte("hi"))
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "NotAMember", remote.Code)

	// a member cannot address a stranger
	status, remote = coordinator.send(session, []HexBytes{HexBytes(stranger.public)}, []byte("hi"))
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "NotAMember", remote.Code)
}

func TestEmptyRecipientsAddressCoordinator(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()
	member.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})
	status, _ := member.send(session, nil, []byte("to the coordinator"))
	require.Equal(t, http.StatusOK, status)

	msgs, _ := coordinator.receive(session)
	require.Len(t, msgs, 1)
	assert.Equal(t, HexBytes(member.public), msgs[0].Sender)
}

func TestCloseSessionOwnerOnly(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()
	member.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})

	status, remote := member.post("/close_session", CloseSessionArgs{SessionID: session}, nil)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "NotAMember", remote.Code)

	status, _ = coordinator.post("/close_session", CloseSessionArgs{SessionID: session}, nil)
	require.Equal(t, http.StatusOK, status)

	_, status = member.receive(session)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionEviction(t *testing.T) {
	srv, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()
	member.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})
	status, _ := coordinator.send(session, []HexBytes{HexBytes(member.public)}, []byte("x"))
	require.Equal(t, http.StatusOK, status)

	// move the clock past the idle timeout
	state := srv.State()
	state.now = func() time.Time { return time.Now().Add(DefaultSessionTimeout + time.Minute) }
	assert.Equal(t, 1, state.EvictIdle())
	state.now = time.Now

	_, status = member.receive(session)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = coordinator.send(session, []HexBytes{HexBytes(member.public)}, []byte("y"))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionInfo(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()
	member.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})
	var info SessionInfoOutput
	status, _ := member.post("/get_session_info", SessionInfoArgs{SessionID: session}, &info)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, HexBytes(coordinator.public), info.CoordinatorPubKey)
	require.Len(t, info.PubKeys, 2)
	assert.Equal(t, HexBytes(member.public), info.PubKeys[0])
	assert.Equal(t, HexBytes(coordinator.public), info.PubKeys[1])

	var sessions ListSessionsOutput
	status, _ = member.post("/list_sessions", struct{}{}, &sessions)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uuid.UUID{session}, sessions.SessionIDs)
}

func TestOversizedMessageRejected(t *testing.T) {
	_, ts := newTestServer(t)
	coordinator := newTestClient(t, ts)
	member := newTestClient(t, ts)
	coordinator.login()
	member.login()

	session := coordinator.createSession([]HexBytes{HexBytes(member.public)})
	status, remote := coordinator.send(session, []HexBytes{HexBytes(member.public)}, make([]byte, MaxMsgSize+1))
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidArgument", remote.Code)
}
