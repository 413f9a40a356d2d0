package server

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type handlers struct {
	state *State
	log   zerolog.Logger
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = &AppError{Code: "Internal", Msg: "internal error", Status: http.StatusInternalServerError}
		h.log.Error().Err(err).Msg("internal error")
	}
	writeJSON(w, appErr.Status, ErrorOutput{Code: appErr.Code, Msg: appErr.Msg})
}

func decodeBody(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 2*MaxMsgSize)).Decode(into); err != nil {
		return errInvalidArgument("malformed request body")
	}
	return nil
}

// challenge issues a random nonce the caller must sign to log in.
func (h *handlers) challenge(w http.ResponseWriter, r *http.Request) {
	var args ChallengeArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	if len(args.PubKey) != ed25519.PublicKeySize {
		h.writeError(w, errInvalidArgument("pubkey"))
		return
	}
	nonce, err := h.state.NewChallenge(args.PubKey.String())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChallengeOutput{Challenge: nonce})
}

// login verifies the signature over a previously issued challenge and
// mints a bearer token.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var args struct {
		LoginArgs
		Challenge HexBytes `json:"challenge"`
	}
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	if len(args.PubKey) != ed25519.PublicKeySize || len(args.Signature) != ed25519.SignatureSize {
		h.writeError(w, errInvalidArgument("signature or pubkey"))
		return
	}
	if !ed25519.Verify(ed25519.PublicKey(args.PubKey), args.Challenge, args.Signature) {
		h.writeError(w, errUnauthorized())
		return
	}
	if !h.state.TakeChallenge(args.Challenge, args.PubKey.String()) {
		h.writeError(w, errUnauthorized())
		return
	}
	token := h.state.NewAccessToken(args.PubKey.String())
	h.log.Info().Str("pubkey", args.PubKey.String()).Msg("login")
	writeJSON(w, http.StatusOK, LoginOutput{AccessToken: token})
}

// logout invalidates the caller's bearer token.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	h.state.DropToken(user.token)
	writeJSON(w, http.StatusOK, struct{}{})
}

// createNewSession registers a session with the caller as coordinator.
func (h *handlers) createNewSession(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var args CreateNewSessionArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	if len(args.PubKeys) == 0 {
		h.writeError(w, errInvalidArgument("pubkeys"))
		return
	}
	if len(args.CoordinatorPubKey) != 0 && args.CoordinatorPubKey.String() != user.pubkey {
		h.writeError(w, errInvalidArgument("coordinator_pubkey"))
		return
	}
	members := make([]string, len(args.PubKeys))
	ownerListed := false
	for i, pk := range args.PubKeys {
		if len(pk) == 0 {
			h.writeError(w, errInvalidArgument("pubkeys"))
			return
		}
		members[i] = pk.String()
		if members[i] == user.pubkey {
			ownerListed = true
		}
	}
	if !ownerListed {
		h.writeError(w, errInvalidArgument("owner not listed in pubkeys"))
		return
	}
	session := h.state.CreateSession(user.pubkey, members, args.MessageCount)
	h.log.Info().Str("session", session.ID.String()).Int("members", len(members)).Msg("session created")
	writeJSON(w, http.StatusOK, CreateNewSessionOutput{SessionID: session.ID})
}

// listSessions lists the sessions the caller belongs to.
func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	ids := h.state.SessionsFor(user.pubkey)
	writeJSON(w, http.StatusOK, ListSessionsOutput{SessionIDs: ids})
}

// sessionInfo returns a session's membership and coordinator.
func (h *handlers) sessionInfo(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var args SessionInfoArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	session, ok := h.state.Session(args.SessionID)
	if !ok || !session.IsMember(user.pubkey) {
		h.writeError(w, errNotFound())
		return
	}
	pubkeys := make([]HexBytes, 0, len(session.MemberOrder))
	for _, member := range session.MemberOrder {
		decoded, err := hex.DecodeString(member)
		if err != nil {
			continue
		}
		pubkeys = append(pubkeys, decoded)
	}
	coordinator, _ := hex.DecodeString(session.CoordinatorPubKey)
	writeJSON(w, http.StatusOK, SessionInfoOutput{
		MessageCount:      session.MessageCount,
		PubKeys:           pubkeys,
		CoordinatorPubKey: coordinator,
	})
}

// send enqueues an opaque message for every listed recipient. An empty
// recipient list addresses the coordinator.
func (h *handlers) send(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var args SendArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	if len(args.Msg) > MaxMsgSize {
		h.writeError(w, errInvalidArgument("msg is too big"))
		return
	}
	session, ok := h.state.Session(args.SessionID)
	if !ok {
		h.writeError(w, errNotFound())
		return
	}
	if !session.IsMember(user.pubkey) {
		h.writeError(w, errNotAMember())
		return
	}
	recipients := make([]string, 0, len(args.Recipients))
	if len(args.Recipients) == 0 {
		recipients = append(recipients, session.CoordinatorPubKey)
	}
	for _, recipient := range args.Recipients {
		key := recipient.String()
		if !session.IsMember(key) {
			h.writeError(w, errNotAMember())
			return
		}
		recipients = append(recipients, key)
	}
	sender, err := hex.DecodeString(user.pubkey)
	if err != nil {
		h.writeError(w, errInvalidArgument("pubkey"))
		return
	}
	session.Enqueue(h.state.now(), sender, recipients, args.Msg)
	writeJSON(w, http.StatusOK, struct{}{})
}

// receive drains the caller's queue. Non-blocking: an empty queue returns
// an empty list.
func (h *handlers) receive(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var args ReceiveArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	session, ok := h.state.Session(args.SessionID)
	if !ok {
		h.writeError(w, errNotFound())
		return
	}
	if !session.IsMember(user.pubkey) {
		h.writeError(w, errNotAMember())
		return
	}
	msgs := session.Drain(h.state.now(), user.pubkey)
	if msgs == nil {
		msgs = []Msg{}
	}
	writeJSON(w, http.StatusOK, ReceiveOutput{Msgs: msgs})
}

// closeSession removes a session; only the owning coordinator may call it.
func (h *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var args CloseSessionArgs
	if err := decodeBody(r, &args); err != nil {
		h.writeError(w, err)
		return
	}
	session, ok := h.state.Session(args.SessionID)
	if !ok || !session.IsMember(user.pubkey) {
		h.writeError(w, errNotFound())
		return
	}
	if session.CoordinatorPubKey != user.pubkey {
		h.writeError(w, errNotAMember())
		return
	}
	h.state.RemoveSession(args.SessionID)
	h.log.Info().Str("session", args.SessionID.String()).Msg("session closed")
	writeJSON(w, http.StatusOK, struct{}{})
}

type authedUser struct {
	pubkey string
	token  uuid.UUID
}
