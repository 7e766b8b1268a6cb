package imapclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mailwire/imapflow/imapwire"
)

// UpdateCapability issues CAPABILITY and refreshes the session's capability
// set (§4.A, §4.D.1). Concurrent callers collapse onto a single in-flight
// request via singleflight, since capability rarely changes and several
// callers (Connect, the post-LOGIN/AUTHENTICATE refresh) may ask for it
// at once.
func (s *Session) UpdateCapability(ctx context.Context, force bool) ([]string, error) {
	if !force && !s.capability.Empty() {
		return s.capability.List(), nil
	}
	v, err, _ := s.capSF.Do("capability", func() (interface{}, error) {
		resp, err := s.Exec(ctx, Bare("CAPABILITY"), []string{"CAPABILITY"}, nil)
		if err != nil {
			return nil, err
		}
		caps := extractCapability(resp)
		if len(caps) > 0 {
			s.capability.Replace(caps)
		}
		return s.capability.List(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func extractCapability(resp *Response) []string {
	if len(resp.Capability) > 0 {
		return resp.Capability
	}
	lines := resp.Payload["CAPABILITY"]
	if len(lines) == 0 {
		return nil
	}
	var caps []string
	for _, line := range lines {
		for _, a := range line.Attributes {
			caps = append(caps, strings.ToUpper(a.Value))
		}
	}
	return caps
}

// UpdateID issues the ID command (§4.D.12, RFC 2971) and returns the
// server's identification fields. Only called when the server advertises
// the ID capability.
func (s *Session) UpdateID(ctx context.Context, fields map[string]string) (ServerID, error) {
	attrs := []imapwire.Attribute{imapwire.Nil()}
	if len(fields) > 0 {
		items := make([]imapwire.Attribute, 0, len(fields)*2)
		for k, v := range fields {
			items = append(items, imapwire.String(k), imapwire.String(v))
		}
		attrs = []imapwire.Attribute{imapwire.List(items...)}
	}

	resp, err := s.Exec(ctx, Request{Command: "ID", Attributes: attrs}, []string{"ID"}, nil)
	if err != nil {
		return nil, err
	}

	id := make(ServerID)
	lines := resp.Payload["ID"]
	if len(lines) == 0 {
		return id, nil
	}
	for _, line := range lines {
		if len(line.Attributes) != 1 || line.Attributes[0].IsNil() {
			continue
		}
		pairs := line.Attributes[0].List
		for i := 0; i+1 < len(pairs); i += 2 {
			id[strings.ToLower(pairs[i].Value)] = pairs[i+1].Value
		}
	}
	s.mu.Lock()
	s.serverID = id
	s.hasServerID = true
	s.mu.Unlock()
	s.fireUpdate("serverid", id)
	return id, nil
}

// login runs the configured mechanism and transitions to AUTHENTICATED
// (§4.A, §4.D.12).
func (s *Session) login(ctx context.Context, auth AuthOptions) error {
	switch {
	case auth.XOAuth2Token != "" && s.HasCapability(CapAuthXOAuth2):
		return s.authenticateXOAuth2(ctx, auth.User, auth.XOAuth2Token)
	case auth.User != "":
		return s.loginPlain(ctx, auth.User, auth.Pass)
	default:
		return fmt.Errorf("imapclient: no usable credentials for login")
	}
}

func (s *Session) loginPlain(ctx context.Context, user, pass string) error {
	req := Request{
		Command:    "LOGIN",
		Attributes: []imapwire.Attribute{imapwire.String(user), imapwire.String(pass)},
	}
	_, err := s.Exec(ctx, req, nil, nil)
	if err != nil {
		return fmt.Errorf("imapclient: LOGIN: %w", err)
	}
	s.refreshCapabilityAfterAuth(ctx)
	s.setState(StateAuthenticated)
	return nil
}

// refreshCapabilityAfterAuth runs a forced CAPABILITY round trip after
// LOGIN/AUTHENTICATE only when the session holds no capabilities at all.
// A [CAPABILITY ...] code on the tagged OK or an untagged CAPABILITY line
// during the command has already replaced the set by then. When the set
// is non-empty (for example from the handshake's pre-login CAPABILITY)
// and the completion carried no capability data, no refresh is issued
// and the pre-login set stays in place.
func (s *Session) refreshCapabilityAfterAuth(ctx context.Context) {
	if s.capability.Empty() {
		s.UpdateCapability(ctx, true)
	}
}

// buildXOAuth2Token encodes the SASL XOAUTH2 initial client response
// (RFC, §4.D.12): base64("user="+user+"\x01auth=Bearer "+token+"\x01\x01").
func buildXOAuth2Token(user, token string) string {
	raw := "user=" + user + "\x01auth=Bearer " + token + "\x01\x01"
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// authenticateXOAuth2 sends the token as a second command atom rather than
// over a continuation (§4.D.12): servers that reject it respond with a "+"
// carrying a base64 JSON error challenge, which must be acknowledged with a
// bare line before the tagged NO arrives.
func (s *Session) authenticateXOAuth2(ctx context.Context, user, token string) error {
	encoded := buildXOAuth2Token(user, token)
	opts := &ExecOptions{OnPlusTagged: func(resp *imapwire.Response) ([]byte, error) {
		if resp.HumanReadable != "" {
			if decoded, err := base64.StdEncoding.DecodeString(resp.HumanReadable); err == nil {
				s.log("auth", string(decoded))
			}
		}
		return []byte{}, nil
	}}
	req := Request{
		Command:    "AUTHENTICATE",
		Attributes: []imapwire.Attribute{imapwire.Atom("XOAUTH2"), imapwire.Atom(encoded)},
	}
	_, err := s.Exec(ctx, req, nil, opts)
	if err != nil {
		return fmt.Errorf("imapclient: AUTHENTICATE XOAUTH2: %w", err)
	}
	s.refreshCapabilityAfterAuth(ctx)
	s.setState(StateAuthenticated)
	return nil
}
