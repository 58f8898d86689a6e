package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/Alia5/viashift/apitypes"
	apierror "github.com/Alia5/viashift/internal/server/api/error"
)

const (
	HandshakeMagic = "vSH1\x00"
	NonceSize      = 32
	okPrefix       = "OK\x00"
	authContext    = "viashift-auth-v1"
)

// ReadClientNonce reads the client nonce. The magic must already be consumed.
func ReadClientNonce(r io.Reader) (clientNonce []byte, err error) {
	clientNonce = make([]byte, NonceSize)
	if _, err = io.ReadFull(r, clientNonce); err != nil {
		return nil, fmt.Errorf("read client nonce: %w", err)
	}
	return clientNonce, nil
}

// WriteServerHandshake sends "OK\0" followed by a fresh server nonce.
func WriteServerHandshake(w io.Writer) (serverNonce []byte, err error) {
	if w == nil {
		return nil, fmt.Errorf("write response: write on nil pointer")
	}
	serverNonce = make([]byte, NonceSize)
	if _, err = rand.Read(serverNonce); err != nil {
		return nil, fmt.Errorf("generate server nonce: %w", err)
	}
	if _, err = w.Write(append([]byte(okPrefix), serverNonce...)); err != nil {
		return nil, fmt.Errorf("write response: %w", err)
	}
	return serverNonce, nil
}

// IsAuthHandshake reports whether r starts with the handshake magic. It
// stops peeking at the first byte that differs, so short plain requests do
// not block.
func IsAuthHandshake(r *bufio.Reader) (bool, error) {
	for i := 1; i <= len(HandshakeMagic); i++ {
		b, err := r.Peek(i)
		if err != nil {
			return false, err
		}
		if b[i-1] != HandshakeMagic[i-1] {
			return false, nil
		}
	}
	return true, nil
}

func proof(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// ClientHandshake proves knowledge of key to the server.
// Client sends: magic, client nonce, HMAC(key, context|nonce).
// Server answers "OK\0" + server nonce, or a problem JSON line.
func ClientHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if r == nil || w == nil {
		return nil, nil, fmt.Errorf("handshake: nil reader or writer")
	}
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}

	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}
	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, proof(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	prefix := make([]byte, len(okPrefix))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(prefix) != okPrefix {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(prefix, rest...)), "\n")
		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, nil, &apiErr
		}
		return nil, nil, fmt.Errorf("invalid handshake response from server: %q", line)
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

// ServerHandshake verifies the client's proof. r must be positioned at the
// magic. A wrong proof yields a 401 problem and nothing is written.
func ServerHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if r == nil {
		return nil, nil, fmt.Errorf("handshake: nil reader")
	}
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	if _, err := r.Discard(len(HandshakeMagic)); err != nil {
		return nil, nil, fmt.Errorf("discard handshake magic: %w", err)
	}
	clientNonce, err = ReadClientNonce(r)
	if err != nil {
		return nil, nil, err
	}
	clientProof := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, clientProof); err != nil {
		return nil, nil, fmt.Errorf("read client auth: %w", err)
	}
	if !hmac.Equal(clientProof, proof(key, clientNonce)) {
		return nil, nil, apierror.ErrUnauthorized("invalid password")
	}
	serverNonce, err = WriteServerHandshake(w)
	if err != nil {
		return nil, nil, err
	}
	return clientNonce, serverNonce, nil
}

// Dial upgrades a fresh client connection. The returned connection encrypts
// everything that follows.
func Dial(conn net.Conn, key []byte) (net.Conn, error) {
	r := bufio.NewReader(conn)
	clientNonce, serverNonce, err := ClientHandshake(r, conn, key)
	if err != nil {
		return nil, err
	}
	return WrapConn(conn, DeriveSessionKey(key, serverNonce, clientNonce), RoleClient)
}

// Accept upgrades a server connection whose pending input r starts with the
// handshake magic.
func Accept(conn net.Conn, r *bufio.Reader, key []byte) (net.Conn, error) {
	clientNonce, serverNonce, err := ServerHandshake(r, conn, key)
	if err != nil {
		return nil, err
	}
	if r.Buffered() > 0 {
		return nil, fmt.Errorf("handshake: unexpected data after client proof")
	}
	return WrapConn(conn, DeriveSessionKey(key, serverNonce, clientNonce), RoleServer)
}
