package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Role selects the nonce space of one side of a session. Both sides share
// the session key, so each direction uses its own prefix.
type Role byte

const (
	RoleServer Role = 0x53
	RoleClient Role = 0x43
)

const maxPacketSize = 64 * 1024

// ErrPacketTooLarge is returned for frames above the size limit.
var ErrPacketTooLarge = errors.New("auth: packet too large")

// Conn frames every write as len(4) | nonce(12) | ciphertext.
type Conn struct {
	net.Conn
	aead cipher.AEAD
	role Role

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	recvCtr uint64
	recvBuf bytes.Buffer
}

// WrapConn encrypts conn with sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte, role Role) (*Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead, role: role}, nil
}

func (c *Conn) peer() Role {
	if c.role == RoleServer {
		return RoleClient
	}
	return RoleServer
}

func nonceFor(r Role, ctr uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	nonce[0] = byte(r)
	binary.BigEndian.PutUint64(nonce[4:], ctr)
	return nonce
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	nonce := nonceFor(c.role, c.sendCtr)
	c.sendCtr++

	frame := make([]byte, 4, 4+len(nonce)+len(p)+c.aead.Overhead())
	frame = append(frame, nonce...)
	frame = c.aead.Seal(frame, nonce, p, nil)
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))

	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for c.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxPacketSize {
			return 0, ErrPacketTooLarge
		}
		if length < chacha20poly1305.NonceSize {
			return 0, io.ErrUnexpectedEOF
		}
		pkt := make([]byte, length)
		if _, err := io.ReadFull(c.Conn, pkt); err != nil {
			return 0, err
		}
		nonce, ct := pkt[:chacha20poly1305.NonceSize], pkt[chacha20poly1305.NonceSize:]
		if !bytes.Equal(nonce, nonceFor(c.peer(), c.recvCtr)) {
			return 0, fmt.Errorf("auth: unexpected nonce")
		}
		c.recvCtr++
		pt, err := c.aead.Open(nil, nonce, ct, nil)
		if err != nil {
			return 0, err
		}
		c.recvBuf.Write(pt)
	}
	return c.recvBuf.Read(p)
}
