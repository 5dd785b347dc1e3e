// Package client implements the symmetric request/response transaction a
// command is sent with: one TCP connection, one encrypted request, one
// encrypted response, matched by timestamp.
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"recmd/internal/config"
	"recmd/internal/crypto"
	"recmd/internal/wire"
)

// TcpError family: everything that aborts a client transaction.
var (
	ErrConnect            = errors.New("client: connect failed")
	ErrWrite              = errors.New("client: write failed")
	ErrRead               = errors.New("client: read failed")
	ErrUnexpectedType     = errors.New("client: unexpected response message type")
	ErrTimestampMismatch  = errors.New("client: response timestamp does not match request")
)

// nowFunc is overridable in tests.
var nowFunc = time.Now

// Sender runs one-shot request/response transactions against a server.
type Sender struct {
	cfg   *config.Config
	codec *wire.Codec
}

// NewSender builds a Sender from cfg. A fresh Cipher is built from cfg.Key
// for every Sender, since the Cipher carries no state beyond the key.
func NewSender(cfg *config.Config) (*Sender, error) {
	cipher, err := crypto.NewCipher(cfg.Key[:])
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	return &Sender{cfg: cfg, codec: wire.NewCodec(cipher)}, nil
}

// Send opens a TCP connection to addr (host:port), sends cmd as a single
// DirectCmdRequest, waits for the matching DirectCmdResponse, and returns
// its inner bytes (the command's captured output). The connection is
// closed before Send returns, successfully or not.
func (s *Sender) Send(addr string, cmd []byte) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", addr, s.cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer conn.Close()

	timestamp := uint64(nowFunc().Unix())

	frame, err := s.codec.Encode(wire.DirectCmdRequest, timestamp, cmd)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	if err := conn.SetWriteDeadline(nowFunc().Add(s.cfg.WriteTimeout)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := writeFull(conn, frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := conn.SetReadDeadline(nowFunc().Add(s.cfg.ReadTimeout)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	hdr, err := s.codec.ParseHeader(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	ciphertext, err := wire.ReadCiphertext(conn, hdr.PayloadLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	payload, err := s.codec.DecryptPayload(hdr, ciphertext, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	if hdr.Type != wire.DirectCmdResponse {
		return nil, fmt.Errorf("%w: got %v", ErrUnexpectedType, hdr.Type)
	}
	if payload.Timestamp != timestamp {
		return nil, fmt.Errorf("%w: request ts %d, response ts %d", ErrTimestampMismatch, timestamp, payload.Timestamp)
	}

	return payload.Inner, nil
}

// writeFull writes all of buf to w, retrying on partial writes until the
// buffer is exhausted or the deadline already set on w fires.
func writeFull(conn net.Conn, buf []byte) error {
	for len(buf) > 0 {
		n, err := conn.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
