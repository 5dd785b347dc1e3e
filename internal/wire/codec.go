package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// AEAD is the cryptographic dependency a Codec needs: fresh-nonce sealing
// and nonce-addressed opening. internal/crypto.Cipher implements this.
type AEAD interface {
	Encrypt(plaintext []byte) (nonce []byte, ciphertext []byte, err error)
	Decrypt(nonce, ciphertext []byte) ([]byte, error)
}

// Codec serializes and deserializes wire messages, delegating all
// confidentiality and integrity work to an AEAD.
type Codec struct {
	aead AEAD
}

// NewCodec builds a Codec backed by the given AEAD.
func NewCodec(aead AEAD) *Codec {
	return &Codec{aead: aead}
}

// Bytes renders a Header back into its canonical 29-byte wire encoding.
// Because every field is fixed-width, this is exactly the byte sequence
// ParseHeader consumed to produce h.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = byte(h.Type)
	binary.BigEndian.PutUint32(buf[1:5], h.PayloadLength)
	copy(buf[5:HeaderSize], h.Nonce[:])
	return buf
}

// Encode serializes and encrypts a message, producing a complete frame:
// type byte, big-endian ciphertext length, nonce, ciphertext.
func (c *Codec) Encode(t MessageType, timestamp uint64, inner []byte) ([]byte, error) {
	plaintext := make([]byte, PayloadPrefixSize+len(inner))
	binary.BigEndian.PutUint64(plaintext[0:TimestampSize], timestamp)
	binary.BigEndian.PutUint32(plaintext[TimestampSize:PayloadPrefixSize], uint32(len(inner)))
	copy(plaintext[PayloadPrefixSize:], inner)

	nonce, ciphertext, err := c.aead.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: encrypt returned a %d-byte nonce, want %d", ErrEncrypt, len(nonce), NonceSize)
	}

	frame := make([]byte, HeaderSize+len(ciphertext))
	frame[0] = byte(t)
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(ciphertext)))
	copy(frame[5:HeaderSize], nonce)
	copy(frame[HeaderSize:], ciphertext)
	return frame, nil
}

// ParseHeader consumes exactly HeaderSize bytes from r and parses them.
// The caller uses the returned PayloadLength to size the subsequent
// ciphertext read.
func (c *Codec) ParseHeader(r io.Reader) (Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrShortHeader, err)
	}

	t := MessageType(raw[0])
	if !t.Valid() {
		return Header{}, ErrUnknownMessageType
	}

	hdr := Header{
		Type:          t,
		PayloadLength: binary.BigEndian.Uint32(raw[1:5]),
	}
	copy(hdr.Nonce[:], raw[5:HeaderSize])
	return hdr, nil
}

// DecryptPayload decrypts ciphertext under hdr's nonce and parses the
// resulting plaintext into a Payload. When requireUTF8 is set, inner bytes
// that are not valid UTF-8 are rejected (the request side of the protocol);
// response inner bytes are raw command output and are never validated.
func (c *Codec) DecryptPayload(hdr Header, ciphertext []byte, requireUTF8 bool) (Payload, error) {
	plaintext, err := c.aead.Decrypt(hdr.Nonce[:], ciphertext)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(plaintext) < PayloadPrefixSize {
		return Payload{}, ErrShortPayload
	}

	timestamp := binary.BigEndian.Uint64(plaintext[0:TimestampSize])
	innerLen := binary.BigEndian.Uint32(plaintext[TimestampSize:PayloadPrefixSize])
	rest := plaintext[PayloadPrefixSize:]
	if uint64(innerLen) > uint64(len(rest)) {
		return Payload{}, ErrShortPayload
	}
	inner := rest[:innerLen]

	if requireUTF8 && !utf8.Valid(inner) {
		return Payload{}, ErrInvalidUTF8
	}

	return Payload{Timestamp: timestamp, Inner: inner}, nil
}

// ReadCiphertext reads exactly length bytes of ciphertext from r, failing
// with ErrShortPayload if the peer provides fewer. length comes straight
// off the wire and is rejected against MaxPayloadSize before anything is
// allocated, since it is not yet authenticated at this point.
func ReadCiphertext(r io.Reader, length uint32) ([]byte, error) {
	if length > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	ciphertext := make([]byte, length)
	if _, err := io.ReadFull(r, ciphertext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortPayload, err)
	}
	return ciphertext, nil
}
