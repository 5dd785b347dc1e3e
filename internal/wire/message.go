// Package wire implements the binary framing and authenticated-encryption
// envelope used between the remote-command client and server.
package wire

import "fmt"

// MessageType is the single-byte tag at offset 0 of a frame.
type MessageType uint8

const (
	// DirectCmdRequest carries a command line from client to server.
	DirectCmdRequest MessageType = 0
	// DirectCmdResponse carries captured command output from server to client.
	DirectCmdResponse MessageType = 1
)

// Valid reports whether t is one of the two recognized message types.
func (t MessageType) Valid() bool {
	return t == DirectCmdRequest || t == DirectCmdResponse
}

func (t MessageType) String() string {
	switch t {
	case DirectCmdRequest:
		return "DirectCmdRequest"
	case DirectCmdResponse:
		return "DirectCmdResponse"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// Wire sizes, per the framing laid out in spec.md section 6.
const (
	NonceSize = 24
	// HeaderSize is the fixed on-wire size of a Header: 1 type byte,
	// 4 length bytes, 24 nonce bytes.
	HeaderSize = 1 + 4 + NonceSize

	// TimestampSize and LengthPrefixSize are the fixed-width prefix fields
	// of the decrypted payload, ahead of the variable-length inner bytes.
	TimestampSize    = 8
	LengthPrefixSize = 4
	PayloadPrefixSize = TimestampSize + LengthPrefixSize

	// MaxPayloadSize bounds the ciphertext length a Header is allowed to
	// declare. A command line or its captured output has no legitimate
	// reason to approach this; the real purpose is keeping the header's
	// length field, which a peer fully controls before any authentication
	// happens, from driving an allocation sized by whatever that peer
	// feels like writing.
	MaxPayloadSize = 16 * 1024 * 1024
)

// Header is the 29-byte fixed prefix of every frame.
type Header struct {
	Type          MessageType
	PayloadLength uint32
	Nonce         [NonceSize]byte
}

// Payload is the decrypted plaintext of a message: a timestamp used to
// correlate requests with responses, and the inner application bytes.
type Payload struct {
	Timestamp uint64
	Inner     []byte
}

// Message is a fully parsed and decrypted frame.
type Message struct {
	Header  Header
	Payload Payload
}
