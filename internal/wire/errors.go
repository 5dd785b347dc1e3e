package wire

import "errors"

// ParseError family: malformed frames, unknown tags, short reads, bad UTF-8.
var (
	ErrUnknownMessageType = errors.New("wire: unknown message type")
	ErrShortHeader        = errors.New("wire: short header")
	ErrShortPayload       = errors.New("wire: short payload")
	ErrPayloadTooLarge    = errors.New("wire: declared payload length exceeds MaxPayloadSize")
	ErrInvalidUTF8        = errors.New("wire: inner bytes are not valid utf-8")
)

// CryptError family, surfaced when the AEAD layer rejects a frame.
var (
	ErrDecrypt = errors.New("wire: decryption failed")
	ErrEncrypt = errors.New("wire: encryption failed")
)
