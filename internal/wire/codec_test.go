package wire

import (
	"bytes"
	"errors"
	"testing"

	"recmd/internal/crypto"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := crypto.NewCipher(make([]byte, crypto.KeySize))
	if err != nil {
		t.Fatalf("crypto.NewCipher() error: %v", err)
	}
	return NewCodec(c)
}

func TestEncodeParseDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  MessageType
		ts   uint64
		body []byte
	}{
		{name: "request, ascii", typ: DirectCmdRequest, ts: 1700000000, body: []byte(`echo -n "test"`)},
		{name: "response, empty", typ: DirectCmdResponse, ts: 42, body: nil},
		{name: "response, binary", typ: DirectCmdResponse, ts: 42, body: []byte{0x00, 0xaa, 0x0a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := newTestCodec(t)

			frame, err := codec.Encode(tt.typ, tt.ts, tt.body)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			r := bytes.NewReader(frame)
			hdr, err := codec.ParseHeader(r)
			if err != nil {
				t.Fatalf("ParseHeader() error: %v", err)
			}
			if hdr.Type != tt.typ {
				t.Fatalf("header type = %v, want %v", hdr.Type, tt.typ)
			}

			ciphertext, err := ReadCiphertext(r, hdr.PayloadLength)
			if err != nil {
				t.Fatalf("ReadCiphertext() error: %v", err)
			}

			payload, err := codec.DecryptPayload(hdr, ciphertext, false)
			if err != nil {
				t.Fatalf("DecryptPayload() error: %v", err)
			}
			if payload.Timestamp != tt.ts {
				t.Fatalf("timestamp = %d, want %d", payload.Timestamp, tt.ts)
			}
			if !bytes.Equal(payload.Inner, tt.body) {
				t.Fatalf("inner = %q, want %q", payload.Inner, tt.body)
			}
		})
	}
}

func TestHeaderBytesRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	frame, err := codec.Encode(DirectCmdRequest, 7, []byte("ls"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	hdr, err := codec.ParseHeader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}

	if !bytes.Equal(hdr.Bytes(), frame[:HeaderSize]) {
		t.Fatal("Header.Bytes() does not reproduce the original header bytes")
	}
}

func TestParseHeaderUnknownType(t *testing.T) {
	codec := newTestCodec(t)
	frame, err := codec.Encode(DirectCmdRequest, 1, []byte("ls"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	frame[0] = 2

	if _, err := codec.ParseHeader(bytes.NewReader(frame)); err == nil {
		t.Fatal("expected ParseHeader to reject unknown message type")
	}
}

func TestParseHeaderShortInput(t *testing.T) {
	codec := newTestCodec(t)
	if _, err := codec.ParseHeader(bytes.NewReader(make([]byte, HeaderSize-1))); err == nil {
		t.Fatal("expected ParseHeader to fail on short input")
	}
}

func TestTamperSingleByteBreaksDecryption(t *testing.T) {
	codec := newTestCodec(t)
	frame, err := codec.Encode(DirectCmdRequest, 99, []byte("whoami"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	for _, offset := range []int{HeaderSize, len(frame) - 1} {
		tampered := make([]byte, len(frame))
		copy(tampered, frame)
		tampered[offset] ^= 0xFF

		r := bytes.NewReader(tampered)
		hdr, err := codec.ParseHeader(r)
		if err != nil {
			t.Fatalf("ParseHeader() error: %v", err)
		}
		ciphertext, err := ReadCiphertext(r, hdr.PayloadLength)
		if err != nil {
			t.Fatalf("ReadCiphertext() error: %v", err)
		}

		if _, err := codec.DecryptPayload(hdr, ciphertext, false); err == nil {
			t.Fatalf("expected DecryptPayload to fail with tampered byte at offset %d", offset)
		}
	}
}

func TestReadCiphertextRejectsOversizedLength(t *testing.T) {
	r := bytes.NewReader(nil)
	if _, err := ReadCiphertext(r, MaxPayloadSize+1); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("ReadCiphertext() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestEncodeIsNonDeterministic(t *testing.T) {
	codec := newTestCodec(t)
	a, err := codec.Encode(DirectCmdRequest, 1, []byte("same input"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	b, err := codec.Encode(DirectCmdRequest, 1, []byte("same input"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two Encode calls with identical inputs produced identical wire bytes")
	}
}

func TestDecryptPayloadRequiresUTF8ForRequest(t *testing.T) {
	codec := newTestCodec(t)
	invalidUTF8 := []byte{0xff, 0xfe, 0xfd}

	frame, err := codec.Encode(DirectCmdRequest, 1, invalidUTF8)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	r := bytes.NewReader(frame)
	hdr, err := codec.ParseHeader(r)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	ciphertext, err := ReadCiphertext(r, hdr.PayloadLength)
	if err != nil {
		t.Fatalf("ReadCiphertext() error: %v", err)
	}

	if _, err := codec.DecryptPayload(hdr, ciphertext, true); err == nil {
		t.Fatal("expected DecryptPayload to reject non-UTF-8 inner bytes when requireUTF8 is set")
	}

	// The response side never enforces UTF-8.
	if _, err := codec.DecryptPayload(hdr, ciphertext, false); err != nil {
		t.Fatalf("DecryptPayload with requireUTF8=false should accept raw bytes, got: %v", err)
	}
}
