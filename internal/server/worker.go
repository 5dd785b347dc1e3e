package server

import (
	"crypto/sha256"
	"log"
	"net"
	"time"

	"recmd/internal/command"
	"recmd/internal/config"
	"recmd/internal/replay"
	"recmd/internal/wire"
)

// worker runs the per-connection state machine described in spec.md
// section 4.5: ReadingRequest -> CheckingReplay -> Executing ->
// WritingResponse -> Closed, with Closed reachable directly from any
// state on error or on a rejected replay.
type worker struct {
	conn    net.Conn
	codec   *wire.Codec
	history *replay.History
	runner  *command.Runner
	cfg     *config.Config
	logger  *log.Logger
}

func newWorker(conn net.Conn, codec *wire.Codec, history *replay.History, runner *command.Runner, cfg *config.Config, logger *log.Logger) *worker {
	return &worker{conn: conn, codec: codec, history: history, runner: runner, cfg: cfg, logger: logger}
}

// run drives the worker through the full pipeline, closing the connection
// on every exit path.
func (w *worker) run() {
	defer w.conn.Close()

	hdr, ciphertext, ok := w.readRequest()
	if !ok {
		return
	}

	digest := sha256.Sum256(append(hdr.Bytes(), ciphertext...))
	if w.history.Contains(digest) {
		// Replay: close silently, no reply, no oracle for the attacker.
		return
	}

	payload, ok := w.decrypt(hdr, ciphertext)
	if !ok {
		return
	}
	w.history.Insert(digest)

	if hdr.Type != wire.DirectCmdRequest {
		return
	}

	output := w.execute(string(payload.Inner))
	w.writeResponse(payload.Timestamp, output)
}

// readRequest implements the ReadingRequest state: read exactly the
// header, then exactly payload_length ciphertext bytes. The raw bytes are
// retained (by reconstructing the header and concatenating the
// ciphertext) for the replay digest.
func (w *worker) readRequest() (wire.Header, []byte, bool) {
	if err := w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout)); err != nil {
		return wire.Header{}, nil, false
	}

	hdr, err := w.codec.ParseHeader(w.conn)
	if err != nil {
		return wire.Header{}, nil, false
	}

	ciphertext, err := wire.ReadCiphertext(w.conn, hdr.PayloadLength)
	if err != nil {
		return wire.Header{}, nil, false
	}

	return hdr, ciphertext, true
}

// decrypt implements the decrypt/parse half of CheckingReplay: on any
// codec or crypt failure the worker is torn down with no reply.
func (w *worker) decrypt(hdr wire.Header, ciphertext []byte) (wire.Payload, bool) {
	payload, err := w.codec.DecryptPayload(hdr, ciphertext, hdr.Type == wire.DirectCmdRequest)
	if err != nil {
		return wire.Payload{}, false
	}
	return payload, true
}

// execute implements the Executing state. A failure to split or spawn the
// command yields empty output rather than an error frame, so the client
// never stalls waiting for a reply that will never come.
func (w *worker) execute(line string) []byte {
	out, err := w.runner.Run(line)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("command execution failed: %v", err)
		}
		return nil
	}
	return out
}

// writeResponse implements WritingResponse: a DirectCmdResponse carrying
// the request's timestamp verbatim and the command's output as inner
// bytes, written in full subject to the write timeout.
func (w *worker) writeResponse(timestamp uint64, output []byte) {
	frame, err := w.codec.Encode(wire.DirectCmdResponse, timestamp, output)
	if err != nil {
		return
	}

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout)); err != nil {
		return
	}

	for len(frame) > 0 {
		n, err := w.conn.Write(frame)
		if err != nil {
			return
		}
		frame = frame[n:]
	}
}
