// Package replay records per-tick state snapshots to a compressed stream for
// offline analysis tooling.
package replay

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/pitchsim/pitchsim/pkg/mirror"
	"github.com/pitchsim/pitchsim/pkg/sim"
)

// Frame is one recorded tick: the tick count plus the mirror-encoded
// snapshot payload.
type Frame struct {
	TickCount uint64 `cbor:"t"`
	Payload   []byte `cbor:"p"`
}

// Recorder writes frames as a zstd-compressed stream of cbor values.
type Recorder struct {
	zw  *zstd.Encoder
	enc *cbor.Encoder
}

func NewRecorder(out io.Writer) (*Recorder, error) {
	zw, err := zstd.NewWriter(out)
	if err != nil {
		return nil, fmt.Errorf("opening zstd stream: %w", err)
	}
	return &Recorder{
		zw:  zw,
		enc: cbor.NewEncoder(zw),
	}, nil
}

// WriteFrame appends one arena snapshot.
func (r *Recorder) WriteFrame(a *sim.Arena) error {
	gs := mirror.FromArena(a)
	return r.enc.Encode(Frame{
		TickCount: gs.TickCount,
		Payload:   gs.ToBytes(),
	})
}

// Close flushes the compressed stream. The underlying writer stays open.
func (r *Recorder) Close() error {
	return r.zw.Close()
}

// Reader iterates the frames of a recording.
type Reader struct {
	zr  *zstd.Decoder
	dec *cbor.Decoder
}

func NewReader(in io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("opening zstd stream: %w", err)
	}
	return &Reader{
		zr:  zr,
		dec: cbor.NewDecoder(zr),
	}, nil
}

// NextFrame returns the next frame, decoded back into the wire structure.
// io.EOF signals a clean end of stream.
func (r *Reader) NextFrame() (Frame, mirror.GameState, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, mirror.GameState{}, io.EOF
		}
		return Frame{}, mirror.GameState{}, fmt.Errorf("decoding frame: %w", err)
	}
	gs, err := mirror.FromBytes(f.Payload)
	if err != nil {
		return f, mirror.GameState{}, err
	}
	return f, gs, nil
}

func (r *Reader) Close() {
	r.zr.Close()
}
