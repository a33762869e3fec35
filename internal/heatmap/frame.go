// Package heatmap decodes the binary heatmap archive written by the
// tar1090 toolchain into per-aircraft position records.
//
// The format is a flat little-endian stream of 32-bit words. A frame
// starts at a marker word (0x0E7F7F7D), carries a split 64-bit
// millisecond timestamp in the next two words, a reserved word, and
// then 16-byte records until the next marker or end of file. Records
// are either positions or identity updates; identity updates carry the
// call sign and squawk that later positions for the same aircraft are
// tagged with.
package heatmap

import "encoding/binary"

// FrameMarker is the word that opens every frame. It doubles as the
// only framing signal in the file: there is no length field, no magic,
// no version byte.
const FrameMarker int32 = 0x0E7F7F7D // 243235997

// words wraps a raw file buffer and provides the three views the
// record layout needs: signed words, unsigned words, and bytes. All
// three read the same underlying memory.
type words struct {
	buf []byte
}

func (w words) len() int { return len(w.buf) / 4 }

// i32 returns word i as a signed 32-bit value.
func (w words) i32(i int) int32 {
	return int32(binary.LittleEndian.Uint32(w.buf[4*i:]))
}

// u32 returns word i as an unsigned 32-bit value.
func (w words) u32(i int) uint32 {
	return binary.LittleEndian.Uint32(w.buf[4*i:])
}

// text8 returns the 8 bytes starting at word i. Used for the inline
// call sign, which spans two words and is not null-terminated.
func (w words) text8(i int) []byte {
	return w.buf[4*i : 4*i+8]
}

// Frame is one marker-delimited span of the file.
type Frame struct {
	Start int     // word index of the marker
	End   int     // word index one past the frame (next marker or EOF)
	T     float64 // Unix time in seconds for every record in the frame
}

// Records reports how many whole 16-byte records the frame holds.
func (f Frame) Records() int {
	n := f.End - f.Start - frameHeaderWords
	if n < 0 {
		return 0
	}
	return n / recordWords
}

const (
	frameHeaderWords = 4
	recordWords      = 4
)

// splitEpoch recomposes the frame timestamp from its two unsigned
// halves. The constant is 2^32/1000: the encoder stores a 64-bit
// millisecond count split across two 32-bit words, and downstream
// consumers expect the double-precision result of this exact formula.
func splitEpoch(hi, lo uint32) float64 {
	return float64(lo)/1e3 + 4294967.296*float64(hi)
}

// scanFrames walks the buffer word by word in record-sized steps and
// returns every frame it finds, in file order. Markers are detected,
// not validated: an interior word that happens to equal the marker
// splits a frame. An empty result means the file carries no frames.
func scanFrames(w words) []Frame {
	var starts []int
	for i := 0; i+recordWords <= w.len(); i += recordWords {
		if w.i32(i) == FrameMarker {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	frames := make([]Frame, 0, len(starts))
	for n, start := range starts {
		end := w.len()
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		frames = append(frames, Frame{
			Start: start,
			End:   end,
			T:     splitEpoch(w.u32(start+1), w.u32(start+2)),
		})
	}
	return frames
}
