package heatmap

import (
	"os"

	"github.com/charmbracelet/log"
)

// Pipeline decodes heatmap files into position records. One Pipeline
// may process many files; decode state (aircraft identities and the
// down-sample gate) is created per file and never leaks between files.
type Pipeline struct {
	log *log.Logger
}

func NewPipeline(logger *log.Logger) *Pipeline {
	return &Pipeline{log: logger}
}

// ProcessFile decodes one heatmap file end to end and returns the
// records that survive coordinate validation and the down-sample gate,
// in file order. Failures are contained to the file: a file that
// cannot be read, has a malformed length, or panics the decoder yields
// no records and never aborts the caller's batch.
func (p *Pipeline) ProcessFile(path string) (records []Record) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic while decoding file", "file", path, "panic", r)
			records = nil
		}
	}()

	buf, err := os.ReadFile(path)
	if err != nil {
		p.log.Error("read file", "file", path, "err", err)
		return nil
	}
	if len(buf) == 0 {
		p.log.Warn("empty file", "file", path)
		return nil
	}
	if len(buf)%4 != 0 {
		p.log.Error("file length is not a multiple of 4, skipping", "file", path, "len", len(buf))
		return nil
	}

	w := words{buf: buf}
	frames := scanFrames(w)
	if len(frames) == 0 {
		p.log.Warn("no frame markers found", "file", path)
		return nil
	}

	state := newAircraftState()
	gate := newDownsampler()

	for _, frame := range frames {
		if (frame.End-frame.Start-frameHeaderWords)%recordWords != 0 {
			p.log.Error("frame record region is not record-aligned, skipping file",
				"file", path, "frame_start", frame.Start)
			return nil
		}
		for i := frame.Start + frameHeaderWords; i+recordWords <= frame.End; i += recordWords {
			if isIdentity(w, i) {
				decodeIdentity(w, i, state)
				continue
			}
			rec, ok := decodePosition(w, i, state)
			if !ok {
				continue
			}
			if !gate.admit(rec.Hex, frame.T) {
				continue
			}
			rec.T = frame.T
			records = append(records, rec)
		}
	}

	p.log.Info("parsed heatmap file", "file", path, "records", len(records))
	return records
}
