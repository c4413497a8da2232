package telegram

import "strings"

// Framer accumulates stripped P1 lines into a telegram until the checksum
// trailer line arrives. Not safe for concurrent use; each reader loop owns
// its own Framer.
type Framer struct {
	buf strings.Builder
}

func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends one line to the in-progress telegram. A line starting with
// the trailer marker completes the frame: it is appended without a line
// terminator, the full telegram is returned with complete=true and the
// framer resets for the next frame. Empty lines are ignored and never
// complete a frame.
func (f *Framer) Feed(line string) (telegram string, complete bool) {
	if line == "" {
		return "", false
	}
	if strings.HasPrefix(line, "!") {
		f.buf.WriteString(line)
		telegram = f.buf.String()
		f.buf.Reset()
		return telegram, true
	}
	f.buf.WriteString(line)
	f.buf.WriteString("\r\n")
	return "", false
}

// Reset abandons the in-progress telegram. Used when the meter goes quiet
// mid-frame or the process is shutting down.
func (f *Framer) Reset() {
	f.buf.Reset()
}
