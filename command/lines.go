package command

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// maxLine bounds a single command line; longer input is truncated.
const maxLine = 128

// lineBuffer splits a byte stream into lines on CR or LF.
type lineBuffer struct {
	buf []byte
}

func (b *lineBuffer) feed(p []byte, fn func(line string)) {
	for _, c := range p {
		if c == '\n' || c == '\r' {
			if len(b.buf) > 0 {
				fn(string(b.buf))
				b.buf = b.buf[:0]
			}
			continue
		}
		if len(b.buf) < maxLine {
			b.buf = append(b.buf, c)
		}
	}
}

// dispatch parses line and hands it to h. It returns the error to report
// to the sender, or nil for blank lines.
func dispatch(source, line string, h Handler) error {
	cmd, err := Parse(line)
	if errors.Is(err, ErrEmpty) {
		return nil
	}
	if err != nil {
		log.WithField("source", source).Warnf("Parse %q: %v", line, err)
		return err
	}
	cmd.Source = source
	return h(cmd)
}
