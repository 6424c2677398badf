package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptYesNoIO asks message on out and reads one answer from in. Only y and
// yes confirm.
func promptYesNoIO(in io.Reader, out io.Writer, message string) bool {
	if out != nil {
		fmt.Fprint(out, message)
	}
	answer, err := newLineReader(in).ReadLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// lineReader reads terminal input one byte at a time so nothing past the
// current line is consumed. LF, CR and CRLF all end a line, which keeps
// Enter working in raw terminal mode.
type lineReader struct {
	in      io.Reader
	afterCR bool
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{in: in}
}

// ReadLine returns the next line without its terminator. A final line
// without a terminator is returned before io.EOF.
func (r *lineReader) ReadLine() (string, error) {
	if r.in == nil {
		return "", io.EOF
	}

	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := r.in.Read(b[:])
		if n > 0 {
			c := b[0]
			skip := r.afterCR && c == '\n' && len(line) == 0
			r.afterCR = c == '\r'
			switch {
			case skip:
			case c == '\n' || c == '\r':
				return string(line), nil
			default:
				line = append(line, c)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return string(line), nil
			}
			return string(line), err
		}
	}
}
