package logging

import "io"

// NewMultiWriter duplicates writes to every supplied writer.
func NewMultiWriter(writers ...io.Writer) io.Writer {
	return io.MultiWriter(writers...)
}
