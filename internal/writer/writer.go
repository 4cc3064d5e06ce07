// Package writer holds the low-level, document-independent primitives the
// final write pass needs: a byte-offset-tracking writer, the PDF header,
// one indirect object's framing, the xref table, the trailer, and the
// temp-file-then-rename output sequence.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CountingWriter wraps an io.Writer and tracks the cumulative byte offset
// written through it, so callers can record each object's file offset for
// the xref table.
type CountingWriter struct {
	w      io.Writer
	offset int64
}

func NewCountingWriter(w io.Writer) *CountingWriter { return &CountingWriter{w: w} }

func (c *CountingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.offset += int64(n)
	return n, err
}

// Offset reports the number of bytes written so far.
func (c *CountingWriter) Offset() int64 { return c.offset }

// WriteHeader emits the PDF version line and the binary marker comment
// (four bytes >= 0x80 so transfer tools treat the file as binary).
func WriteHeader(w io.Writer, pdf2 bool) error {
	version := "%PDF-1.7\n"
	if pdf2 {
		version = "%PDF-2.0\n"
	}
	_, err := io.WriteString(w, version+"%\xe5\xf6\xc4\xd6\n")
	return err
}

// WriteObject writes one complete indirect object: "N 0 obj\n" + dict +
// (optionally a stream) + "endobj\n\n".
func WriteObject(w io.Writer, num int, dict []byte, stream []byte, hasStream bool) error {
	if _, err := io.WriteString(w, strconv.Itoa(num)+" 0 obj\n"); err != nil {
		return err
	}
	if _, err := w.Write(dict); err != nil {
		return err
	}
	if hasStream {
		if _, err := io.WriteString(w, "\nstream\n"); err != nil {
			return err
		}
		if _, err := w.Write(stream); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\nendstream\n"); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	_, err := io.WriteString(w, "endobj\n\n")
	return err
}

// WriteXref emits the cross-reference table. offsets[i] is the file
// offset of object i+1's "N 0 obj" line; slot 0 is always the free-list
// sentinel.
func WriteXref(w io.Writer, offsets []int64) error {
	if _, err := fmt.Fprintf(w, "xref\n0 %d\n", len(offsets)+1); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "0000000000 65535 f \n"); err != nil {
		return err
	}
	for _, off := range offsets {
		if _, err := io.WriteString(w, formatXrefLine(off)+" 00000 n \n"); err != nil {
			return err
		}
	}
	return nil
}

func formatXrefLine(n int64) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}

// WriteTrailer emits the trailer dictionary, startxref, and %%EOF. infoObj
// of 0 omits /Info, for profiles that carry document metadata as XMP
// instead.
func WriteTrailer(w io.Writer, size, rootObj, infoObj int, idHex string, xrefOffset int64) error {
	if _, err := fmt.Fprintf(w, "trailer\n<<\n/Size %d\n/Root %d 0 R\n", size, rootObj); err != nil {
		return err
	}
	if infoObj != 0 {
		if _, err := fmt.Fprintf(w, "/Info %d 0 R\n", infoObj); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "/ID [%s %s]\n>>\n", idHex, idHex); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return err
}

// CreateTemp opens path's "~"-suffixed sibling temp file for writing,
// truncating any earlier aborted attempt.
func CreateTemp(path string) (f *os.File, tempPath string, err error) {
	tempPath = path + "~"
	f, err = os.Create(tempPath)
	if err != nil {
		return nil, "", err
	}
	return f, tempPath, nil
}

// Finalize flushes bw, fsyncs and closes f, then renames tempPath to path.
// The output only becomes visible at path once every step succeeds.
func Finalize(bw *bufio.Writer, f *os.File, tempPath, path string) error {
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
