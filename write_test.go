package capypdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func wantCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", code)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("error code = %q, want %q", e.Code, code)
	}
}

func mediaBox(x1, y1, x2, y2 float64) PageProperties {
	r := PdfRectangle{X1: x1, Y1: y1, X2: x2, Y2: y2}
	return PageProperties{MediaBox: &r}
}

// newTestDoc builds an uncompressed-output document so tests can grep
// content streams as text.
func newTestDoc(t *testing.T, props DocumentProperties) *Document {
	t.Helper()
	t.Setenv("CAPY_DEBUG_PDF", "1")
	d, err := New(props)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func writeDoc(t *testing.T, d *Document) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := d.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestMinimalDocument(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})

	ctx := d.NewPageContext()
	ctx.Re(50, 50, 100, 100)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 200, 200), nil); err != nil {
		t.Fatal(err)
	}

	data := writeDoc(t, d)
	out := string(data)

	if !strings.HasPrefix(out, "%PDF-1.7\n%") {
		t.Errorf("bad header: %q", out[:20])
	}
	if !strings.HasSuffix(out, "%%EOF\n") {
		t.Errorf("missing %%%%EOF terminator")
	}
	if got := strings.Count(out, "/Type /Page\n"); got != 1 {
		t.Errorf("/Type /Page count = %d, want 1", got)
	}
	if got := strings.Count(out, "/Type /Pages\n"); got != 1 {
		t.Errorf("/Type /Pages count = %d, want 1", got)
	}
	if !strings.Contains(out, "/Count 1") {
		t.Errorf("page tree missing /Count 1")
	}
	if !strings.Contains(out, "50 50 100 100 re") {
		t.Errorf("content stream missing rectangle operator")
	}
	if !strings.Contains(out, "\nf\n") {
		t.Errorf("content stream missing fill operator")
	}
	if !strings.Contains(out, "/MediaBox [0 0 200 200 ]") {
		t.Errorf("page missing MediaBox")
	}
}

// TestXrefOffsets checks that every xref entry points at the exact file
// offset of its "N 0 obj" line and that startxref points at the xref
// table itself.
func TestXrefOffsets(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{Title: "xref test"})
	ctx := d.NewPageContext()
	ctx.Re(10, 10, 20, 20)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}
	data := writeDoc(t, d)

	xrefPos := bytes.LastIndex(data, []byte("\nxref\n")) + 1
	if xrefPos <= 0 {
		t.Fatal("no xref table")
	}

	var size int
	if _, err := fmt.Sscanf(string(data[xrefPos:]), "xref\n0 %d\n", &size); err != nil {
		t.Fatal(err)
	}

	// Entries start after the "xref\n0 N\n" header; each is 20 bytes.
	hdrEnd := bytes.IndexByte(data[xrefPos+5:], '\n') + xrefPos + 5 + 1
	entries := data[hdrEnd:]
	if string(entries[:20]) != "0000000000 65535 f \n" {
		t.Fatalf("slot 0 entry = %q", entries[:20])
	}
	for i := 1; i < size; i++ {
		entry := string(entries[i*20 : i*20+20])
		off, err := strconv.Atoi(entry[:10])
		if err != nil {
			t.Fatal(err)
		}
		want := strconv.Itoa(i) + " 0 obj\n"
		if !bytes.HasPrefix(data[off:], []byte(want)) {
			t.Errorf("xref entry %d points at %q, want %q", i, data[off:off+10], want)
		}
	}

	// startxref points back at the table.
	sxPos := bytes.LastIndex(data, []byte("startxref\n"))
	var sx int
	if _, err := fmt.Sscanf(string(data[sxPos:]), "startxref\n%d\n", &sx); err != nil {
		t.Fatal(err)
	}
	if sx != xrefPos {
		t.Errorf("startxref = %d, xref table at %d", sx, xrefPos)
	}

	if !bytes.Contains(data, []byte("/Size "+strconv.Itoa(size))) {
		t.Errorf("trailer /Size does not match xref entry count %d", size)
	}
}

// TestIndirectReferencesResolve checks that every "n 0 R" token in the
// output names an object the xref table covers.
func TestIndirectReferencesResolve(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 10, 10)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}
	data := writeDoc(t, d)

	var size int
	xrefPos := bytes.LastIndex(data, []byte("\nxref\n")) + 1
	if _, err := fmt.Sscanf(string(data[xrefPos:]), "xref\n0 %d\n", &size); err != nil {
		t.Fatal(err)
	}

	re := regexp.MustCompile(`(\d+) 0 R`)
	for _, m := range re.FindAllSubmatch(data, -1) {
		n, _ := strconv.Atoi(string(m[1]))
		if n < 1 || n >= size {
			t.Errorf("reference %d 0 R outside [1,%d)", n, size)
		}
	}
}

func TestWriteTwiceFails(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "twice.pdf")
	if err := d.Write(path); err != nil {
		t.Fatal(err)
	}
	wantCode(t, d.Write(path), ErrWritingTwice)
}

func TestWriteWithoutPagesFails(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	wantCode(t, d.Write(filepath.Join(t.TempDir(), "empty.pdf")), ErrNoPages)
}

func TestCompressedContentStream(t *testing.T) {
	// Without the debug env var, content streams are Flate-compressed.
	d, err := New(DocumentProperties{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := d.NewPageContext()
	ctx.Re(50, 50, 100, 100)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 200, 200), nil); err != nil {
		t.Fatal(err)
	}
	data := writeDoc(t, d)
	if bytes.Contains(data, []byte("50 50 100 100 re")) {
		t.Errorf("content stream left uncompressed")
	}
	if !bytes.Contains(data, []byte("/Filter /FlateDecode")) {
		t.Errorf("missing /FlateDecode filter")
	}
}

func TestPdf2HeaderForA4f(t *testing.T) {
	profile := make([]byte, 128)
	copy(profile[16:20], "RGB ")
	d := newTestDoc(t, DocumentProperties{
		Subtype:         SubtypePDFA4f,
		OutputIntentICC: profile,
		Title:           "archival",
	})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	data := writeDoc(t, d)
	out := string(data)
	if !strings.HasPrefix(out, "%PDF-2.0\n") {
		t.Errorf("PDF/A-4f should use the 2.0 header")
	}
	if strings.Contains(out, "/Info") {
		t.Errorf("PDF/A-4f trailer must not carry /Info")
	}
	if !strings.Contains(out, "/Metadata") || !strings.Contains(out, "xpacket") {
		t.Errorf("PDF/A-4f missing XMP metadata stream")
	}
	if !strings.Contains(out, "/GTS_PDFA1") {
		t.Errorf("missing PDF/A output intent key")
	}
}

func TestOutputIntentPDFX(t *testing.T) {
	profile := make([]byte, 128)
	copy(profile[16:20], "CMYK")
	d := newTestDoc(t, DocumentProperties{
		Subtype:         SubtypePDFX3,
		OutputIntentICC: profile,
		IntentCondition: "FOGRA39",
	})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/GTS_PDFX") {
		t.Errorf("missing PDF/X output intent key")
	}
	if !strings.Contains(out, "(FOGRA39)") {
		t.Errorf("missing output condition identifier")
	}
	if !strings.Contains(out, "/DestOutputProfile") {
		t.Errorf("missing destination output profile reference")
	}
}

