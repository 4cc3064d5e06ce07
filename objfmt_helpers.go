package capypdf

import "github.com/tinywasm/capypdf/internal/objfmt"

// loadFileAsBytes wraps internal/objfmt.LoadFileAsBytes for the root
// package's font/image loading entry points.
func loadFileAsBytes(path string) ([]byte, error) {
	return objfmt.LoadFileAsBytes(path)
}

// formatFloatArray renders a flat "[ v0 v1 ... ]" token suitable for
// passing as an AddTokenPair value.
func formatFloatArray(vals []float64) string {
	f := objfmt.New()
	f.BeginArray(0)
	for _, v := range vals {
		f.AddToken(v)
	}
	f.EndArray()
	return string(f.Steal())
}

// formatIntArray renders a flat "[ v0 v1 ... ]" token of plain integers.
func formatIntArray(vals []int) string {
	f := objfmt.New()
	f.BeginArray(0)
	for _, v := range vals {
		f.AddToken(v)
	}
	f.EndArray()
	return string(f.Steal())
}

// formatRefArray renders "[ n0 0 R n1 0 R ... ]".
func formatRefArray(objNums []int) string {
	f := objfmt.New()
	f.BeginArray(0)
	for _, n := range objNums {
		f.AddObjectRef(n)
	}
	f.EndArray()
	return string(f.Steal())
}

// objfmtArr returns an empty Formatter with no open context, for callers
// that build a bare top-level array object (e.g. a colorspace array).
func objfmtArr() *objfmt.Formatter { return objfmt.New() }

// newDictFormatter returns a Formatter with an open "<<" dict context,
// the shape every object builder in this file starts from.
func newDictFormatter() *objfmt.Formatter {
	f := objfmt.New()
	f.BeginDict()
	return f
}

// closedDict finishes f's dict context and steals the bytes, for callers
// building a fullObject (as opposed to a deflateObject, which stays open).
func closedDict(f *objfmt.Formatter) []byte {
	f.EndDict()
	return f.Steal()
}

// pdfTextString renders s as a PDF text string, UTF-16BE with a BOM, for
// dictionary values that must survive non-ASCII text (/Contents, /T, ...).
func pdfTextString(s string) string { return objfmt.Utf8ToPdfUtf16BE(s) }

// pdfAsciiString renders s as a literal "(...)" PDF string, for values
// that are conventionally ASCII (URIs, destination names).
func pdfAsciiString(s string) string { return objfmt.PdfStringQuote([]byte(s)) }

// name renders a bare identifier as a PDF /Name token string, suitable
// for passing as an AddTokenPair value (e.g. name("DeviceRGB") ->
// "/DeviceRGB").
func name(n string) string { return "/" + n }
