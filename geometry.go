package capypdf

// PdfRectangle is a lower-left-to-upper-right axis-aligned box, as used
// for MediaBox/CropBox/BleedBox/TrimBox/ArtBox and annotation rects.
type PdfRectangle struct {
	X1, Y1, X2, Y2 float64
}

// PdfMatrix is a 2D affine transform [a b c d e f], PDF's "cm" operand
// order.
type PdfMatrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix is the no-op affine transform.
var IdentityMatrix = PdfMatrix{A: 1, D: 1}
