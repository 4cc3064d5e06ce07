package capypdf

// AnnotationKind tags Annotation's variant.
type AnnotationKind int

const (
	AnnotationText AnnotationKind = iota
	AnnotationLink
	AnnotationFileAttachment
	AnnotationScreen
	AnnotationPrintersMark
)

// ScreenTiming is the Screen-annotation /Timing dictionary. Acrobat is
// known to ignore it; it is emitted anyway for readers that honor it.
type ScreenTiming struct {
	Duration float64
	Repeat   int
}

// Annotation is the tagged union behind AddAnnotation. Rect must be set;
// AddAnnotation rejects a nil Rect.
type Annotation struct {
	Kind  AnnotationKind
	Rect  *PdfRectangle
	Flags int

	// Text
	Contents string
	Open     bool

	// Link
	URI  string
	Dest string

	// FileAttachment
	EmbeddedFile EmbeddedFileId

	// Screen
	FormXObj *FormXObjectId
	Timing   *ScreenTiming

	// PrintersMark
	PrintersMarkXObj *FormXObjectId
}

// AddAnnotation registers a and returns its id. Placement onto a page
// happens later via Document.AddPage's usedAnnotations list, which
// enforces that an annotation lands on at most one page.
func (d *Document) AddAnnotation(a Annotation) (AnnotationId, error) {
	if a.Rect == nil {
		return 0, newErr(ErrAnnotationMissingRect, "annotation requires a rect")
	}
	id := AnnotationId(len(d.annotations))
	obj := d.store.add(delayedAnnotation{})
	d.annotations = append(d.annotations, annotationEntry{id: id, ann: a, obj: obj})
	d.store.set(obj, delayedAnnotation{ID: id, Annotation: a})
	return id, nil
}

// renderAnnotationDict builds the per-subtype dictionary fragment;
// /Type /Annot, /Rect, and /P are added uniformly by the writer.
func (d *Document) renderAnnotationDict(a Annotation) []byte {
	f := newDictFormatter()
	switch a.Kind {
	case AnnotationText:
		f.AddTokenPair("/Subtype", name("Text"))
		f.AddTokenPair("/Contents", pdfTextString(a.Contents))
		f.AddTokenPair("/Open", boolToken(a.Open))
	case AnnotationLink:
		f.AddTokenPair("/Subtype", name("Link"))
		if a.URI != "" {
			action := newDictFormatter()
			action.AddTokenPair("/S", name("URI"))
			action.AddTokenPair("/URI", pdfAsciiString(a.URI))
			f.AddRawLine("/A", string(closedDict(action)))
		} else if a.Dest != "" {
			f.AddTokenPair("/Dest", pdfAsciiString(a.Dest))
		}
	case AnnotationFileAttachment:
		f.AddTokenPair("/Subtype", name("FileAttachment"))
		if int(a.EmbeddedFile) < len(d.embeddedFiles) {
			f.AddObjectRefPair("/FS", d.embeddedFiles[a.EmbeddedFile].fsObj)
		}
	case AnnotationScreen:
		f.AddTokenPair("/Subtype", name("Screen"))
		if a.FormXObj != nil && int(*a.FormXObj) < len(d.formXObjects) {
			ap := newDictFormatter()
			ap.AddObjectRefPair("/N", d.formXObjects[*a.FormXObj].obj)
			f.AddRawLine("/AP", string(closedDict(ap)))
		}
		if a.Timing != nil {
			timing := newDictFormatter()
			timing.AddTokenPair("/D", a.Timing.Duration)
			timing.AddTokenPair("/RC", a.Timing.Repeat)
			f.AddRawLine("/Timing", string(closedDict(timing)))
		}
	case AnnotationPrintersMark:
		f.AddTokenPair("/Subtype", name("PrinterMark"))
		if a.PrintersMarkXObj != nil && int(*a.PrintersMarkXObj) < len(d.formXObjects) {
			ap := newDictFormatter()
			ap.AddObjectRefPair("/N", d.formXObjects[*a.PrintersMarkXObj].obj)
			f.AddRawLine("/AP", string(closedDict(ap)))
		}
	}
	if a.Flags != 0 {
		f.AddTokenPair("/F", a.Flags)
	}
	return f.Bytes() // caller appends /Rect, /P, and closes the dict
}
