package capypdf

import (
	"bufio"
	"bytes"
	"strconv"
	"time"

	"github.com/tinywasm/capypdf/diag"
	"github.com/tinywasm/capypdf/fontManager"
	"github.com/tinywasm/capypdf/internal/objfmt"
	"github.com/tinywasm/capypdf/internal/writer"
)

// Write serializes the accumulated object graph to path: it finalizes the
// catalog, then makes one pass over the object store recording offsets and
// dispatching each cell to its final byte representation, then emits the
// xref table and trailer. The file is built at a sibling temp path and
// renamed into place only once every byte has been flushed and fsynced, so
// a crash mid-write never leaves a corrupt file at path. Write may be
// called at most once per Document (ErrWritingTwice).
func (d *Document) Write(path string) error {
	if d.writeAttempted {
		return newErr(ErrWritingTwice, "document already written")
	}
	d.writeAttempted = true

	if len(d.pages) == 0 {
		return newErr(ErrNoPages, "document has no pages")
	}

	if err := d.createCatalog(); err != nil {
		return err
	}

	f, tempPath, err := writer.CreateTemp(path)
	if err != nil {
		return newErr(ErrCouldNotOpenFile, err)
	}
	bw := bufio.NewWriter(f)
	cw := writer.NewCountingWriter(bw)

	if err := writer.WriteHeader(cw, d.props.Subtype.usesPdf2()); err != nil {
		f.Close()
		return newErr(ErrFileWriteError, err)
	}

	n := d.store.count()
	offsets := make([]int64, n-1)
	for num := 1; num < n; num++ {
		offsets[num-1] = cw.Offset()
		if err := d.writeObject(cw, num); err != nil {
			f.Close()
			return err
		}
	}

	xrefOffset := cw.Offset()
	diag.Printf("writing xref for %d objects at offset %d", n-1, xrefOffset)
	if err := writer.WriteXref(cw, offsets); err != nil {
		f.Close()
		return newErr(ErrFileWriteError, err)
	}

	infoObj := d.infoObj
	if d.props.Subtype == SubtypePDFA4f {
		infoObj = 0
	}
	id := objfmt.RandomID16()
	if err := writer.WriteTrailer(cw, n, d.catalogObj, infoObj, objfmt.HexID(id), xrefOffset); err != nil {
		f.Close()
		return newErr(ErrFileWriteError, err)
	}

	if err := writer.Finalize(bw, f, tempPath, path); err != nil {
		return newErr(ErrFileWriteError, err)
	}
	return nil
}

// writeObject dispatches object num's store cell to its final dictionary
// and (if any) stream bytes and writes it.
func (d *Document) writeObject(cw *writer.CountingWriter, num int) error {
	switch v := d.store.get(num).(type) {
	case fullObject:
		return writer.WriteObject(cw, num, v.Dictionary, v.Stream, v.HasStream)

	case deflateObject:
		stream := v.Stream
		f := bytes.NewBuffer(append([]byte{}, v.OpenDictionary...))
		if !v.LeaveUncompressedDebug {
			compressed, err := objfmt.FlateCompress(v.Stream)
			if err != nil {
				return newErr(ErrCompressionFailure, err)
			}
			stream = compressed
			f.WriteString("/Filter /FlateDecode\n")
		}
		f.WriteString("/Length " + strconv.Itoa(len(stream)) + "\n>>")
		return writer.WriteObject(cw, num, f.Bytes(), stream, true)

	case delayedSubsetFontData:
		return d.writeSubsetFontData(cw, num, v)

	case delayedSubsetFontDescriptor:
		return d.writeSubsetFontDescriptor(cw, num, v)

	case delayedSubsetCMap:
		return d.writeSubsetCMap(cw, num, v)

	case delayedSubsetFont:
		return d.writeSubsetFont(cw, num, v)

	case delayedCIDDictionary:
		return d.writeCIDDictionary(cw, num, v)

	case delayedPages:
		refs := make([]int, len(d.pages))
		for i, p := range d.pages {
			refs[i] = p.pageObj
		}
		f := newDictFormatter()
		f.AddTokenPair("/Type", name("Pages"))
		f.AddTokenPair("/Kids", formatRefArray(refs))
		f.AddTokenPair("/Count", len(d.pages))
		return writer.WriteObject(cw, num, closedDict(f), nil, false)

	case delayedPage:
		return d.writePage(cw, num, v)

	case delayedCheckboxWidget:
		return d.writeCheckboxWidget(cw, num, v)

	case delayedAnnotation:
		return d.writeAnnotation(cw, num, v)

	case delayedStructItem:
		return writer.WriteObject(cw, num, d.structItemDict(v.Sid), nil, false)

	default:
		return newErr(ErrUnreachable, "unknown object cell type in store")
	}
}

// subsetNamePrefix derives the six-uppercase-letter tag PDF readers expect
// on subset font names ("AAAAAA+Arial"), a deterministic base-26 encoding
// of the subset id so repeated writes of the same document are byte
// identical.
func subsetNamePrefix(subsetID int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var buf [6]byte
	n := subsetID
	for i := 5; i >= 0; i-- {
		buf[i] = letters[n%26]
		n /= 26
	}
	return string(buf[:]) + "+"
}

func (d *Document) writeSubsetFontData(cw *writer.CountingWriter, num int, v delayedSubsetFontData) error {
	entry := d.fonts[v.Fid]
	raw, err := entry.subsetter.AssembleSubsetFont(v.SubsetID)
	if err != nil {
		return newErr(ErrMalformedFontFile, err)
	}
	stream := raw
	f := newDictFormatter()
	f.AddTokenPair("/Subtype", name("OpenType"))
	if d.props.CompressStreams {
		compressed, err := objfmt.FlateCompress(raw)
		if err != nil {
			return newErr(ErrCompressionFailure, err)
		}
		stream = compressed
		f.AddRawLine("/Filter", "/FlateDecode")
	}
	f.AddTokenPair("/Length", len(stream))
	return writer.WriteObject(cw, num, closedDict(f), stream, true)
}

func (d *Document) writeSubsetFontDescriptor(cw *writer.CountingWriter, num int, v delayedSubsetFontDescriptor) error {
	ttf := &d.fonts[v.Fid].ttf
	baseName := subsetNamePrefix(v.SubsetID) + ttf.PostScriptName

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("FontDescriptor"))
	f.AddTokenPair("/FontName", name(baseName))
	f.AddTokenPair("/Flags", fontManager.FontFlagSymbolic)
	f.AddTokenPair("/FontBBox", formatFloatArray([]float64{
		float64(ttf.Xmin), float64(ttf.Ymin), float64(ttf.Xmax), float64(ttf.Ymax),
	}))
	f.AddTokenPair("/ItalicAngle", 0)
	f.AddTokenPair("/Ascent", 0)
	f.AddTokenPair("/Descent", 0)
	f.AddTokenPair("/CapHeight", float64(ttf.Ymax))
	f.AddTokenPair("/StemV", 80)
	f.AddTokenPair("/StemH", 80)
	f.AddObjectRefPair("/FontFile3", v.DataObj)
	return writer.WriteObject(cw, num, closedDict(f), nil, false)
}

func (d *Document) writeSubsetCMap(cw *writer.CountingWriter, num int, v delayedSubsetCMap) error {
	entry := d.fonts[v.Fid]
	cmapBytes := entry.subsetter.BuildToUnicodeCMap(v.SubsetID)
	stream := cmapBytes
	f := newDictFormatter()
	if d.props.CompressStreams {
		compressed, err := objfmt.FlateCompress(cmapBytes)
		if err != nil {
			return newErr(ErrCompressionFailure, err)
		}
		stream = compressed
		f.AddRawLine("/Filter", "/FlateDecode")
	}
	f.AddTokenPair("/Length", len(stream))
	return writer.WriteObject(cw, num, closedDict(f), stream, true)
}

func (d *Document) writeSubsetFont(cw *writer.CountingWriter, num int, v delayedSubsetFont) error {
	entry := d.fonts[v.Fid]
	baseName := subsetNamePrefix(0) + entry.ttf.PostScriptName

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Font"))
	f.AddTokenPair("/Subtype", name("Type0"))
	f.AddTokenPair("/Encoding", name("Identity-H"))
	f.AddTokenPair("/BaseFont", name(baseName))
	f.AddRawLine("/DescendantFonts", formatRefArray([]int{entry.cidObj}))
	f.AddObjectRefPair("/ToUnicode", v.CMapObj)
	return writer.WriteObject(cw, num, closedDict(f), nil, false)
}

func (d *Document) writeCIDDictionary(cw *writer.CountingWriter, num int, v delayedCIDDictionary) error {
	entry := d.fonts[v.Fid]
	widths := entry.subsetter.Widths(0)
	wArr := make([]int, len(widths))
	for i, w := range widths {
		wArr[i] = int(w)
	}

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Font"))
	f.AddTokenPair("/Subtype", name("CIDFontType2"))
	f.AddTokenPair("/BaseFont", name(subsetNamePrefix(0)+entry.ttf.PostScriptName))
	csi := newDictFormatter()
	csi.AddTokenPair("/Registry", pdfAsciiString("Adobe"))
	csi.AddTokenPair("/Ordering", pdfAsciiString("Identity"))
	csi.AddTokenPair("/Supplement", 0)
	f.AddRawLine("/CIDSystemInfo", string(closedDict(csi)))
	f.AddTokenPair("/CIDToGIDMap", name("Identity"))
	f.AddObjectRefPair("/FontDescriptor", v.DescriptorObj)
	f.AddRawLine("/W", "[0 "+formatIntArray(wArr)+"]")
	return writer.WriteObject(cw, num, closedDict(f), nil, false)
}

func rectSlice(r PdfRectangle) []float64 { return []float64{r.X1, r.Y1, r.X2, r.Y2} }

func (d *Document) writePage(cw *writer.CountingWriter, num int, v delayedPage) error {
	pe := d.pages[v.PageNum]
	props := v.CustomProps

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Page"))
	f.AddObjectRefPair("/Parent", d.pagesRootObj)
	if props.MediaBox != nil {
		f.AddTokenPair("/MediaBox", formatFloatArray(rectSlice(*props.MediaBox)))
	}
	if props.CropBox != nil {
		f.AddTokenPair("/CropBox", formatFloatArray(rectSlice(*props.CropBox)))
	}
	if props.BleedBox != nil {
		f.AddTokenPair("/BleedBox", formatFloatArray(rectSlice(*props.BleedBox)))
	}
	if props.TrimBox != nil {
		f.AddTokenPair("/TrimBox", formatFloatArray(rectSlice(*props.TrimBox)))
	}
	if props.ArtBox != nil {
		f.AddTokenPair("/ArtBox", formatFloatArray(rectSlice(*props.ArtBox)))
	}
	if props.UserUnit != nil {
		f.AddTokenPair("/UserUnit", *props.UserUnit)
	}
	if props.GroupObj != nil {
		f.AddObjectRefPair("/Group", *props.GroupObj)
	}
	f.AddObjectRefPair("/Contents", pe.commandsObj)
	f.AddObjectRefPair("/Resources", pe.resourceObj)

	var annotRefs []int
	for _, aid := range v.UsedAnnotations {
		annotRefs = append(annotRefs, d.annotations[aid].obj)
	}
	for _, wid := range v.UsedFormWidgets {
		annotRefs = append(annotRefs, d.formWidgets[wid].obj)
	}
	if len(annotRefs) > 0 {
		f.AddTokenPair("/Annots", formatRefArray(annotRefs))
	}

	if v.StructParents != nil {
		f.AddTokenPair("/StructParents", *v.StructParents)
	}

	if v.Transition != nil {
		tr := newDictFormatter()
		tr.AddTokenPair("/S", name(v.Transition.Style))
		tr.AddTokenPair("/D", v.Transition.Duration)
		f.AddRawLine("/Trans", string(closedDict(tr)))
	}
	if v.SubnavRoot != nil {
		f.AddObjectRefPair("/PresSteps", *v.SubnavRoot)
	}

	f.AddRawLine("/LastModified", objfmt.CurrentDateString(time.Now()))
	return writer.WriteObject(cw, num, closedDict(f), nil, false)
}

func (d *Document) writeCheckboxWidget(cw *writer.CountingWriter, num int, v delayedCheckboxWidget) error {
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Annot"))
	f.AddTokenPair("/Subtype", name("Widget"))
	f.AddTokenPair("/FT", name("Btn"))
	f.AddTokenPair("/Rect", formatFloatArray(rectSlice(v.Rect)))
	f.AddTokenPair("/T", pdfTextString(v.PartialName))
	nDict := newDictFormatter()
	nDict.AddObjectRefPair("/Yes", d.formXObjects[v.OnXobj].obj)
	nDict.AddObjectRefPair("/Off", d.formXObjects[v.OffXobj].obj)
	ap := newDictFormatter()
	ap.AddRawLine("/N", string(closedDict(nDict)))
	f.AddRawLine("/AP", string(closedDict(ap)))
	f.AddTokenPair("/AS", name("Off"))
	return writer.WriteObject(cw, num, closedDict(f), nil, false)
}

func (d *Document) writeAnnotation(cw *writer.CountingWriter, num int, v delayedAnnotation) error {
	var buf bytes.Buffer
	buf.Write(d.renderAnnotationDict(v.Annotation))
	buf.WriteString("/Type /Annot\n")
	buf.WriteString("/Rect " + formatFloatArray(rectSlice(*v.Annotation.Rect)) + "\n")
	if pageIdx, used := d.annotationUsedOnPage[v.ID]; used {
		buf.WriteString("/P " + itoaHelper(d.pages[pageIdx].pageObj) + " 0 R\n")
	}
	buf.WriteString(">>")
	return writer.WriteObject(cw, num, buf.Bytes(), nil, false)
}

// structItemDict resolves sid's parent, direct children, and (for leaf
// items) owning page + MCID by scanning structureItems/structParentTree
// fresh on each call. Quadratic across the whole document, but structure
// trees are small relative to content streams.
func (d *Document) structItemDict(sid StructureItemId) []byte {
	e := d.structureItems[sid]

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("StructElem"))
	f.AddTokenPair("/S", name(d.structureTagName(sid)))
	if e.parent != nil {
		f.AddObjectRefPair("/P", d.structureItems[*e.parent].obj)
	} else {
		f.AddObjectRefPair("/P", d.structTreeRootObj)
	}

	var children []int
	for i, c := range d.structureItems {
		if c.parent != nil && *c.parent == sid {
			children = append(children, d.structureItems[i].obj)
		}
	}
	if len(children) > 0 {
		f.AddTokenPair("/K", formatRefArray(children))
	} else {
	findLeaf:
		for pageIdx, sids := range d.structParentTree {
			for mcid, s := range sids {
				if s == sid {
					mcr := newDictFormatter()
					mcr.AddTokenPair("/Type", name("MCR"))
					mcr.AddObjectRefPair("/Pg", d.pages[pageIdx].pageObj)
					mcr.AddTokenPair("/MCID", mcid)
					f.AddRawLine("/K", string(closedDict(mcr)))
					break findLeaf
				}
			}
		}
	}

	if e.extra.Title != "" {
		f.AddTokenPair("/T", pdfTextString(e.extra.Title))
	}
	if e.extra.Lang != "" {
		f.AddTokenPair("/Lang", pdfAsciiString(e.extra.Lang))
	}
	if e.extra.Alt != "" {
		f.AddTokenPair("/Alt", pdfTextString(e.extra.Alt))
	}
	if e.extra.ActualText != "" {
		f.AddTokenPair("/ActualText", pdfTextString(e.extra.ActualText))
	}

	return closedDict(f)
}
