package capypdf

import (
	"encoding/hex"

	"github.com/tinywasm/capypdf/internal/objfmt"
)

// Text is a recorded text object. Unlike the immediate-mode operators on
// DrawContext, events accumulate in order and nothing is written to the
// content stream until RenderText runs, at which point the font subsetter
// can be queried for every glyph and the subset-specific Tf re-emitted
// wherever the active subset changes. This is the only place the command
// stream is not an append-as-you-go byte buffer.
type Text struct {
	ctx    *DrawContext
	events []textEvent
}

type textEventKind int

const (
	evTf textEventKind = iota
	evTd
	evTD
	evTm
	evTStar
	evTL
	evTc
	evTr
	evTs
	evTz
	evTj
	evTJ
	evStrokeColor
	evNonstrokeColor
	evLineWidth
	evGState
	evStructItem
	evEmc
)

type textEvent struct {
	kind textEventKind

	fid  FontId
	size float64

	x, y float64
	m    PdfMatrix
	v    float64
	mode int

	text  string
	items []TJItem

	color Color
	gsid  GraphicsStateId
	sid   StructureItemId
}

// TJItemKind tags one element of a TJ array.
type TJItemKind int

const (
	// TJRun is a string of codepoints shown as one glyph run.
	TJRun TJItemKind = iota
	// TJKern is a kerning adjustment in thousandths of an em, subtracted
	// from the current position.
	TJKern
	// TJGlyph shows a raw glyph index carrying a unicode codepoint for
	// text extraction.
	TJGlyph
	// TJGlyphText shows a raw glyph index (a ligature) carrying the
	// multi-codepoint source text it replaces.
	TJGlyphText
	// TJActualTextStart opens a /Span marked-content sequence whose
	// /ActualText replaces everything shown until TJActualTextEnd.
	TJActualTextStart
	// TJActualTextEnd closes the span TJActualTextStart opened.
	TJActualTextEnd
)

// TJItem is one element of the mixed array ShowTJ renders: glyph runs,
// kerning adjustments, raw glyphs, ligatures, and actual-text span
// markers.
type TJItem struct {
	Kind       TJItemKind
	Run        string
	Kern       float64
	GlyphIndex uint16
	Codepoint  rune
	SourceText string
}

// NewText starts recording a text object against ctx.
func (ctx *DrawContext) NewText() *Text {
	return &Text{ctx: ctx}
}

// Tf selects the font and size for subsequent show operators. Every glyph
// event before the first Tf fails the render with ErrFontNotSpecified.
func (t *Text) Tf(fid FontId, size float64) {
	t.events = append(t.events, textEvent{kind: evTf, fid: fid, size: size})
}

func (t *Text) Td(tx, ty float64) {
	t.events = append(t.events, textEvent{kind: evTd, x: tx, y: ty})
}

func (t *Text) TD(tx, ty float64) {
	t.events = append(t.events, textEvent{kind: evTD, x: tx, y: ty})
}

func (t *Text) Tm(m PdfMatrix) {
	t.events = append(t.events, textEvent{kind: evTm, m: m})
}

func (t *Text) TStar() {
	t.events = append(t.events, textEvent{kind: evTStar})
}

func (t *Text) TL(leading float64) {
	t.events = append(t.events, textEvent{kind: evTL, v: leading})
}

func (t *Text) Tc(charSpace float64) {
	t.events = append(t.events, textEvent{kind: evTc, v: charSpace})
}

func (t *Text) Tr(mode int) {
	t.events = append(t.events, textEvent{kind: evTr, mode: mode})
}

func (t *Text) Ts(rise float64) {
	t.events = append(t.events, textEvent{kind: evTs, v: rise})
}

func (t *Text) Tz(scalePercent float64) {
	t.events = append(t.events, textEvent{kind: evTz, v: scalePercent})
}

// Show records a Tj glyph run.
func (t *Text) Show(text string) {
	t.events = append(t.events, textEvent{kind: evTj, text: text})
}

// ShowTJ records a TJ array of mixed glyph runs, kerns, raw glyphs, and
// actual-text spans.
func (t *Text) ShowTJ(items []TJItem) {
	t.events = append(t.events, textEvent{kind: evTJ, items: items})
}

// SetStrokeColor records a stroking-color change inside the text object.
func (t *Text) SetStrokeColor(c Color) {
	t.events = append(t.events, textEvent{kind: evStrokeColor, color: c})
}

// SetNonstrokeColor records a fill-color change inside the text object.
func (t *Text) SetNonstrokeColor(c Color) {
	t.events = append(t.events, textEvent{kind: evNonstrokeColor, color: c})
}

// SetLineWidth records a "w" change inside the text object.
func (t *Text) SetLineWidth(w float64) {
	t.events = append(t.events, textEvent{kind: evLineWidth, v: w})
}

// SetGState records a "gs" change inside the text object.
func (t *Text) SetGState(gsid GraphicsStateId) {
	t.events = append(t.events, textEvent{kind: evGState, gsid: gsid})
}

// BeginStructureItem opens a marked-content sequence tagged with sid; it
// must be balanced by EndMarkedContent before the render finishes.
func (t *Text) BeginStructureItem(sid StructureItemId) {
	t.events = append(t.events, textEvent{kind: evStructItem, sid: sid})
}

// EndMarkedContent closes the innermost structure item opened inside this
// text object.
func (t *Text) EndMarkedContent() {
	t.events = append(t.events, textEvent{kind: evEmc})
}

// RenderText serializes t into ctx's command stream as one BT..ET block,
// resolving every codepoint through the font subsetter and re-emitting a
// subset-specific Tf whenever the active (font, subset) changes. On any
// error the stream is left exactly as it was before the call.
func (ctx *DrawContext) RenderText(t *Text) error {
	if t.ctx != ctx {
		return newErr(ErrWrongDrawContext, "text object was built against a different draw context")
	}
	if ctx.top() != stateBase {
		return newErr(ErrInvalidDrawContextType, "text object rendered inside an open nesting")
	}

	startIndent := ctx.indent
	r := &textRenderer{ctx: ctx, mark: ctx.content.Len(), structMark: len(ctx.usedStructs)}
	if err := r.render(t); err != nil {
		ctx.content.Truncate(r.mark)
		ctx.usedStructs = ctx.usedStructs[:r.structMark]
		ctx.indent = startIndent
		return err
	}
	return nil
}

// textRenderer carries the per-render state: the active font/size, the
// subset the last emitted Tf selected, and the marked-content depth that
// must return to zero before ET.
type textRenderer struct {
	ctx        *DrawContext
	mark       int
	structMark int

	fontSet      bool
	fid          FontId
	size         float64
	activeSubset int
	subsetKnown  bool
	mcDepth      int
}

func (r *textRenderer) render(t *Text) error {
	ctx := r.ctx
	ctx.op("BT")
	ctx.indent++

	for _, ev := range t.events {
		if err := r.event(ev); err != nil {
			return err
		}
	}

	if r.mcDepth != 0 {
		return newErr(ErrUnclosedMarkedContent, "text object has an unclosed structure item")
	}
	ctx.indent--
	ctx.op("ET")
	return nil
}

func (r *textRenderer) event(ev textEvent) error {
	ctx := r.ctx
	switch ev.kind {
	case evTf:
		if int(ev.fid) >= len(ctx.doc.fonts) {
			return newErr(ErrIndexOutOfBounds, "font id out of range")
		}
		r.fontSet = true
		r.fid = ev.fid
		r.size = ev.size
		r.subsetKnown = false
	case evTd:
		ctx.op("%s %s Td", num(ev.x), num(ev.y))
	case evTD:
		ctx.op("%s %s TD", num(ev.x), num(ev.y))
	case evTm:
		m := ev.m
		ctx.op("%s %s %s %s %s %s Tm", num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
	case evTStar:
		ctx.op("T*")
	case evTL:
		ctx.op("%s TL", num(ev.v))
	case evTc:
		ctx.op("%s Tc", num(ev.v))
	case evTr:
		if ev.mode < 0 || ev.mode > 7 {
			return newErr(ErrBadEnum, "text rendering mode must be in [0,7]")
		}
		ctx.op("%d Tr", ev.mode)
	case evTs:
		ctx.op("%s Ts", num(ev.v))
	case evTz:
		ctx.op("%s Tz", num(ev.v))
	case evTj:
		codes, err := r.mapRun(ev.text)
		if err != nil {
			return err
		}
		ctx.op("<%s> Tj", hex.EncodeToString(codes))
	case evTJ:
		if err := r.renderTJ(ev.items); err != nil {
			return err
		}
	case evStrokeColor:
		if err := ctx.setColor(ev.color, true); err != nil {
			return err
		}
	case evNonstrokeColor:
		if err := ctx.setColor(ev.color, false); err != nil {
			return err
		}
	case evLineWidth:
		if ev.v < 0 {
			return newErr(ErrNegativeLineWidth, "line width must be non-negative")
		}
		ctx.op("%s w", num(ev.v))
	case evGState:
		if err := ctx.GS(ev.gsid); err != nil {
			return err
		}
	case evStructItem:
		if int(ev.sid) >= len(ctx.doc.structureItems) {
			return newErr(ErrIndexOutOfBounds, "structure item id out of range")
		}
		for _, used := range ctx.usedStructs {
			if used == ev.sid {
				return newErr(ErrStructureReuse, "structure item already given an MCID in this context")
			}
		}
		mcid := len(ctx.usedStructs)
		ctx.usedStructs = append(ctx.usedStructs, ev.sid)
		ctx.op("/%s <</MCID %d>> BDC", ctx.doc.structureTagName(ev.sid), mcid)
		ctx.indent++
		r.mcDepth++
	case evEmc:
		if r.mcDepth == 0 {
			return newErr(ErrEmcOnEmpty, "EMC with no open marked content in text object")
		}
		r.mcDepth--
		ctx.indent--
		ctx.op("EMC")
	default:
		return newErr(ErrUnreachable, "unknown text event")
	}
	return nil
}

// requireSubset re-emits the subset-font Tf if subset differs from the
// last one selected (or none was selected yet), recording the (font,
// subset) pair for the resource dictionary.
func (r *textRenderer) requireSubset(subset int) error {
	if !r.fontSet {
		return newErr(ErrFontNotSpecified, "glyphs shown before Tf selected a font")
	}
	if r.subsetKnown && r.activeSubset == subset {
		return nil
	}
	r.activeSubset = subset
	r.subsetKnown = true
	fontObj := r.ctx.doc.fonts[r.fid].fontObj
	r.ctx.usedSubsetFonts[subsetFontKey{fid: r.fid, subset: subset}] = true
	r.ctx.op("%s %s Tf", subsetFontResourceName(fontObj, subset), num(r.size))
	return nil
}

// mapRun maps every rune of text to its subset slot, emitting the Tf for
// the run's subset first, and returns the 2-byte CID codes.
func (r *textRenderer) mapRun(text string) ([]byte, error) {
	if !r.fontSet {
		return nil, newErr(ErrFontNotSpecified, "glyphs shown before Tf selected a font")
	}
	entry := r.ctx.doc.fonts[r.fid]
	codes := make([]byte, 0, len(text)*2)
	for _, cp := range text {
		subset, slot, err := entry.subsetter.AddCodepoint(cp)
		if err != nil {
			return nil, newErr(ErrMissingGlyph, err)
		}
		if err := r.requireSubset(subset); err != nil {
			return nil, err
		}
		codes = append(codes, 0, byte(slot))
	}
	return codes, nil
}

func (r *textRenderer) renderTJ(items []TJItem) error {
	ctx := r.ctx
	arrOpen := false
	var line []byte

	flushLine := func(closeArr bool) {
		if arrOpen && closeArr {
			line = append(line, []byte("] TJ")...)
			arrOpen = false
		}
		if len(line) > 0 {
			ctx.writeIndent()
			ctx.content.Write(line)
			ctx.content.WriteByte('\n')
			line = nil
		}
	}
	openArr := func() {
		if !arrOpen {
			line = append(line, '[')
			arrOpen = true
		} else {
			line = append(line, ' ')
		}
	}

	for _, it := range items {
		switch it.Kind {
		case TJRun:
			codes, err := r.mapRun(it.Run)
			if err != nil {
				return err
			}
			openArr()
			line = append(line, '<')
			line = append(line, []byte(hex.EncodeToString(codes))...)
			line = append(line, '>')
		case TJKern:
			openArr()
			line = append(line, []byte(num(it.Kern))...)
		case TJGlyph:
			if !r.fontSet {
				return newErr(ErrFontNotSpecified, "glyphs shown before Tf selected a font")
			}
			entry := ctx.doc.fonts[r.fid]
			subset, slot, err := entry.subsetter.AddLigature(it.GlyphIndex, string(it.Codepoint))
			if err != nil {
				return newErr(ErrMissingGlyph, err)
			}
			if err := r.requireSubset(subset); err != nil {
				return err
			}
			openArr()
			line = append(line, []byte(hexSlot(slot))...)
		case TJGlyphText:
			if !r.fontSet {
				return newErr(ErrFontNotSpecified, "glyphs shown before Tf selected a font")
			}
			entry := ctx.doc.fonts[r.fid]
			subset, slot, err := entry.subsetter.AddLigature(it.GlyphIndex, it.SourceText)
			if err != nil {
				return newErr(ErrMissingGlyph, err)
			}
			if err := r.requireSubset(subset); err != nil {
				return err
			}
			openArr()
			line = append(line, []byte(hexSlot(slot))...)
		case TJActualTextStart:
			flushLine(true)
			ctx.op("/Span <</ActualText %s>> BDC", objfmt.Utf8ToPdfUtf16BE(it.SourceText))
		case TJActualTextEnd:
			flushLine(true)
			ctx.op("EMC")
		default:
			return newErr(ErrBadEnum, "unknown TJ item kind")
		}
	}
	flushLine(true)
	return nil
}

func hexSlot(slot int) string {
	var b [2]byte
	b[0] = 0
	b[1] = byte(slot)
	return "<" + hex.EncodeToString(b[:]) + ">"
}
