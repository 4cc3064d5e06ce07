package capypdf

import (
	"bytes"
	"fmt"

	"github.com/tinywasm/capypdf/internal/objfmt"
)

// DrawContextKind tags a DrawContext's recording policy: pages accept
// transitions and annotations, the XObject kinds accept a group matrix,
// and ColorTiling turns into a tiling pattern cell.
type DrawContextKind int

const (
	DrawPage DrawContextKind = iota
	DrawFormXObject
	DrawTransparencyGroup
	DrawColorTiling
)

type drawState int

const (
	stateBase drawState = iota
	stateText
	stateSave
	stateMarkedContent
)

// DrawContext records a content-operator command stream and the set of
// resources it references. It is created against a Document, issued
// operators, then consumed by AddPage / AddFormXObject /
// AddTransparencyGroup / AddTilingPattern, after which it must not be
// reused without a Clear().
type DrawContext struct {
	doc  *Document
	kind DrawContextKind

	content bytes.Buffer
	indent  int
	stack   []drawState

	usedFonts        map[FontId]bool
	usedSubsetFonts  map[subsetFontKey]bool
	usedImages       map[ImageId]bool
	usedFormXObjects map[FormXObjectId]bool
	usedTranspGroups map[TransparencyGroupId]bool
	usedGStates      map[GraphicsStateId]bool
	usedShadings     map[ShadingId]bool
	usedPatterns     map[PatternId]bool
	usedOCGs         map[OptionalContentGroupId]bool
	usedIcc          map[IccColorSpaceId]bool
	usedSeparations  map[SeparationId]bool
	usedLab          map[LabColorSpaceId]bool

	usedWidgets     []FormWidgetId
	usedAnnotations []AnnotationId
	usedStructs     []StructureItemId

	transition *Transition

	bbox           *PdfRectangle
	matrix         *PdfMatrix
	transpCS       string
	transpIsolated bool
	transpKnockout bool
}

// subsetFontKey names one (font, subset) pair a rendered text object
// selected via its re-emitted Tf.
type subsetFontKey struct {
	fid    FontId
	subset int
}

func newDrawContext(doc *Document, kind DrawContextKind) *DrawContext {
	return &DrawContext{
		doc:              doc,
		kind:             kind,
		usedFonts:        map[FontId]bool{},
		usedSubsetFonts:  map[subsetFontKey]bool{},
		usedImages:       map[ImageId]bool{},
		usedFormXObjects: map[FormXObjectId]bool{},
		usedTranspGroups: map[TransparencyGroupId]bool{},
		usedGStates:      map[GraphicsStateId]bool{},
		usedShadings:     map[ShadingId]bool{},
		usedPatterns:     map[PatternId]bool{},
		usedOCGs:         map[OptionalContentGroupId]bool{},
		usedIcc:          map[IccColorSpaceId]bool{},
		usedSeparations:  map[SeparationId]bool{},
		usedLab:          map[LabColorSpaceId]bool{},
	}
}

// NewPageContext starts recording a page's content stream.
func (d *Document) NewPageContext() *DrawContext { return newDrawContext(d, DrawPage) }

// NewFormXObjectContext starts recording a reusable Form XObject.
func (d *Document) NewFormXObjectContext(bbox PdfRectangle) *DrawContext {
	c := newDrawContext(d, DrawFormXObject)
	c.bbox = &bbox
	return c
}

// NewTransparencyGroupContext starts recording a transparency-group Form
// XObject.
func (d *Document) NewTransparencyGroupContext(bbox PdfRectangle, cs string, isolated, knockout bool) *DrawContext {
	c := newDrawContext(d, DrawTransparencyGroup)
	c.bbox = &bbox
	c.transpCS = cs
	c.transpIsolated = isolated
	c.transpKnockout = knockout
	return c
}

// NewColorTilingContext starts recording a tiling-pattern cell; bbox's
// width/height become the pattern's /XStep//YStep.
func (d *Document) NewColorTilingContext(bbox PdfRectangle) *DrawContext {
	c := newDrawContext(d, DrawColorTiling)
	c.bbox = &bbox
	return c
}

// Clear resets ctx to an empty recording, for reuse after its content has
// been consumed by an Add* call.
func (ctx *DrawContext) Clear() {
	kind, doc, bbox := ctx.kind, ctx.doc, ctx.bbox
	*ctx = *newDrawContext(doc, kind)
	ctx.bbox = bbox
}

func (ctx *DrawContext) requireBaseState() error {
	if len(ctx.stack) != 0 {
		return newErr(ErrUnclosedMarkedContent, "draw context has unclosed nested state")
	}
	return nil
}

func (ctx *DrawContext) top() drawState {
	if len(ctx.stack) == 0 {
		return stateBase
	}
	return ctx.stack[len(ctx.stack)-1]
}

func (ctx *DrawContext) writeIndent() {
	for i := 0; i < ctx.indent; i++ {
		ctx.content.WriteByte(' ')
	}
}

func (ctx *DrawContext) op(format string, args ...any) {
	ctx.writeIndent()
	fmt.Fprintf(&ctx.content, format, args...)
	ctx.content.WriteByte('\n')
}

// --- graphics state stack --------------------------------------------------

// Q pushes the graphics state ("q").
func (ctx *DrawContext) Q() {
	ctx.op("q")
	ctx.stack = append(ctx.stack, stateSave)
	ctx.indent++
}

// QEnd pops the graphics state ("Q"); fails unless the innermost open
// nesting is a q save-state.
func (ctx *DrawContext) QEnd() error {
	if ctx.top() != stateSave {
		return newErr(ErrInvalidDrawContextType, "Q with no matching q")
	}
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	ctx.indent--
	ctx.op("Q")
	return nil
}

// Cm concatenates m onto the current transformation matrix ("cm").
func (ctx *DrawContext) Cm(m PdfMatrix) {
	ctx.op("%s %s %s %s %s %s cm", num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
}

// --- path construction & painting ------------------------------------------

func (ctx *DrawContext) Re(x, y, w, h float64) {
	ctx.op("%s %s %s %s re", num(x), num(y), num(w), num(h))
}

func (ctx *DrawContext) M(x, y float64)       { ctx.op("%s %s m", num(x), num(y)) }
func (ctx *DrawContext) L(x, y float64)       { ctx.op("%s %s l", num(x), num(y)) }
func (ctx *DrawContext) C(x1, y1, x2, y2, x3, y3 float64) {
	ctx.op("%s %s %s %s %s %s c", num(x1), num(y1), num(x2), num(y2), num(x3), num(y3))
}
func (ctx *DrawContext) H() { ctx.op("h") }

func (ctx *DrawContext) F()  { ctx.op("f") }
func (ctx *DrawContext) FStar() { ctx.op("f*") }
func (ctx *DrawContext) S()  { ctx.op("S") }
func (ctx *DrawContext) SSmall() { ctx.op("s") }
func (ctx *DrawContext) B()  { ctx.op("B") }
func (ctx *DrawContext) BStar() { ctx.op("B*") }
func (ctx *DrawContext) N()  { ctx.op("n") }
func (ctx *DrawContext) W()  { ctx.op("W") }
func (ctx *DrawContext) WStar() { ctx.op("W*") }

// LineWidth sets "w"; rejects a negative width (ErrNegativeLineWidth).
func (ctx *DrawContext) LineWidth(w float64) error {
	if w < 0 {
		return newErr(ErrNegativeLineWidth, "line width must be non-negative")
	}
	ctx.op("%s w", num(w))
	return nil
}

// LineCap sets "J"; style must be 0 (butt), 1 (round), or 2 (square).
func (ctx *DrawContext) LineCap(style int) error {
	if style < 0 || style > 2 {
		return newErr(ErrBadEnum, "line cap style must be 0, 1, or 2")
	}
	ctx.op("%d J", style)
	return nil
}

// LineJoin sets "j"; style must be 0 (miter), 1 (round), or 2 (bevel).
func (ctx *DrawContext) LineJoin(style int) error {
	if style < 0 || style > 2 {
		return newErr(ErrBadEnum, "line join style must be 0, 1, or 2")
	}
	ctx.op("%d j", style)
	return nil
}

func (ctx *DrawContext) MiterLimit(limit float64) { ctx.op("%s M", num(limit)) }

// Dash sets "d"; every element must be non-negative and, if the array is
// non-empty, at least one element must be non-zero (a zero-length dash
// pattern is meaningless).
func (ctx *DrawContext) Dash(pattern []float64, phase float64) error {
	allZero := true
	for _, v := range pattern {
		if v < 0 {
			return newErr(ErrNegativeDash, "dash array elements must be non-negative")
		}
		if v != 0 {
			allZero = false
		}
	}
	if len(pattern) > 0 && allZero {
		return newErr(ErrZeroLengthArray, "dash pattern must have a non-zero element")
	}
	ctx.op("%s %s d", formatFloatArray(pattern), num(phase))
	return nil
}

// Flatness sets "i"; tolerance must be in [0,100].
func (ctx *DrawContext) Flatness(tolerance float64) error {
	if tolerance < 0 || tolerance > 100 {
		return newErr(ErrInvalidFlatness, "flatness must be in [0,100]")
	}
	ctx.op("%s i", num(tolerance))
	return nil
}

// --- resource-referencing operators -----------------------------------------

// GS applies an ExtGState ("gs"), recording gsid into the resource-use set.
func (ctx *DrawContext) GS(gsid GraphicsStateId) error {
	if int(gsid) >= len(ctx.doc.graphicsStates) {
		return newErr(ErrIndexOutOfBounds, "graphics state id out of range")
	}
	ctx.usedGStates[gsid] = true
	ctx.op("%s gs", gstateResourceName(ctx.doc.graphicsStates[gsid]))
	return nil
}

// Sh paints a shading ("sh").
func (ctx *DrawContext) Sh(sid ShadingId) error {
	if int(sid) >= len(ctx.doc.shadings) {
		return newErr(ErrIndexOutOfBounds, "shading id out of range")
	}
	ctx.usedShadings[sid] = true
	ctx.op("%s sh", shadingResourceName(ctx.doc.shadings[sid].obj))
	return nil
}

// DoImage paints an image XObject ("Do").
func (ctx *DrawContext) DoImage(id ImageId) error {
	if int(id) >= len(ctx.doc.images) {
		return newErr(ErrIndexOutOfBounds, "image id out of range")
	}
	ctx.usedImages[id] = true
	ctx.op("%s Do", imageResourceName(ctx.doc.images[id].obj))
	return nil
}

// DoForm paints a Form XObject ("Do").
func (ctx *DrawContext) DoForm(id FormXObjectId) error {
	if int(id) >= len(ctx.doc.formXObjects) {
		return newErr(ErrIndexOutOfBounds, "form xobject id out of range")
	}
	ctx.usedFormXObjects[id] = true
	ctx.op("%s Do", formXObjectResourceName(ctx.doc.formXObjects[id].obj))
	return nil
}

// DoTransparencyGroup paints a transparency group Form XObject ("Do").
func (ctx *DrawContext) DoTransparencyGroup(id TransparencyGroupId) error {
	if int(id) >= len(ctx.doc.transparencyGroups) {
		return newErr(ErrIndexOutOfBounds, "transparency group id out of range")
	}
	ctx.usedTranspGroups[id] = true
	ctx.op("%s Do", transparencyGroupResourceName(ctx.doc.transparencyGroups[id]))
	return nil
}

// SetGroupMatrix records the /Matrix of the eventual Form XObject or
// tiling pattern; pages have no group matrix (ErrWrongDCForMatrix).
func (ctx *DrawContext) SetGroupMatrix(m PdfMatrix) error {
	if ctx.kind == DrawPage {
		return newErr(ErrWrongDCForMatrix, "a page draw context has no group matrix")
	}
	ctx.matrix = &m
	return nil
}

// --- marked content ----------------------------------------------------------

// BDCStructure opens a marked-content sequence tagged with a structure
// item ("/Tag <</MCID n>> BDC", Tag being the item's role or builtin
// type name), assigning sid an MCID on the page that
// eventually consumes ctx (I4 is enforced at AddPage time).
func (ctx *DrawContext) BDCStructure(sid StructureItemId) error {
	if int(sid) >= len(ctx.doc.structureItems) {
		return newErr(ErrIndexOutOfBounds, "structure item id out of range")
	}
	for _, used := range ctx.usedStructs {
		if used == sid {
			return newErr(ErrStructureReuse, "structure item already given an MCID in this context")
		}
	}
	mcid := len(ctx.usedStructs)
	ctx.usedStructs = append(ctx.usedStructs, sid)
	tn := ctx.doc.structureTagName(sid)
	ctx.op("/%s <</MCID %d>> BDC", tn, mcid)
	ctx.stack = append(ctx.stack, stateMarkedContent)
	ctx.indent++
	return nil
}

// BMC opens a plain marked-content sequence (no property list), e.g.
// "/Artifact BMC".
func (ctx *DrawContext) BMC(tag string) error {
	if len(tag) > 0 && tag[0] == '/' {
		return newErr(ErrSlashStart, "marked-content tag must not start with a slash")
	}
	ctx.op("/%s BMC", tag)
	ctx.stack = append(ctx.stack, stateMarkedContent)
	ctx.indent++
	return nil
}

// BDCOCG opens a marked-content sequence tied to an optional content
// group ("/OC /oc{n} BDC").
func (ctx *DrawContext) BDCOCG(ocg OptionalContentGroupId) error {
	if int(ocg) >= len(ctx.doc.ocgs) {
		return newErr(ErrIndexOutOfBounds, "optional content group id out of range")
	}
	ctx.usedOCGs[ocg] = true
	ctx.op("/OC %s BDC", ocgResourceName(ctx.doc.ocgs[ocg].obj))
	ctx.stack = append(ctx.stack, stateMarkedContent)
	ctx.indent++
	return nil
}

// EMC closes the innermost marked-content sequence; fails with
// ErrEmcOnEmpty if none is open.
func (ctx *DrawContext) EMC() error {
	if ctx.top() != stateMarkedContent {
		return newErr(ErrEmcOnEmpty, "EMC with no open marked content")
	}
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	ctx.indent--
	ctx.op("EMC")
	return nil
}

// AttachAnnotation places annotation aid on the page this context will
// become; AddPage rejects the page if aid was already placed on another
// one (I3).
func (ctx *DrawContext) AttachAnnotation(aid AnnotationId) error {
	if ctx.kind != DrawPage {
		return newErr(ErrInvalidDrawContextType, "annotations may only be attached to a page draw context")
	}
	if int(aid) >= len(ctx.doc.annotations) {
		return newErr(ErrIndexOutOfBounds, "annotation id out of range")
	}
	ctx.usedAnnotations = append(ctx.usedAnnotations, aid)
	return nil
}

// AttachWidget places checkbox widget wid on the page this context will
// become; AddPage rejects the page if wid was already placed elsewhere
// (I2).
func (ctx *DrawContext) AttachWidget(wid FormWidgetId) error {
	if ctx.kind != DrawPage {
		return newErr(ErrInvalidDrawContextType, "form widgets may only be attached to a page draw context")
	}
	if int(wid) >= len(ctx.doc.formWidgets) {
		return newErr(ErrIndexOutOfBounds, "form widget id out of range")
	}
	ctx.usedWidgets = append(ctx.usedWidgets, wid)
	return nil
}

// SetTransition records the page-presentation transition this page
// should use.
func (ctx *DrawContext) SetTransition(t Transition) error {
	if ctx.kind != DrawPage {
		return newErr(ErrInvalidDrawContextType, "transitions may only be set on a page draw context")
	}
	ctx.transition = &t
	return nil
}

func num(v float64) string { return objfmt.FormatNumber(v) }
