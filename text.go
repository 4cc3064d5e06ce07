package capypdf

import "encoding/hex"

// BeginText opens a "BT ... ET" text object. Must be issued from the base
// draw state; text operators are only valid between BeginText/EndText.
func (ctx *DrawContext) BeginText() error {
	if ctx.top() != stateBase {
		return newErr(ErrInvalidDrawContextType, "BT issued inside another text or save-state block")
	}
	ctx.op("BT")
	ctx.stack = append(ctx.stack, stateText)
	ctx.indent++
	return nil
}

// EndText closes the innermost text object ("ET").
func (ctx *DrawContext) EndText() error {
	if ctx.top() != stateText {
		return newErr(ErrInvalidDrawContextType, "ET with no matching BT")
	}
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	ctx.indent--
	ctx.op("ET")
	return nil
}

func (ctx *DrawContext) requireTextState() error {
	if ctx.top() != stateText {
		return newErr(ErrFontNotSpecified, "text operator issued outside a BT/ET block")
	}
	return nil
}

// Tf selects font fid at the given point size ("Tf"), recording fid in
// the context's resource-use set.
func (ctx *DrawContext) Tf(fid FontId, size float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	if int(fid) >= len(ctx.doc.fonts) {
		return newErr(ErrIndexOutOfBounds, "font id out of range")
	}
	ctx.usedFonts[fid] = true
	ctx.op("%s %s Tf", fontResourceName(ctx.doc.fonts[fid].fontObj), num(size))
	return nil
}

func (ctx *DrawContext) Td(tx, ty float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s %s Td", num(tx), num(ty))
	return nil
}

func (ctx *DrawContext) TD(tx, ty float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s %s TD", num(tx), num(ty))
	return nil
}

func (ctx *DrawContext) Tm(m PdfMatrix) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s %s %s %s %s %s Tm", num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
	return nil
}

func (ctx *DrawContext) TStar() error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("T*")
	return nil
}

func (ctx *DrawContext) TL(leading float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s TL", num(leading))
	return nil
}

func (ctx *DrawContext) Tc(charSpace float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s Tc", num(charSpace))
	return nil
}

// Tr sets the text rendering mode (0 fill ... 7 clip-only); mode must be
// in [0,7].
func (ctx *DrawContext) Tr(mode int) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	if mode < 0 || mode > 7 {
		return newErr(ErrBadEnum, "text rendering mode must be in [0,7]")
	}
	ctx.op("%d Tr", mode)
	return nil
}

func (ctx *DrawContext) Ts(rise float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s Ts", num(rise))
	return nil
}

// Tz sets horizontal scaling as a percentage (100 = normal).
func (ctx *DrawContext) Tz(scalePercent float64) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	ctx.op("%s Tz", num(scalePercent))
	return nil
}

// ShowText resolves each rune in text to a subset slot in fid's font
// (allocating the glyph if this is the first time it's used anywhere in
// the document) and emits a hex string "Tj" whose bytes are 2-byte CID
// codes, high byte 0 and low byte the slot: subset fonts here never
// exceed 255 glyphs.
func (ctx *DrawContext) ShowText(fid FontId, text string) error {
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	if int(fid) >= len(ctx.doc.fonts) {
		return newErr(ErrIndexOutOfBounds, "font id out of range")
	}
	entry := ctx.doc.fonts[fid]
	codes := make([]byte, 0, len(text)*2)
	for _, r := range text {
		_, slot, err := entry.subsetter.AddCodepoint(r)
		if err != nil {
			return newErr(ErrMissingGlyph, err)
		}
		codes = append(codes, 0, byte(slot))
	}
	ctx.usedFonts[fid] = true
	ctx.op("<%s> Tj", hex.EncodeToString(codes))
	return nil
}

// ShowTextAdjusted emits a "TJ" array alternating hex-string runs and
// thousandths-of-em kerning adjustments, for callers doing manual
// justification.
func (ctx *DrawContext) ShowTextAdjusted(fid FontId, runs []string, kerns []float64) error {
	if len(kerns) != 0 && len(kerns) != len(runs)-1 {
		return newErr(ErrInvalidBufsize, "kerning adjustments must number one less than text runs")
	}
	if err := ctx.requireTextState(); err != nil {
		return err
	}
	if int(fid) >= len(ctx.doc.fonts) {
		return newErr(ErrIndexOutOfBounds, "font id out of range")
	}
	entry := ctx.doc.fonts[fid]
	ctx.usedFonts[fid] = true

	ctx.writeIndent()
	ctx.content.WriteByte('[')
	for i, run := range runs {
		codes := make([]byte, 0, len(run)*2)
		for _, r := range run {
			_, slot, err := entry.subsetter.AddCodepoint(r)
			if err != nil {
				return newErr(ErrMissingGlyph, err)
			}
			codes = append(codes, 0, byte(slot))
		}
		ctx.content.WriteByte('<')
		ctx.content.WriteString(hex.EncodeToString(codes))
		ctx.content.WriteByte('>')
		if i < len(kerns) {
			ctx.content.WriteByte(' ')
			ctx.content.WriteString(num(kerns[i]))
			ctx.content.WriteByte(' ')
		}
	}
	ctx.content.WriteString("] TJ\n")
	return nil
}
