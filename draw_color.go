package capypdf

import "github.com/tinywasm/capypdf/internal/colorconv"

// SetFillColor emits the operator sequence that sets the non-stroking
// color, dispatching on c.Kind: "rg"/"g"/"k" need no resource, while Icc/
// Lab/Separation/Pattern colors select a named colorspace via "cs" before
// setting components via "scn".
func (ctx *DrawContext) SetFillColor(c Color) error {
	return ctx.setColor(c, false)
}

// SetStrokeColor is SetFillColor for the stroking color ("RG"/"G"/"K"/
// "CS"+"SCN").
func (ctx *DrawContext) SetStrokeColor(c Color) error {
	return ctx.setColor(c, true)
}

// SetFillColorConverted converts a device color to the document's output
// color space before emitting it; non-device colors (Icc, Lab, Separation,
// Pattern) pass through unchanged.
func (ctx *DrawContext) SetFillColorConverted(c Color) error {
	return ctx.setColorConverted(c, false)
}

// SetStrokeColorConverted is SetFillColorConverted for the stroking color.
func (ctx *DrawContext) SetStrokeColorConverted(c Color) error {
	return ctx.setColorConverted(c, true)
}

func (ctx *DrawContext) setColorConverted(c Color, stroke bool) error {
	switch c.Kind {
	case ColorDeviceRGB, ColorDeviceGray, ColorDeviceCMYK:
	default:
		return ctx.setColor(c, stroke)
	}
	switch ctx.doc.props.OutputColorSpace {
	case OutputRGB:
		switch c.Kind {
		case ColorDeviceGray:
			c = NewDeviceRGB(c.Gray, c.Gray, c.Gray)
		case ColorDeviceCMYK:
			r, g, b := colorconv.ToRGB(c.C, c.M, c.Y, c.K)
			c = NewDeviceRGB(r, g, b)
		}
	case OutputGray:
		switch c.Kind {
		case ColorDeviceRGB:
			c = NewDeviceGray(colorconv.ToGrayFromRGB(c.R, c.G, c.B))
		case ColorDeviceCMYK:
			c = NewDeviceGray(colorconv.ToGrayFromCMYK(c.C, c.M, c.Y, c.K))
		}
	case OutputCMYK:
		switch c.Kind {
		case ColorDeviceRGB:
			cc, m, y, k := colorconv.ToCMYK(c.R, c.G, c.B)
			c = NewDeviceCMYK(cc, m, y, k)
		case ColorDeviceGray:
			cc, m, y, k := colorconv.ToCMYK(c.Gray, c.Gray, c.Gray)
			c = NewDeviceCMYK(cc, m, y, k)
		}
	}
	return ctx.setColor(c, stroke)
}

func (ctx *DrawContext) setColor(c Color, stroke bool) error {
	switch c.Kind {
	case ColorDeviceRGB:
		ctx.op("%s %s %s %s", num(c.R), num(c.G), num(c.B), rgOp(stroke))
	case ColorDeviceGray:
		ctx.op("%s %s", num(c.Gray), gOp(stroke))
	case ColorDeviceCMYK:
		ctx.op("%s %s %s %s %s", num(c.C), num(c.M), num(c.Y), num(c.K), kOp(stroke))
	case ColorIcc:
		if int(c.IccID) >= len(ctx.doc.iccProfiles) {
			return newErr(ErrIndexOutOfBounds, "icc colorspace id out of range")
		}
		if len(c.Channels) != ctx.doc.iccProfiles[c.IccID].channels {
			return newErr(ErrIncorrectColorChannelCount, "icc color component count does not match profile")
		}
		ctx.usedIcc[c.IccID] = true
		ctx.emitCS(colorSpaceResourceName(ctx.doc.iccProfiles[c.IccID].arrayObj), c.Channels, stroke)
	case ColorLab:
		if int(c.LabID) >= len(ctx.doc.labColorSpaces) {
			return newErr(ErrIndexOutOfBounds, "lab colorspace id out of range")
		}
		ctx.usedLab[c.LabID] = true
		ctx.emitCS(colorSpaceResourceName(ctx.doc.labColorSpaces[c.LabID].obj), []float64{c.L, c.A, c.Bv}, stroke)
	case ColorSeparation:
		if int(c.SepID) >= len(ctx.doc.separations) {
			return newErr(ErrIndexOutOfBounds, "separation id out of range")
		}
		ctx.usedSeparations[c.SepID] = true
		ctx.emitCS(colorSpaceResourceName(ctx.doc.separations[c.SepID].obj), []float64{c.SepV}, stroke)
	case ColorPattern:
		if int(c.PatID) >= len(ctx.doc.patterns) {
			return newErr(ErrIndexOutOfBounds, "pattern id out of range")
		}
		ctx.usedPatterns[c.PatID] = true
		patName := patternResourceName(ctx.doc.patterns[c.PatID].obj)
		if stroke {
			ctx.op("/Pattern CS")
			ctx.op("%s SCN", patName)
		} else {
			ctx.op("/Pattern cs")
			ctx.op("%s scn", patName)
		}
	default:
		return newErr(ErrBadEnum, "unknown color kind")
	}
	return nil
}

func (ctx *DrawContext) emitCS(resourceName string, components []float64, stroke bool) {
	if stroke {
		ctx.op("%s CS", resourceName)
	} else {
		ctx.op("%s cs", resourceName)
	}
	var b []byte
	for _, v := range components {
		b = append(b, []byte(num(v))...)
		b = append(b, ' ')
	}
	if stroke {
		ctx.op("%s%s", string(b), "SCN")
	} else {
		ctx.op("%s%s", string(b), "scn")
	}
}

func rgOp(stroke bool) string {
	if stroke {
		return "RG"
	}
	return "rg"
}

func gOp(stroke bool) string {
	if stroke {
		return "G"
	}
	return "g"
}

func kOp(stroke bool) string {
	if stroke {
		return "K"
	}
	return "k"
}
