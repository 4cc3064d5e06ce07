package capypdf

// buildResourceDict assembles the PDF resource sub-dictionaries (/Font,
// /XObject, /ExtGState, /Shading, /Pattern, /ColorSpace, plus /Properties
// for marked-content OCG references) out of the resources a DrawContext
// actually referenced while recording — nothing unused is listed. Keys are
// derived from the referenced resource's object number, so the same token
// an operator emitted into the content stream resolves here.
func (d *Document) buildResourceDict(ctx *DrawContext) []byte {
	f := newDictFormatter()

	if len(ctx.usedFonts) > 0 || len(ctx.usedSubsetFonts) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedFonts {
			obj := d.fonts[id].fontObj
			sub.AddObjectRefPair(fontResourceName(obj), obj)
		}
		for key := range ctx.usedSubsetFonts {
			obj := d.fonts[key.fid].fontObj
			sub.AddObjectRefPair(subsetFontResourceName(obj, key.subset), obj)
		}
		f.AddRawLine("/Font", string(closedDict(sub)))
	}

	if len(ctx.usedImages) > 0 || len(ctx.usedFormXObjects) > 0 || len(ctx.usedTranspGroups) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedImages {
			obj := d.images[id].obj
			sub.AddObjectRefPair(imageResourceName(obj), obj)
		}
		for id := range ctx.usedFormXObjects {
			obj := d.formXObjects[id].obj
			sub.AddObjectRefPair(formXObjectResourceName(obj), obj)
		}
		for id := range ctx.usedTranspGroups {
			obj := d.transparencyGroups[id]
			sub.AddObjectRefPair(transparencyGroupResourceName(obj), obj)
		}
		f.AddRawLine("/XObject", string(closedDict(sub)))
	}

	if len(ctx.usedGStates) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedGStates {
			obj := d.graphicsStates[id]
			sub.AddObjectRefPair(gstateResourceName(obj), obj)
		}
		f.AddRawLine("/ExtGState", string(closedDict(sub)))
	}

	if len(ctx.usedShadings) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedShadings {
			obj := d.shadings[id].obj
			sub.AddObjectRefPair(shadingResourceName(obj), obj)
		}
		f.AddRawLine("/Shading", string(closedDict(sub)))
	}

	if len(ctx.usedPatterns) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedPatterns {
			obj := d.patterns[id].obj
			sub.AddObjectRefPair(patternResourceName(obj), obj)
		}
		f.AddRawLine("/Pattern", string(closedDict(sub)))
	}

	if len(ctx.usedIcc) > 0 || len(ctx.usedLab) > 0 || len(ctx.usedSeparations) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedIcc {
			obj := d.iccProfiles[id].arrayObj
			sub.AddObjectRefPair(colorSpaceResourceName(obj), obj)
		}
		for id := range ctx.usedLab {
			obj := d.labColorSpaces[id].obj
			sub.AddObjectRefPair(colorSpaceResourceName(obj), obj)
		}
		for id := range ctx.usedSeparations {
			obj := d.separations[id].obj
			sub.AddObjectRefPair(colorSpaceResourceName(obj), obj)
		}
		f.AddRawLine("/ColorSpace", string(closedDict(sub)))
	}

	if len(ctx.usedOCGs) > 0 {
		sub := newDictFormatter()
		for id := range ctx.usedOCGs {
			obj := d.ocgs[id].obj
			sub.AddObjectRefPair(ocgResourceName(obj), obj)
		}
		f.AddRawLine("/Properties", string(closedDict(sub)))
	}

	return closedDict(f)
}

func fontResourceName(obj int) string  { return "/Font" + itoaHelper(obj) }
func imageResourceName(obj int) string { return "/Image" + itoaHelper(obj) }
func formXObjectResourceName(obj int) string {
	return "/FXO" + itoaHelper(obj)
}
func transparencyGroupResourceName(obj int) string { return "/TG" + itoaHelper(obj) }
func gstateResourceName(obj int) string            { return "/GS" + itoaHelper(obj) }
func shadingResourceName(obj int) string           { return "/SH" + itoaHelper(obj) }
func patternResourceName(obj int) string           { return "/Pattern-" + itoaHelper(obj) }
func colorSpaceResourceName(obj int) string        { return "/CSpace" + itoaHelper(obj) }
func ocgResourceName(obj int) string               { return "/oc" + itoaHelper(obj) }

func subsetFontResourceName(obj, subset int) string {
	return "/SFont" + itoaHelper(obj) + "-" + itoaHelper(subset)
}
