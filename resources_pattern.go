package capypdf

// AddTilingPattern registers ctx (which must be a ColorTiling draw
// context) as a PatternType 1 tiling pattern. The context's recorded
// command stream becomes the pattern cell's content; ctx.bbox's
// width/height become /XStep and /YStep.
func (d *Document) AddTilingPattern(ctx *DrawContext) (PatternId, error) {
	if ctx.kind != DrawColorTiling {
		return 0, newErr(ErrPatternNotAccepted, "AddTilingPattern requires a ColorTiling draw context")
	}
	if err := ctx.requireBaseState(); err != nil {
		return 0, err
	}
	if ctx.bbox == nil {
		return 0, newErr(ErrMissingMediabox, "tiling pattern requires a bbox")
	}
	resourceDict := d.buildResourceDict(ctx)
	resObj := d.store.add(fullObject{Dictionary: resourceDict})

	xstep := ctx.bbox.X2 - ctx.bbox.X1
	ystep := ctx.bbox.Y2 - ctx.bbox.Y1

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Pattern"))
	f.AddTokenPair("/PatternType", 1)
	f.AddTokenPair("/PaintType", 1)
	f.AddTokenPair("/TilingType", 1)
	f.AddTokenPair("/BBox", formatFloatArray([]float64{ctx.bbox.X1, ctx.bbox.Y1, ctx.bbox.X2, ctx.bbox.Y2}))
	f.AddTokenPair("/XStep", xstep)
	f.AddTokenPair("/YStep", ystep)
	f.AddObjectRefPair("/Resources", resObj)
	if ctx.matrix != nil {
		m := *ctx.matrix
		f.AddTokenPair("/Matrix", formatFloatArray([]float64{m.A, m.B, m.C, m.D, m.E, m.F}))
	}
	obj := d.store.add(deflateObject{
		OpenDictionary:         f.Bytes(),
		Stream:                 ctx.content.Bytes(),
		LeaveUncompressedDebug: !d.props.CompressStreams,
	})
	id := PatternId(len(d.patterns))
	d.patterns = append(d.patterns, patternEntry{obj: obj, resourceObj: resObj})
	return id, nil
}

// AddTransparencyGroup registers ctx (which must be a TransparencyGroup
// draw context) as a Form XObject carrying a /Group transparency
// dictionary.
func (d *Document) AddTransparencyGroup(ctx *DrawContext) (TransparencyGroupId, error) {
	if ctx.kind != DrawTransparencyGroup {
		return 0, newErr(ErrWrongDCForTransp, "AddTransparencyGroup requires a TransparencyGroup draw context")
	}
	obj, err := d.finishFormXObjectLike(ctx, true)
	if err != nil {
		return 0, err
	}
	id := TransparencyGroupId(len(d.transparencyGroups))
	d.transparencyGroups = append(d.transparencyGroups, obj)
	return id, nil
}

// AddFormXObject registers ctx (a plain FormXObject draw context) as a
// reusable /XObject /Form object.
func (d *Document) AddFormXObject(ctx *DrawContext) (FormXObjectId, error) {
	if ctx.kind != DrawFormXObject {
		return 0, newErr(ErrInvalidDrawContextType, "AddFormXObject requires a FormXObject draw context")
	}
	obj, err := d.finishFormXObjectLike(ctx, false)
	if err != nil {
		return 0, err
	}
	id := FormXObjectId(len(d.formXObjects))
	d.formXObjects = append(d.formXObjects, formXObjectEntry{obj: obj})
	return id, nil
}

func (d *Document) finishFormXObjectLike(ctx *DrawContext, transparencyGroup bool) (int, error) {
	if err := ctx.requireBaseState(); err != nil {
		return 0, err
	}
	if ctx.bbox == nil {
		return 0, newErr(ErrMissingMediabox, "form xobject requires a bbox")
	}
	resourceDict := d.buildResourceDict(ctx)
	resObj := d.store.add(fullObject{Dictionary: resourceDict})

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("XObject"))
	f.AddTokenPair("/Subtype", name("Form"))
	f.AddTokenPair("/BBox", formatFloatArray([]float64{ctx.bbox.X1, ctx.bbox.Y1, ctx.bbox.X2, ctx.bbox.Y2}))
	if ctx.matrix != nil {
		m := *ctx.matrix
		f.AddTokenPair("/Matrix", formatFloatArray([]float64{m.A, m.B, m.C, m.D, m.E, m.F}))
	}
	f.AddObjectRefPair("/Resources", resObj)
	if transparencyGroup {
		g := newDictFormatter()
		g.AddTokenPair("/Type", name("Group"))
		g.AddTokenPair("/S", name("Transparency"))
		if ctx.transpCS != "" {
			g.AddTokenPair("/CS", name(ctx.transpCS))
		}
		if ctx.transpIsolated {
			g.AddTokenPair("/I", "true")
		}
		if ctx.transpKnockout {
			g.AddTokenPair("/K", "true")
		}
		f.AddRawLine("/Group", string(closedDict(g)))
	}
	obj := d.store.add(deflateObject{
		OpenDictionary:         f.Bytes(),
		Stream:                 ctx.content.Bytes(),
		LeaveUncompressedDebug: !d.props.CompressStreams,
	})
	return obj, nil
}

// SoftMask describes a /SMask soft-mask dictionary built from a
// transparency group.
type SoftMask struct {
	Group     TransparencyGroupId
	Luminosity bool // true => /S /Luminosity, false => /S /Alpha
}

// AddSoftMask registers sm and returns its id.
func (d *Document) AddSoftMask(sm SoftMask) (SoftMaskId, error) {
	if int(sm.Group) >= len(d.transparencyGroups) {
		return 0, newErr(ErrIndexOutOfBounds, "soft mask group id out of range")
	}
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Mask"))
	if sm.Luminosity {
		f.AddTokenPair("/S", name("Luminosity"))
	} else {
		f.AddTokenPair("/S", name("Alpha"))
	}
	f.AddObjectRefPair("/G", d.transparencyGroups[sm.Group])
	obj := d.store.add(fullObject{Dictionary: closedDict(f)})
	id := SoftMaskId(len(d.softMasks))
	d.softMasks = append(d.softMasks, obj)
	return id, nil
}
