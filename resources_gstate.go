package capypdf

// GraphicsState is the subset of /ExtGState entries this codec exposes:
// stroke/fill alpha, blend mode, stroke adjustment, and an optional soft
// mask.
type GraphicsState struct {
	StrokeAlpha *float64
	FillAlpha   *float64
	BlendMode   string
	SoftMask    *SoftMaskId
	StrokeAdjustment *bool
}

// AddGraphicsState registers gs and returns its id.
func (d *Document) AddGraphicsState(gs GraphicsState) (GraphicsStateId, error) {
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("ExtGState"))
	if gs.StrokeAlpha != nil {
		f.AddTokenPair("/CA", *gs.StrokeAlpha)
	}
	if gs.FillAlpha != nil {
		f.AddTokenPair("/ca", *gs.FillAlpha)
	}
	if gs.BlendMode != "" {
		f.AddTokenPair("/BM", name(gs.BlendMode))
	}
	if gs.StrokeAdjustment != nil {
		f.AddTokenPair("/SA", boolToken(*gs.StrokeAdjustment))
	}
	if gs.SoftMask != nil {
		if int(*gs.SoftMask) >= len(d.softMasks) {
			return 0, newErr(ErrIndexOutOfBounds, "soft mask id out of range")
		}
		f.AddObjectRefPair("/SMask", d.softMasks[*gs.SoftMask])
	}
	obj := d.store.add(fullObject{Dictionary: closedDict(f)})
	id := GraphicsStateId(len(d.graphicsStates))
	d.graphicsStates = append(d.graphicsStates, obj)
	return id, nil
}

func boolToken(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
