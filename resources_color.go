package capypdf

import "github.com/tinywasm/capypdf/internal/objfmt"

// AddLabColorSpace writes a [/Lab <</WhitePoint .. /Range ..>>] array
// object and returns its id.
func (d *Document) AddLabColorSpace(lab LabColorSpaceParams) LabColorSpaceId {
	f := newDictFormatter()
	f.AddTokenPair("/WhitePoint", formatFloatArray(lab.WhitePoint[:]))
	f.AddTokenPair("/Range", formatFloatArray(lab.Range[:]))
	dict := closedDict(f)
	full := objfmtArrayWrap("/Lab", dict)
	obj := d.store.add(fullObject{Dictionary: full})
	id := LabColorSpaceId(len(d.labColorSpaces))
	d.labColorSpaces = append(d.labColorSpaces, labEntry{obj: obj, lab: lab})
	return id
}

// objfmtArrayWrap renders "[ /Name <<dict>> ]" for colorspace array
// objects (Lab, ICCBased already use a bare stream so don't need this).
func objfmtArrayWrap(tag string, dict []byte) []byte {
	out := append([]byte("["+tag+" "), dict...)
	out = append(out, ']')
	return out
}

// AddICCProfile registers an ICC profile blob, deduplicated by byte
// equality against already-added profiles.
func (d *Document) AddICCProfile(data []byte, channels int) IccColorSpaceId {
	obj := d.addICCStreamObject(data, channels)
	for i, e := range d.iccProfiles {
		if e.obj == obj {
			return IccColorSpaceId(i)
		}
	}
	return IccColorSpaceId(len(d.iccProfiles) - 1)
}

// CreateSeparation registers a /Separation colorspace naming a spot color
// and its DeviceCMYK tint-transform function. fn must be a Type 4
// (PostScript calculator) function.
func (d *Document) CreateSeparation(colorantName string, fn FunctionId) (SeparationId, error) {
	if int(fn) >= len(d.functions) {
		return 0, newErr(ErrIndexOutOfBounds, "separation function id out of range")
	}
	if !d.functions[fn].fn.IsType4() {
		return 0, newErr(ErrIncorrectFunctionType, "separation tint transform must be a Type 4 function")
	}
	f := objfmtArr()
	f.BeginArray(0)
	f.AddTokenWithSlash("Separation")
	f.AddRaw(objfmt.PdfNameQuote(colorantName))
	f.AddTokenWithSlash("DeviceCMYK")
	f.AddObjectRef(d.functions[fn].obj)
	f.EndArray()
	dict := f.Steal()
	obj := d.store.add(fullObject{Dictionary: dict})
	id := SeparationId(len(d.separations))
	d.separations = append(d.separations, separationEntry{obj: obj, name: colorantName, fnID: fn})
	return id, nil
}
