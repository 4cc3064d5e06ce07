package capypdf

import (
	"bytes"
	"encoding/binary"
)

// ShadingType mirrors the PDF /ShadingType integer directly: 2=axial,
// 3=radial, 4=free-form Gouraud, 6=Coons patch mesh.
type ShadingType int

const (
	ShadingAxial   ShadingType = 2
	ShadingRadial  ShadingType = 3
	ShadingGouraud ShadingType = 4
	ShadingCoons   ShadingType = 6
)

// ShadingColorSpace names the base color space a shading's samples are
// expressed in; NumChannels is used to size the per-vertex/per-corner
// color samples for types 4 and 6.
type ShadingColorSpace struct {
	Name        string // "DeviceRGB", "DeviceGray", "DeviceCMYK", or an indirect /CSpaceN token
	NumChannels int
}

// GouraudVertex is one vertex of a Type 4 free-form Gouraud shading.
type GouraudVertex struct {
	Flag  byte // 0, 1, or 2 per PDF spec edge-flag semantics
	X, Y  float64
	Color []float64
}

// CoonsPatch is one full patch (flag 0) of a Type 6 shading: 12 control
// points and 4 corner colors. Continuation patches (flag 1-3, 8 points +
// 2 colors) are part of the wire format but are not emitted by this codec
// yet; AddShading rejects them.
type CoonsPatch struct {
	Flag   byte
	Points [12][2]float64
	Colors [4][]float64
}

// PdfShading is the tagged union behind AddShading.
type PdfShading struct {
	Kind       ShadingType
	ColorSpace ShadingColorSpace
	Domain     [2]float64
	Coords     []float64 // axial: [x0 y0 x1 y1]; radial: [x0 y0 r0 x1 y1 r1]
	Function   FunctionId
	Extend     [2]bool

	BBox *PdfRectangle // vertex coordinate/color sample range for 4/6

	Vertices []GouraudVertex // Type 4
	Patches  []CoonsPatch    // Type 6
}

// AddShading registers sh and returns its id.
func (d *Document) AddShading(sh PdfShading) (ShadingId, error) {
	switch sh.Kind {
	case ShadingAxial, ShadingRadial:
		return d.addFunctionShading(sh)
	case ShadingGouraud:
		return d.addGouraudShading(sh)
	case ShadingCoons:
		return d.addCoonsShading(sh)
	default:
		return 0, newErr(ErrIncorrectShadingType, "unsupported shading type")
	}
}

func (d *Document) addFunctionShading(sh PdfShading) (ShadingId, error) {
	if int(sh.Function) >= len(d.functions) {
		return 0, newErr(ErrIndexOutOfBounds, "shading function id out of range")
	}
	f := newDictFormatter()
	f.AddTokenPair("/ShadingType", int(sh.Kind))
	f.AddTokenPair("/ColorSpace", name(sh.ColorSpace.Name))
	f.AddTokenPair("/Coords", formatFloatArray(sh.Coords))
	f.AddObjectRefPair("/Function", d.functions[sh.Function].obj)
	f.AddTokenPair("/Extend", formatBoolArray(sh.Extend[:]))
	if sh.Domain != [2]float64{} {
		f.AddTokenPair("/Domain", formatFloatArray(sh.Domain[:]))
	}
	obj := d.store.add(fullObject{Dictionary: closedDict(f)})
	id := ShadingId(len(d.shadings))
	d.shadings = append(d.shadings, shadingEntry{obj: obj, sh: sh})
	return id, nil
}

// addGouraudShading emits a Type 4 shading stream: for each vertex, one
// flag byte, then x/y scaled to the declared bbox across the full uint32
// range, then one uint16 per color channel.
func (d *Document) addGouraudShading(sh PdfShading) (ShadingId, error) {
	if sh.BBox == nil {
		return 0, newErr(ErrMissingMediabox, "gouraud shading requires a coordinate bbox")
	}
	var stream bytes.Buffer
	for _, v := range sh.Vertices {
		stream.WriteByte(v.Flag)
		binary.Write(&stream, binary.BigEndian, scaleToU32(v.X, sh.BBox.X1, sh.BBox.X2))
		binary.Write(&stream, binary.BigEndian, scaleToU32(v.Y, sh.BBox.Y1, sh.BBox.Y2))
		for _, c := range v.Color {
			binary.Write(&stream, binary.BigEndian, scaleToU16(c, 0, 1))
		}
	}
	f := newDictFormatter()
	f.AddTokenPair("/ShadingType", 4)
	f.AddTokenPair("/ColorSpace", name(sh.ColorSpace.Name))
	f.AddTokenPair("/BitsPerCoordinate", 32)
	f.AddTokenPair("/BitsPerComponent", 16)
	f.AddTokenPair("/BitsPerFlag", 8)
	f.AddTokenPair("/Decode", formatFloatArray(append([]float64{sh.BBox.X1, sh.BBox.X2, sh.BBox.Y1, sh.BBox.Y2}, zeroOneRange(sh.ColorSpace.NumChannels)...)))
	obj := d.store.add(deflateObject{OpenDictionary: f.Bytes(), Stream: stream.Bytes(), LeaveUncompressedDebug: !d.props.CompressStreams})
	id := ShadingId(len(d.shadings))
	d.shadings = append(d.shadings, shadingEntry{obj: obj, sh: sh})
	return id, nil
}

// addCoonsShading emits a Type 6 shading stream. Only full patches
// (flag 0) are supported.
func (d *Document) addCoonsShading(sh PdfShading) (ShadingId, error) {
	if sh.BBox == nil {
		return 0, newErr(ErrMissingMediabox, "coons shading requires a coordinate bbox")
	}
	var stream bytes.Buffer
	for _, p := range sh.Patches {
		if p.Flag != 0 {
			return 0, newErr(ErrUnreachable, "continuation coons patches are not yet emitted")
		}
		stream.WriteByte(0)
		for _, pt := range p.Points {
			binary.Write(&stream, binary.BigEndian, scaleToU32(pt[0], sh.BBox.X1, sh.BBox.X2))
			binary.Write(&stream, binary.BigEndian, scaleToU32(pt[1], sh.BBox.Y1, sh.BBox.Y2))
		}
		for _, c := range p.Colors {
			for _, ch := range c {
				binary.Write(&stream, binary.BigEndian, scaleToU16(ch, 0, 1))
			}
		}
	}
	f := newDictFormatter()
	f.AddTokenPair("/ShadingType", 6)
	f.AddTokenPair("/ColorSpace", name(sh.ColorSpace.Name))
	f.AddTokenPair("/BitsPerCoordinate", 32)
	f.AddTokenPair("/BitsPerComponent", 16)
	f.AddTokenPair("/BitsPerFlag", 8)
	f.AddTokenPair("/Decode", formatFloatArray(append([]float64{sh.BBox.X1, sh.BBox.X2, sh.BBox.Y1, sh.BBox.Y2}, zeroOneRange(sh.ColorSpace.NumChannels)...)))
	obj := d.store.add(deflateObject{OpenDictionary: f.Bytes(), Stream: stream.Bytes(), LeaveUncompressedDebug: !d.props.CompressStreams})
	id := ShadingId(len(d.shadings))
	d.shadings = append(d.shadings, shadingEntry{obj: obj, sh: sh})
	return id, nil
}

func zeroOneRange(channels int) []float64 {
	out := make([]float64, 0, channels*2)
	for i := 0; i < channels; i++ {
		out = append(out, 0, 1)
	}
	return out
}

func scaleToU32(v, lo, hi float64) uint32 {
	if hi == lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint32(t * float64(^uint32(0)))
}

func scaleToU16(v, lo, hi float64) uint16 {
	if hi == lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint16(t * float64(^uint16(0)))
}

func formatBoolArray(vals []bool) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += " "
		}
		if v {
			out += "true"
		} else {
			out += "false"
		}
	}
	return out + "]"
}
