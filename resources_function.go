package capypdf

// PdfFunctionKind tags PdfFunction's variant. PDF defines function types
// 0 (sampled), 2 (exponential), 3 (stitching) and 4 (PostScript
// calculator); this codec exposes the three callers actually construct
// programmatically (2/3/4).
type PdfFunctionKind int

const (
	FunctionExponential PdfFunctionKind = iota
	FunctionStitching
	FunctionPostScript
)

// PdfFunction is the tagged union behind AddFunction.
type PdfFunction struct {
	Kind   PdfFunctionKind
	Domain []float64
	Range  []float64

	// Exponential (Type 2).
	C0, C1 []float64
	N      float64

	// Stitching (Type 3).
	Functions []FunctionId
	Bounds    []float64
	Encode    []float64

	// PostScript calculator (Type 4).
	Code string
}

// IsType4 reports whether fn is a PostScript-calculator function, the
// kind CreateSeparation requires its tint-transform function to be.
func (fn PdfFunction) IsType4() bool { return fn.Kind == FunctionPostScript }

// AddFunction registers fn and returns its id.
func (d *Document) AddFunction(fn PdfFunction) (FunctionId, error) {
	if len(fn.Domain) == 0 {
		return 0, newErr(ErrEmptyFunctionList, "function domain must not be empty")
	}
	f := newDictFormatter()
	f.AddTokenPair("/Domain", formatFloatArray(fn.Domain))
	if len(fn.Range) > 0 {
		f.AddTokenPair("/Range", formatFloatArray(fn.Range))
	}
	switch fn.Kind {
	case FunctionExponential:
		f.AddTokenPair("/FunctionType", 2)
		f.AddTokenPair("/C0", formatFloatArray(fn.C0))
		f.AddTokenPair("/C1", formatFloatArray(fn.C1))
		f.AddTokenPair("/N", fn.N)
		obj := d.store.add(fullObject{Dictionary: closedDict(f)})
		id := FunctionId(len(d.functions))
		d.functions = append(d.functions, functionEntry{obj: obj, fn: fn})
		return id, nil
	case FunctionStitching:
		if len(fn.Functions) == 0 {
			return 0, newErr(ErrEmptyFunctionList, "stitching function needs at least one sub-function")
		}
		f.AddTokenPair("/FunctionType", 3)
		refs := make([]int, len(fn.Functions))
		for i, sub := range fn.Functions {
			if int(sub) >= len(d.functions) {
				return 0, newErr(ErrIndexOutOfBounds, "stitching sub-function id out of range")
			}
			refs[i] = d.functions[sub].obj
		}
		f.AddTokenPair("/Functions", formatRefArray(refs))
		f.AddTokenPair("/Bounds", formatFloatArray(fn.Bounds))
		f.AddTokenPair("/Encode", formatFloatArray(fn.Encode))
		obj := d.store.add(fullObject{Dictionary: closedDict(f)})
		id := FunctionId(len(d.functions))
		d.functions = append(d.functions, functionEntry{obj: obj, fn: fn})
		return id, nil
	case FunctionPostScript:
		f.AddTokenPair("/FunctionType", 4)
		obj := d.store.add(deflateObject{
			OpenDictionary:         f.Bytes(),
			Stream:                 []byte("{ " + fn.Code + " }"),
			LeaveUncompressedDebug: !d.props.CompressStreams,
		})
		id := FunctionId(len(d.functions))
		d.functions = append(d.functions, functionEntry{obj: obj, fn: fn})
		return id, nil
	default:
		return 0, newErr(ErrIncorrectFunctionType, "unknown function kind")
	}
}
