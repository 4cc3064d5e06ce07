// Package capypdf generates PDF 1.7/2.0 documents from a programmatic API:
// callers register resources (fonts, images, color spaces, patterns,
// annotations, structure items, ...) on a Document and issue drawing
// operators on per-page or per-XObject DrawContexts; Document.Write
// serializes the accumulated object graph to a single output file.
package capypdf

import (
	"os"

	"github.com/tinywasm/capypdf/diag"
	"github.com/tinywasm/capypdf/fontManager"
	"github.com/tinywasm/capypdf/internal/colorconv"
	"github.com/tinywasm/capypdf/internal/fontsubset"
)

// Document owns the object store and every resource vector. A DrawContext
// borrows it for the lifetime of one page/XObject recording, and Write
// finishes its deferred objects and serializes the final file.
type Document struct {
	props      DocumentProperties
	store      *objectStore
	writeAttempted bool

	infoObj       int
	pagesRootObj  int
	catalogObj    int

	fonts   []*fontEntry
	images  []*imageEntry
	iccProfiles []*iccEntry
	labColorSpaces []labEntry
	separations []separationEntry
	functions []functionEntry
	shadings  []shadingEntry
	patterns  []patternEntry
	graphicsStates []int
	formXObjects []formXObjectEntry
	transparencyGroups []int
	softMasks []int
	ocgs []ocgEntry
	annotations []annotationEntry
	structureItems []structItemEntry
	embeddedFiles []embeddedFileEntry
	formWidgets []formWidgetEntry
	roles       map[string]RoleId
	roleMapsTo  map[RoleId]string
	roleNames   map[RoleId]string
	outlineForest outlineForest

	pages      []pageEntry
	pageLabels []PageLabel
	defaultPageProps PageProperties
	structParentTree [][]StructureItemId

	widgetUsedOnPage     map[FormWidgetId]int
	annotationUsedOnPage map[AnnotationId]int
	structUsedOnPage     map[StructureItemId]int

	outputProfileObj int
	outputIntentObj  int
	structTreeRootObj int
}

type fontEntry struct {
	ttf       fontManager.TtfType
	subsetter *fontsubset.Subsetter
	dataObj   int
	descObj   int
	cmapObj   int
	fontObj   int
	cidObj    int
}

type imageEntry struct {
	obj       int
	width     int
	height    int
	colorSpaceObj int
	smaskObj  *int
}

type iccEntry struct {
	obj      int // the profile stream object
	arrayObj int // the [/ICCBased stream 0 R] colorspace array object
	data     []byte
	channels int
}

type labEntry struct {
	obj int
	lab LabColorSpaceParams
}

// LabColorSpaceParams is the [/Lab <</WhitePoint .. /Range ..>>] array's
// backing data.
type LabColorSpaceParams struct {
	WhitePoint [3]float64
	Range      [4]float64 // amin amax bmin bmax
}

type separationEntry struct {
	obj  int
	name string
	fnID FunctionId
}

type functionEntry struct {
	obj int
	fn  PdfFunction
}

type shadingEntry struct {
	obj int
	sh  PdfShading
}

type patternEntry struct {
	obj        int
	resourceObj int
}

type formXObjectEntry struct {
	obj int
}

type ocgEntry struct {
	obj  int
	name string
}

type annotationEntry struct {
	id  AnnotationId
	ann Annotation
	obj int
}

type structItemEntry struct {
	obj      int
	typeName string
	roleID   RoleId
	isRole   bool
	parent   *StructureItemId
	extra    StructureExtra
}

type embeddedFileEntry struct {
	obj      int
	fsObj    int
	name     string
}

type formWidgetEntry struct {
	obj     int
	widget  CheckboxWidget
}

type pageEntry struct {
	resourceObj int
	commandsObj int
	pageObj     int
	props       PageProperties
}

// New constructs a Document: it seeds the object store sentinel, the info
// dictionary, an output-profile object if the subtype/colorspace demands
// one, the root page-tree node, and (for PDF/X or PDF/A) the output-intent
// object. Setting CAPY_DEBUG_PDF in the environment disables stream
// compression and enables trace output so the emitted file stays
// human-readable.
func New(props DocumentProperties) (*Document, error) {
	if os.Getenv("CAPY_DEBUG_PDF") != "" {
		props.CompressStreams = false
		diag.Enabled = true
	} else if !props.CompressStreams {
		props.CompressStreams = true
	}

	d := &Document{
		props:                props,
		store:                newObjectStore(),
		roles:                make(map[string]RoleId),
		widgetUsedOnPage:     make(map[FormWidgetId]int),
		annotationUsedOnPage: make(map[AnnotationId]int),
		structUsedOnPage:     make(map[StructureItemId]int),
		defaultPageProps:     props.DefaultPageProps,
	}

	d.infoObj = d.store.add(fullObject{}) // finalized lazily in createCatalog

	if props.OutputColorSpace == OutputCMYK && len(props.CMYKProfile) == 0 {
		return nil, newErr(ErrOutputProfileMissing, "document output colorspace is CMYK but no CMYK profile was supplied")
	}

	if len(props.OutputIntentICC) > 0 {
		n, err := colorconv.GetNumChannels(props.OutputIntentICC)
		if err != nil {
			n = 0
		}
		d.outputProfileObj = d.addICCStreamObject(props.OutputIntentICC, n)
	}

	d.pagesRootObj = d.store.add(delayedPages{})
	d.catalogObj = d.store.add(fullObject{}) // finalized lazily in createCatalog

	if props.Subtype.isX() || props.Subtype.isA() {
		if d.outputProfileObj == 0 {
			return nil, newErr(ErrMissingIntentIdentifier, "PDF/X or PDF/A subtype requires an output intent ICC profile")
		}
		d.outputIntentObj = d.store.add(fullObject{}) // filled in createCatalog
	}

	return d, nil
}

// addICCStreamObject appends the profile stream plus its [/ICCBased n 0 R]
// colorspace array, deduplicated by profile-byte equality, and returns the
// stream's object number.
func (d *Document) addICCStreamObject(data []byte, channels int) int {
	for _, e := range d.iccProfiles {
		if string(e.data) == string(data) {
			return e.obj
		}
	}
	f := newDictFormatter()
	f.AddTokenPair("/N", channels)
	f.AddTokenPair("/Alternate", name(iccAlternateName(channels)))
	obj := d.store.add(deflateObject{OpenDictionary: f.Bytes(), Stream: data, LeaveUncompressedDebug: !d.props.CompressStreams})
	arrayObj := d.store.add(fullObject{Dictionary: []byte(formatRefArrayTaggedICC(obj))})
	d.iccProfiles = append(d.iccProfiles, &iccEntry{obj: obj, arrayObj: arrayObj, data: data, channels: channels})
	return obj
}

func iccAlternateName(channels int) string {
	switch channels {
	case 1:
		return "DeviceGray"
	case 4:
		return "DeviceCMYK"
	default:
		return "DeviceRGB"
	}
}

// NPages reports how many pages have been added so far.
func (d *Document) NPages() int { return len(d.pages) }
