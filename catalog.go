package capypdf

import (
	"sort"
	"time"

	"github.com/tinywasm/capypdf/internal/objfmt"
)

// createCatalog finalizes every object Document.New reserved a placeholder
// for (the info dictionary, the catalog itself, and the output-intent
// object) and builds whatever ancillary structure the document actually
// accumulated: outlines, page labels, the structure tree root, the names
// tree, optional content configuration, the AcroForm, and XMP metadata.
// It runs once, from Write, before the output file is opened and the
// header written.
func (d *Document) createCatalog() error {
	d.finalizeInfo()

	outlinesObj, _ := d.buildOutlines()
	structTreeObj := d.buildStructTreeRoot()
	acroFormObj := d.buildAcroForm()
	metadataObj := d.buildMetadataObj()
	outputIntentsInline := d.finalizeOutputIntent()
	namesInline, afInline := d.buildNamesAndAF()
	ocPropsInline := d.buildOCProperties()
	pageLabelsInline := d.buildPageLabelsInline()

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Catalog"))
	f.AddObjectRefPair("/Pages", d.pagesRootObj)
	if d.props.Lang != "" {
		f.AddTokenPair("/Lang", pdfAsciiString(d.props.Lang))
	}
	if outlinesObj != 0 {
		f.AddObjectRefPair("/Outlines", outlinesObj)
	}
	if pageLabelsInline != "" {
		f.AddRawLine("/PageLabels", pageLabelsInline)
	}
	if structTreeObj != 0 {
		f.AddObjectRefPair("/StructTreeRoot", structTreeObj)
		f.AddRawLine("/MarkInfo", "<< /Marked true >>")
	}
	if namesInline != "" {
		f.AddRawLine("/Names", namesInline)
	}
	if afInline != "" {
		f.AddRawLine("/AF", afInline)
	}
	if ocPropsInline != "" {
		f.AddRawLine("/OCProperties", ocPropsInline)
	}
	if acroFormObj != 0 {
		f.AddObjectRefPair("/AcroForm", acroFormObj)
	}
	if outputIntentsInline != "" {
		f.AddRawLine("/OutputIntents", outputIntentsInline)
	}
	if metadataObj != 0 {
		f.AddObjectRefPair("/Metadata", metadataObj)
	}

	d.store.set(d.catalogObj, fullObject{Dictionary: closedDict(f)})
	return nil
}

func (d *Document) finalizeInfo() {
	f := newDictFormatter()
	if d.props.Title != "" {
		f.AddTokenPair("/Title", pdfTextString(d.props.Title))
	}
	if d.props.Author != "" {
		f.AddTokenPair("/Author", pdfTextString(d.props.Author))
	}
	if d.props.Creator != "" {
		f.AddTokenPair("/Creator", pdfTextString(d.props.Creator))
	}
	f.AddTokenPair("/Producer", pdfTextString("capypdf"))
	f.AddRawLine("/CreationDate", objfmt.CurrentDateString(time.Now()))
	d.store.set(d.infoObj, fullObject{Dictionary: closedDict(f)})
}

// buildOutlines materializes the bookmark forest into /Outlines dictionary
// objects, wiring /First /Last /Prev /Next /Parent /Count the way a reader
// needs to walk the tree. Siblings keep insertion order.
func (d *Document) buildOutlines() (obj int, grandTotal int) {
	if len(d.outlineForest.items) == 0 {
		return 0, 0
	}

	objNums := map[OutlineId]int{}
	var allocate func(id OutlineId)
	allocate = func(id OutlineId) {
		objNums[id] = d.store.add(fullObject{})
		for _, c := range d.outlineForest.children[id] {
			allocate(c)
		}
	}
	for _, c := range d.outlineForest.children[OutlineRoot] {
		allocate(c)
	}
	rootObj := d.store.add(fullObject{})

	var writeNode func(id OutlineId, parentObj, prevObj, nextObj int) int
	writeNode = func(id OutlineId, parentObj, prevObj, nextObj int) int {
		item := d.outlineForest.items[id]
		kids := d.outlineForest.children[id]

		f := newDictFormatter()
		f.AddTokenPair("/Title", pdfTextString(item.Title))
		f.AddObjectRefPair("/Parent", parentObj)
		if prevObj != 0 {
			f.AddObjectRefPair("/Prev", prevObj)
		}
		if nextObj != 0 {
			f.AddObjectRefPair("/Next", nextObj)
		}
		if item.Dest != "" {
			f.AddTokenPair("/Dest", pdfAsciiString(item.Dest))
		}

		total := 0
		if len(kids) > 0 {
			f.AddObjectRefPair("/First", objNums[kids[0]])
			f.AddObjectRefPair("/Last", objNums[kids[len(kids)-1]])
			for i, k := range kids {
				var p, nx int
				if i > 0 {
					p = objNums[kids[i-1]]
				}
				if i < len(kids)-1 {
					nx = objNums[kids[i+1]]
				}
				total += 1 + writeNode(k, objNums[id], p, nx)
			}
			count := total
			if !item.Open {
				count = -count
			}
			f.AddTokenPair("/Count", count)
		}

		d.store.set(objNums[id], fullObject{Dictionary: closedDict(f)})
		return total
	}

	topKids := d.outlineForest.children[OutlineRoot]
	for i, k := range topKids {
		var p, nx int
		if i > 0 {
			p = objNums[topKids[i-1]]
		}
		if i < len(topKids)-1 {
			nx = objNums[topKids[i+1]]
		}
		grandTotal += 1 + writeNode(k, rootObj, p, nx)
	}

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Outlines"))
	if len(topKids) > 0 {
		f.AddObjectRefPair("/First", objNums[topKids[0]])
		f.AddObjectRefPair("/Last", objNums[topKids[len(topKids)-1]])
	}
	f.AddTokenPair("/Count", grandTotal)
	d.store.set(rootObj, fullObject{Dictionary: closedDict(f)})

	return rootObj, grandTotal
}

// buildStructTreeRoot emits /StructTreeRoot plus its /ParentTree number
// tree: /ParentTreeNextKey equals the number of pages that carry marked
// content, and each key's array lists that page's struct items in MCID
// order. Individual /StructElem objects stay deferred; the writer fills
// their /K at write time once every page's usage is final.
func (d *Document) buildStructTreeRoot() int {
	if len(d.structureItems) == 0 {
		return 0
	}

	obj := d.store.add(fullObject{})
	d.structTreeRootObj = obj

	var roots []int
	for _, e := range d.structureItems {
		if e.parent == nil {
			roots = append(roots, e.obj)
		}
	}

	f := newDictFormatter()
	f.AddTokenPair("/Type", name("StructTreeRoot"))
	f.AddTokenPair("/K", formatRefArray(roots))

	numsF := objfmtArr()
	numsF.BeginArray(0)
	for sp, sids := range d.structParentTree {
		numsF.AddToken(sp)
		refs := make([]int, len(sids))
		for i, sid := range sids {
			refs[i] = d.structureItems[sid].obj
		}
		numsF.AddRaw(formatRefArray(refs))
	}
	numsF.EndArray()
	parentTree := newDictFormatter()
	parentTree.AddTokenPair("/Nums", string(numsF.Steal()))
	f.AddRawLine("/ParentTree", string(closedDict(parentTree)))
	f.AddTokenPair("/ParentTreeNextKey", len(d.structParentTree))

	if len(d.roleMapsTo) > 0 {
		ids := make([]RoleId, 0, len(d.roleMapsTo))
		for rid := range d.roleMapsTo {
			ids = append(ids, rid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		rm := newDictFormatter()
		for _, rid := range ids {
			rm.AddTokenPair(name(d.roleNames[rid]), name(d.roleMapsTo[rid]))
		}
		f.AddRawLine("/RoleMap", string(closedDict(rm)))
	}

	d.store.set(obj, fullObject{Dictionary: closedDict(f)})
	return obj
}

func (d *Document) buildAcroForm() int {
	if len(d.formWidgets) == 0 {
		return 0
	}
	refs := make([]int, len(d.formWidgets))
	for i, w := range d.formWidgets {
		refs[i] = w.obj
	}
	f := newDictFormatter()
	f.AddTokenPair("/Fields", formatRefArray(refs))
	f.AddRawLine("/NeedAppearances", "false")
	return d.store.add(fullObject{Dictionary: closedDict(f)})
}

func (d *Document) buildNamesAndAF() (namesInline, afInline string) {
	if len(d.embeddedFiles) == 0 {
		return "", ""
	}

	arr := objfmtArr()
	arr.BeginArray(0)
	for _, ef := range d.embeddedFiles {
		arr.AddRaw(pdfAsciiString(ef.name))
		arr.AddObjectRef(ef.fsObj)
	}
	arr.EndArray()

	efTree := newDictFormatter()
	efTree.AddTokenPair("/Names", string(arr.Steal()))
	names := newDictFormatter()
	names.AddRawLine("/EmbeddedFiles", string(closedDict(efTree)))
	namesInline = string(closedDict(names))

	afRefs := make([]int, len(d.embeddedFiles))
	for i, ef := range d.embeddedFiles {
		afRefs[i] = ef.fsObj
	}
	afInline = formatRefArray(afRefs)
	return namesInline, afInline
}

func (d *Document) buildOCProperties() string {
	if len(d.ocgs) == 0 {
		return ""
	}
	refs := make([]int, len(d.ocgs))
	for i, o := range d.ocgs {
		refs[i] = o.obj
	}
	f := newDictFormatter()
	f.AddTokenPair("/OCGs", formatRefArray(refs))
	def := newDictFormatter()
	def.AddTokenPair("/ON", formatRefArray(refs))
	f.AddRawLine("/D", string(closedDict(def)))
	return string(closedDict(f))
}

func (d *Document) buildPageLabelsInline() string {
	if len(d.pageLabels) == 0 {
		return ""
	}
	arr := objfmtArr()
	arr.BeginArray(0)
	for _, pl := range d.pageLabels {
		arr.AddToken(pl.StartPage)
		sub := newDictFormatter()
		if pl.Style != "" {
			sub.AddTokenPair("/S", name(pl.Style))
		}
		if pl.Prefix != "" {
			sub.AddTokenPair("/P", pdfTextString(pl.Prefix))
		}
		if pl.StartNum != nil {
			sub.AddTokenPair("/St", *pl.StartNum)
		}
		arr.AddRaw(string(closedDict(sub)))
	}
	arr.EndArray()
	out := newDictFormatter()
	out.AddTokenPair("/Nums", string(arr.Steal()))
	return string(closedDict(out))
}

// finalizeOutputIntent fills the placeholder Document.New reserved for
// PDF/X and PDF/A subtypes and returns the /OutputIntents array token.
// The intent subtype key is /GTS_PDFX for PDF/X and /GTS_PDFA1 for PDF/A.
func (d *Document) finalizeOutputIntent() string {
	if d.outputIntentObj == 0 {
		return ""
	}
	subtypeKey := "/GTS_PDFA1"
	if d.props.Subtype.isX() {
		subtypeKey = "/GTS_PDFX"
	}
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("OutputIntent"))
	f.AddTokenPair("/S", subtypeKey)
	if d.props.IntentCondition != "" {
		f.AddTokenPair("/OutputConditionIdentifier", pdfAsciiString(d.props.IntentCondition))
	} else {
		f.AddTokenPair("/OutputConditionIdentifier", pdfAsciiString("Custom"))
	}
	if d.outputProfileObj != 0 {
		f.AddObjectRefPair("/DestOutputProfile", d.outputProfileObj)
	}
	d.store.set(d.outputIntentObj, fullObject{Dictionary: closedDict(f)})
	return formatRefArray([]int{d.outputIntentObj})
}

// buildMetadataObj emits an XMP packet for profiles that carry document
// metadata that way instead of via /Info; PDF/A-4f uses the PDF 2.0
// header and keeps /Info out of the trailer entirely.
func (d *Document) buildMetadataObj() int {
	if d.props.Subtype != SubtypePDFA4f {
		return 0
	}
	xmp := "<?xpacket begin=\"\xef\xbb\xbf\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n" +
		"<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n" +
		"<rdf:RDF xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\">\n" +
		"<rdf:Description rdf:about=\"\" xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n" +
		"<dc:title><rdf:Alt><rdf:li xml:lang=\"x-default\">" + xmlEscape(d.props.Title) + "</rdf:li></rdf:Alt></dc:title>\n" +
		"</rdf:Description>\n" +
		"</rdf:RDF>\n" +
		"</x:xmpmeta>\n" +
		"<?xpacket end=\"w\"?>"
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("Metadata"))
	f.AddTokenPair("/Subtype", name("XML"))
	f.AddTokenPair("/Length", len(xmp))
	return d.store.add(fullObject{Dictionary: closedDict(f), Stream: []byte(xmp), HasStream: true})
}

func xmlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
