package capypdf

import (
	"strconv"
	"strings"
	"testing"
)

func TestOutlineForest(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ch1 := d.AddOutline(OutlineItem{Title: "Chapter 1", Open: true}, OutlineRoot)
	d.AddOutline(OutlineItem{Title: "Section 1.1"}, ch1)
	d.AddOutline(OutlineItem{Title: "Chapter 2"}, OutlineRoot)

	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))

	if !strings.Contains(out, "/Type /Outlines") {
		t.Errorf("missing outline root")
	}
	if !strings.Contains(out, "/Count 3") {
		t.Errorf("outline root count wrong")
	}
	for _, title := range []string{"Chapter 1", "Section 1.1", "Chapter 2"} {
		hexed := pdfTextString(title)
		if !strings.Contains(out, "/Title "+hexed) {
			t.Errorf("missing outline title %q", title)
		}
	}
	if !strings.Contains(out, "/First") || !strings.Contains(out, "/Last") {
		t.Errorf("sibling chain incomplete")
	}
	if !strings.Contains(out, "/Outlines") {
		t.Errorf("catalog missing /Outlines")
	}
}

func TestEmbeddedFiles(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	if _, err := d.EmbedFile(EmbeddedFile{
		Name: "data.csv", Data: []byte("a,b\n1,2\n"), MimeType: "text/csv", Description: "raw data",
	}); err != nil {
		t.Fatal(err)
	}
	_, err := d.EmbedFile(EmbeddedFile{Name: "data.csv", Data: []byte("other")})
	wantCode(t, err, ErrDuplicateName)

	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/EmbeddedFiles") {
		t.Errorf("catalog missing /Names /EmbeddedFiles tree")
	}
	if !strings.Contains(out, "/AF [") {
		t.Errorf("catalog missing /AF array")
	}
	if !strings.Contains(out, "/Type /Filespec") {
		t.Errorf("filespec dictionary missing")
	}
	if !strings.Contains(out, "/Subtype /text#2Fcsv") {
		t.Errorf("mime subtype not name-escaped")
	}
	if !strings.Contains(out, "a,b\n1,2\n") {
		t.Errorf("embedded payload missing (uncompressed debug mode)")
	}
}

func TestOptionalContentAndSubnav(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ocg1 := d.AddOptionalContentGroup("Layer 1")
	ocg2 := d.AddOptionalContentGroup("Layer 2")

	subnavRoot, err := d.AddSubnav([]OptionalContentGroupId{ocg1, ocg2})
	if err != nil {
		t.Fatal(err)
	}

	ctx := d.NewPageContext()
	if err := ctx.BDCOCG(ocg1); err != nil {
		t.Fatal(err)
	}
	ctx.Re(0, 0, 5, 5)
	ctx.F()
	if err := ctx.EMC(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), &subnavRoot); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))

	if !strings.Contains(out, "/OCProperties") {
		t.Errorf("catalog missing /OCProperties")
	}
	if !strings.Contains(out, "/Type /OCG") {
		t.Errorf("ocg object missing")
	}
	if !strings.Contains(out, "/Type /NavNode") {
		t.Errorf("nav nodes missing")
	}
	if !strings.Contains(out, "/S /SetOCGState") {
		t.Errorf("ocg state actions missing")
	}
	if !strings.Contains(out, "/PresSteps "+strconv.Itoa(subnavRoot)+" 0 R") {
		t.Errorf("page missing /PresSteps")
	}
	ocName := "/oc" + strconv.Itoa(d.ocgs[ocg1].obj)
	if !strings.Contains(out, "/OC "+ocName+" BDC") {
		t.Errorf("content missing OCG marked-content open")
	}
	if !strings.Contains(out, "/Properties") {
		t.Errorf("resources missing /Properties")
	}
}

func TestSubnavValidation(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	_, err := d.AddSubnav(nil)
	wantCode(t, err, ErrZeroLengthArray)
	_, err = d.AddSubnav([]OptionalContentGroupId{5})
	wantCode(t, err, ErrUnusedOcg)
}

// TestStructureTree exercises the parent tree: one page with two marked
// regions must produce /ParentTreeNextKey 1 and a /Nums entry listing the
// items in MCID order.
func TestStructureTree(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{Lang: "en-US"})
	if _, err := d.AddRole("Chapter", "Sect"); err != nil {
		t.Fatal(err)
	}
	_, err := d.AddRole("Chapter", "Div")
	wantCode(t, err, ErrRoleAlreadyDefined)

	root := d.AddStructureItem(StructureType{Builtin: "Document"}, nil, StructureExtra{})
	para := d.AddStructureItem(StructureType{Builtin: "P"}, &root, StructureExtra{Lang: "en"})
	span := d.AddStructureItem(StructureType{Builtin: "Span"}, &root, StructureExtra{ActualText: "alt"})

	ctx := d.NewPageContext()
	if err := ctx.BDCStructure(para); err != nil {
		t.Fatal(err)
	}
	ctx.Re(0, 0, 5, 5)
	ctx.F()
	if err := ctx.EMC(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.BDCStructure(span); err != nil {
		t.Fatal(err)
	}
	ctx.Re(5, 5, 5, 5)
	ctx.F()
	if err := ctx.EMC(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))

	if !strings.Contains(out, "/Type /StructTreeRoot") {
		t.Errorf("missing struct tree root")
	}
	if !strings.Contains(out, "/ParentTreeNextKey 1") {
		t.Errorf("parent tree next key wrong")
	}
	paraObj := d.structureItems[para].obj
	spanObj := d.structureItems[span].obj
	wantNums := "[0 [" + strconv.Itoa(paraObj) + " 0 R " + strconv.Itoa(spanObj) + " 0 R ] ]"
	if !strings.Contains(out, "/Nums "+wantNums) {
		t.Errorf("parent tree nums wrong, want %q in:\n%s", wantNums, out)
	}
	if !strings.Contains(out, "/MarkInfo << /Marked true >>") {
		t.Errorf("missing mark info")
	}
	if !strings.Contains(out, "/RoleMap") || !strings.Contains(out, "/Chapter /Sect") {
		t.Errorf("role map missing")
	}
	if !strings.Contains(out, "/StructParents 0") {
		t.Errorf("page missing /StructParents")
	}
	if !strings.Contains(out, "/MCID 0") || !strings.Contains(out, "/MCID 1") {
		t.Errorf("marked-content ids missing")
	}
	if !strings.Contains(out, "/Type /MCR") {
		t.Errorf("leaf items should carry MCR references")
	}
	if !strings.Contains(out, "/Lang (en)") {
		t.Errorf("struct item language missing")
	}
	if !strings.Contains(out, "/Lang (en-US)") {
		t.Errorf("catalog language missing")
	}
}

func TestDocumentConstructionValidation(t *testing.T) {
	t.Setenv("CAPY_DEBUG_PDF", "1")

	_, err := New(DocumentProperties{OutputColorSpace: OutputCMYK})
	wantCode(t, err, ErrOutputProfileMissing)

	_, err = New(DocumentProperties{Subtype: SubtypePDFA2b})
	wantCode(t, err, ErrMissingIntentIdentifier)

	cmyk := make([]byte, 128)
	copy(cmyk[16:20], "CMYK")
	d, err := New(DocumentProperties{
		OutputColorSpace: OutputCMYK,
		CMYKProfile:      cmyk,
		OutputIntentICC:  cmyk,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.outputProfileObj == 0 {
		t.Errorf("output profile object not allocated")
	}
}

func TestInfoDictionary(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{Title: "Tëst", Author: "A. Author", Creator: "unit test"})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/Title "+pdfTextString("Tëst")) {
		t.Errorf("info title missing or not UTF-16BE quoted")
	}
	if !strings.Contains(out, "/Producer") {
		t.Errorf("info producer missing")
	}
	if !strings.Contains(out, "/CreationDate (D:") {
		t.Errorf("creation date missing")
	}
	if !strings.Contains(out, "/Info ") {
		t.Errorf("trailer missing /Info")
	}
	if !strings.Contains(out, "/ID [<") {
		t.Errorf("trailer missing /ID")
	}
}
