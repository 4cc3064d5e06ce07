package capypdf

import (
	"strings"
	"testing"
)

func TestAnnotationReuseAcrossPages(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	rect := PdfRectangle{X2: 10, Y2: 10}
	aid, err := d.AddAnnotation(Annotation{Kind: AnnotationText, Rect: &rect, Contents: "note"})
	if err != nil {
		t.Fatal(err)
	}

	ctx := d.NewPageContext()
	if err := ctx.AttachAnnotation(aid); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}

	ctx2 := d.NewPageContext()
	if err := ctx2.AttachAnnotation(aid); err != nil {
		t.Fatal(err)
	}
	_, err = d.AddPage(ctx2, mediaBox(0, 0, 100, 100), nil)
	wantCode(t, err, ErrAnnotationReuse)

	// The first page survives and the second was never added.
	if d.NPages() != 1 {
		t.Fatalf("NPages = %d, want 1", d.NPages())
	}
	out := string(writeDoc(t, d))
	if got := strings.Count(out, "/Annots"); got != 1 {
		t.Errorf("/Annots appears %d times, want 1", got)
	}
	if !strings.Contains(out, "/Subtype /Text") {
		t.Errorf("text annotation missing from output")
	}
	if !strings.Contains(out, "/P ") {
		t.Errorf("annotation missing /P back-reference")
	}
}

func TestWidgetReuseAcrossPages(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})

	on := d.NewFormXObjectContext(PdfRectangle{X2: 10, Y2: 10})
	on.Re(0, 0, 10, 10)
	on.F()
	onID, err := d.AddFormXObject(on)
	if err != nil {
		t.Fatal(err)
	}
	off := d.NewFormXObjectContext(PdfRectangle{X2: 10, Y2: 10})
	off.N()
	offID, err := d.AddFormXObject(off)
	if err != nil {
		t.Fatal(err)
	}
	wid, err := d.AddCheckboxWidget(CheckboxWidget{
		Rect: PdfRectangle{X2: 10, Y2: 10}, OnXobj: onID, OffXobj: offID, PartialName: "agree",
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := d.NewPageContext()
	if err := ctx.AttachWidget(wid); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}

	ctx2 := d.NewPageContext()
	if err := ctx2.AttachWidget(wid); err != nil {
		t.Fatal(err)
	}
	_, err = d.AddPage(ctx2, mediaBox(0, 0, 100, 100), nil)
	wantCode(t, err, ErrAnnotationReuse)

	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/FT /Btn") {
		t.Errorf("checkbox widget missing /FT /Btn")
	}
	if !strings.Contains(out, "/AcroForm") {
		t.Errorf("catalog missing /AcroForm")
	}
	if !strings.Contains(out, "/AS /Off") {
		t.Errorf("widget missing appearance state")
	}
}

func TestStructureReuseAcrossPages(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	sid := d.AddStructureItem(StructureType{Builtin: "P"}, nil, StructureExtra{})

	ctx := d.NewPageContext()
	if err := ctx.BDCStructure(sid); err != nil {
		t.Fatal(err)
	}
	if err := ctx.EMC(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 100, 100), nil); err != nil {
		t.Fatal(err)
	}

	ctx2 := d.NewPageContext()
	if err := ctx2.BDCStructure(sid); err != nil {
		t.Fatal(err)
	}
	if err := ctx2.EMC(); err != nil {
		t.Fatal(err)
	}
	_, err := d.AddPage(ctx2, mediaBox(0, 0, 100, 100), nil)
	wantCode(t, err, ErrStructureReuse)
}

func TestMissingMediaBox(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ctx := d.NewPageContext()
	_, err := d.AddPage(ctx, PageProperties{}, nil)
	wantCode(t, err, ErrMissingMediabox)
}

func TestDefaultPagePropsMerge(t *testing.T) {
	defaults := mediaBox(0, 0, 595, 842)
	d := newTestDoc(t, DocumentProperties{DefaultPageProps: defaults})

	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	crop := PdfRectangle{X2: 500, Y2: 800}
	if _, err := d.AddPage(ctx, PageProperties{CropBox: &crop}, nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/MediaBox [0 0 595 842 ]") {
		t.Errorf("default MediaBox not inherited")
	}
	if !strings.Contains(out, "/CropBox [0 0 500 800 ]") {
		t.Errorf("per-page CropBox not applied")
	}
}

func TestPageLabelOrdering(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	if err := d.AddPageLabeling(PageLabel{StartPage: 0, Style: "r"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddPageLabeling(PageLabel{StartPage: 4, Style: "D", Prefix: "A-"}); err != nil {
		t.Fatal(err)
	}
	wantCode(t, d.AddPageLabeling(PageLabel{StartPage: 2}), ErrNonSequentialPageNumber)

	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/PageLabels") {
		t.Errorf("catalog missing /PageLabels")
	}
	if !strings.Contains(out, "/S /r") || !strings.Contains(out, "/S /D") {
		t.Errorf("page label styles missing:\n%s", out)
	}
}

func TestPageTransition(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	ctx := d.NewPageContext()
	ctx.Re(0, 0, 1, 1)
	ctx.F()
	if err := ctx.SetTransition(Transition{Style: "Wipe", Duration: 1.5}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/Trans") || !strings.Contains(out, "/S /Wipe") {
		t.Errorf("page transition missing")
	}
}

func TestPagesAppearInOrder(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	for i := 0; i < 3; i++ {
		ctx := d.NewPageContext()
		ctx.Re(float64(i), 0, 1, 1)
		ctx.F()
		if _, err := d.AddPage(ctx, mediaBox(0, 0, 10, 10), nil); err != nil {
			t.Fatal(err)
		}
	}
	out := string(writeDoc(t, d))
	if !strings.Contains(out, "/Count 3") {
		t.Errorf("page tree missing /Count 3")
	}
	kids := []int{d.pages[0].pageObj, d.pages[1].pageObj, d.pages[2].pageObj}
	want := formatRefArray(kids)
	if !strings.Contains(out, "/Kids "+want) {
		t.Errorf("kids array not in insertion order, want %q", want)
	}
}
