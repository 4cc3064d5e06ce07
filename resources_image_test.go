package capypdf

import (
	"strconv"
	"strings"
	"testing"
)

func rgbProfile() []byte {
	p := make([]byte, 128)
	copy(p[16:20], "RGB ")
	return p
}

func grayPixels(n int) []byte { return make([]byte, n) }

// TestIccImageWithAlpha covers profile dedup, the indirect /ColorSpace
// reference to the [/ICCBased ...] array, and the /SMask split for an
// embedded alpha channel.
func TestIccImageWithAlpha(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})

	profile := rgbProfile()
	pre := d.AddICCProfile(profile, 3)

	img := RawPixelImage{
		Width: 2, Height: 2, ColorChannels: 3, BitsPerComponent: 8,
		Pixels:     make([]byte, 2*2*3),
		ICCProfile: profile,
		Alpha:      grayPixels(4),
	}
	id, err := d.AddImage(img, ImageProps{})
	if err != nil {
		t.Fatal(err)
	}

	if len(d.iccProfiles) != 1 {
		t.Fatalf("profile not deduplicated, %d entries", len(d.iccProfiles))
	}
	if got := d.AddICCProfile(profile, 3); got != pre {
		t.Errorf("dedup returned a new id %d, want %d", got, pre)
	}

	entry := d.images[id]
	if entry.smaskObj == nil {
		t.Fatalf("alpha channel did not produce an /SMask object")
	}

	imgDict := string(d.store.get(entry.obj).(deflateObject).OpenDictionary)
	arrayObj := d.iccProfiles[0].arrayObj
	if !strings.Contains(imgDict, "/ColorSpace "+strconv.Itoa(arrayObj)+" 0 R") {
		t.Errorf("image colorspace is not an indirect ICC array ref: %q", imgDict)
	}
	if !strings.Contains(imgDict, "/SMask "+strconv.Itoa(*entry.smaskObj)+" 0 R") {
		t.Errorf("image dict missing /SMask ref: %q", imgDict)
	}

	smaskDict := string(d.store.get(*entry.smaskObj).(deflateObject).OpenDictionary)
	if !strings.Contains(smaskDict, "/ColorSpace /DeviceGray") {
		t.Errorf("soft mask colorspace wrong: %q", smaskDict)
	}

	arrDict := string(d.store.get(arrayObj).(fullObject).Dictionary)
	want := "[/ICCBased " + strconv.Itoa(d.iccProfiles[0].obj) + " 0 R]"
	if arrDict != want {
		t.Errorf("colorspace array = %q, want %q", arrDict, want)
	}
	streamDict := string(d.store.get(d.iccProfiles[0].obj).(deflateObject).OpenDictionary)
	if !strings.Contains(streamDict, "/N 3") {
		t.Errorf("profile stream missing /N 3: %q", streamDict)
	}
}

func TestImageValidation(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	_, err := d.AddImage(RawPixelImage{Width: 0, Height: 5}, ImageProps{})
	wantCode(t, err, ErrInvalidImageSize)

	mask, err := d.AddMaskImage(RawPixelImage{Width: 2, Height: 2, BitsPerComponent: 8, Pixels: grayPixels(4)})
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.AddImage(RawPixelImage{
		Width: 2, Height: 2, ColorChannels: 3, Pixels: make([]byte, 12),
		Alpha: grayPixels(4),
	}, ImageProps{ExplicitMask: &mask})
	wantCode(t, err, ErrMaskAndAlpha)
}

func TestEmbedJpg(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	id, err := d.EmbedJpg(JpegImage{Width: 4, Height: 4, ColorChannels: 3, Data: []byte{0xFF, 0xD8, 0xFF}}, ImageProps{})
	if err != nil {
		t.Fatal(err)
	}
	cell := d.store.get(d.images[id].obj).(fullObject)
	dict := string(cell.Dictionary)
	if !strings.Contains(dict, "/Filter /DCTDecode") {
		t.Errorf("jpeg missing DCTDecode filter: %q", dict)
	}
	if !strings.Contains(dict, "/ColorSpace /DeviceRGB") {
		t.Errorf("jpeg colorspace wrong: %q", dict)
	}
	if !cell.HasStream || len(cell.Stream) != 3 {
		t.Errorf("jpeg bytes not embedded verbatim")
	}
}

func TestImageOnPage(t *testing.T) {
	d := newTestDoc(t, DocumentProperties{})
	id, err := d.AddImage(RawPixelImage{
		Width: 1, Height: 1, ColorChannels: 3, BitsPerComponent: 8, Pixels: []byte{1, 2, 3},
	}, ImageProps{Interpolate: true})
	if err != nil {
		t.Fatal(err)
	}
	page := d.NewPageContext()
	page.Q()
	page.Cm(PdfMatrix{A: 100, D: 100, E: 50, F: 50})
	if err := page.DoImage(id); err != nil {
		t.Fatal(err)
	}
	if err := page.QEnd(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(page, mediaBox(0, 0, 200, 200), nil); err != nil {
		t.Fatal(err)
	}
	out := string(writeDoc(t, d))
	imgName := "/Image" + strconv.Itoa(d.images[id].obj)
	if !strings.Contains(out, imgName+" Do") {
		t.Errorf("content missing %s Do", imgName)
	}
	if !strings.Contains(out, "/XObject") {
		t.Errorf("resources missing /XObject")
	}
	if !strings.Contains(out, "/Interpolate true") {
		t.Errorf("interpolate flag missing")
	}
	if !strings.Contains(out, "100 0 0 100 50 50 cm") {
		t.Errorf("transform matrix missing")
	}
}
