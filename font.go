package capypdf

import (
	"github.com/tinywasm/capypdf/fontManager"
	"github.com/tinywasm/capypdf/internal/fontsubset"
)

// LoadFont parses a TrueType font file and allocates the five deferred
// font objects (subset data, descriptor, ToUnicode CMap, Type0 font,
// CIDFontType2 dictionary) for subset 0; the writer finishes them once
// every codepoint used in the document has been assigned a slot.
// subfontIndex selects a face within a collection; only single-face files
// are supported, so any index other than 0 fails with ErrInvalidSubfont.
// CFF/OTTO input is rejected by the parser and surfaces as
// ErrUnsupportedFormat.
func (d *Document) LoadFont(path string, subfontIndex int) (FontId, error) {
	data, err := loadFileAsBytesOrErr(path)
	if err != nil {
		return 0, err
	}
	return d.LoadFontBytes(data, subfontIndex)
}

// LoadFontBytes is LoadFont without a filesystem read, for callers that
// already have the font bytes in memory.
func (d *Document) LoadFontBytes(data []byte, subfontIndex int) (FontId, error) {
	if subfontIndex != 0 {
		return 0, newErr(ErrInvalidSubfont, "font collections are not supported; subfont index must be 0")
	}
	ttf, err := fontManager.TtfParse(data)
	if err != nil {
		if err.Error() == "fonts based on PostScript outlines are not supported" {
			return 0, newErr(ErrUnsupportedFormat, err)
		}
		return 0, newErr(ErrMalformedFontFile, err)
	}

	entry := &fontEntry{ttf: ttf, subsetter: fontsubset.New(&ttf)}

	entry.dataObj = d.store.add(delayedSubsetFontData{})
	entry.descObj = d.store.add(delayedSubsetFontDescriptor{})
	entry.cmapObj = d.store.add(delayedSubsetCMap{})
	entry.fontObj = d.store.add(delayedSubsetFont{})
	entry.cidObj = d.store.add(delayedCIDDictionary{})

	id := FontId(len(d.fonts))
	d.fonts = append(d.fonts, entry)

	d.store.set(entry.dataObj, delayedSubsetFontData{Fid: id, SubsetID: 0})
	d.store.set(entry.descObj, delayedSubsetFontDescriptor{Fid: id, DataObj: entry.dataObj, SubsetID: 0})
	d.store.set(entry.cmapObj, delayedSubsetCMap{Fid: id, SubsetID: 0})
	d.store.set(entry.fontObj, delayedSubsetFont{Fid: id, DescriptorObj: entry.descObj, CMapObj: entry.cmapObj})
	d.store.set(entry.cidObj, delayedCIDDictionary{Fid: id, DescriptorObj: entry.descObj})

	return id, nil
}

func loadFileAsBytesOrErr(path string) ([]byte, error) {
	b, err := loadFileAsBytes(path)
	if err != nil {
		return nil, newErr(ErrCouldNotOpenFile, err)
	}
	return b, nil
}
