package capypdf

import (
	"bytes"
	"encoding/binary"
)

// buildTestTTF assembles a minimal but fully parseable TrueType font in
// memory: 100 glyphs, codepoints 0x20..0x7A mapped to glyph (c-0x20+1)
// through a format-4 cmap, every outline empty except glyph 6, which is a
// composite referencing glyph 40. PostScript name "TestFont".
func buildTestTTF() []byte {
	const numGlyphs = 100

	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5) // magic
	binary.BigEndian.PutUint16(head[18:], 1000)       // unitsPerEm
	binary.BigEndian.PutUint16(head[50:], 0)          // indexToLocFormat = short

	hhea := make([]byte, 36)
	binary.BigEndian.PutUint16(hhea[34:], numGlyphs) // numberOfHMetrics

	maxp := make([]byte, 32)
	binary.BigEndian.PutUint16(maxp[4:], numGlyphs)

	var hmtx bytes.Buffer
	for i := 0; i < numGlyphs; i++ {
		binary.Write(&hmtx, binary.BigEndian, uint16(500)) // advance
		binary.Write(&hmtx, binary.BigEndian, int16(0))    // lsb
	}

	glyf := make([]byte, 18)
	binary.BigEndian.PutUint16(glyf[0:], 0xFFFF)  // numContours = -1
	binary.BigEndian.PutUint16(glyf[10:], 0x0001) // ARGS_ARE_WORDS
	binary.BigEndian.PutUint16(glyf[12:], 40)     // component glyph

	loca := make([]byte, (numGlyphs+1)*2)
	for i := 7; i <= numGlyphs; i++ {
		binary.BigEndian.PutUint16(loca[i*2:], 9) // glyph 6 spans [0,18)
	}

	var cmap bytes.Buffer
	binary.Write(&cmap, binary.BigEndian, uint16(0))  // version
	binary.Write(&cmap, binary.BigEndian, uint16(1))  // numTables
	binary.Write(&cmap, binary.BigEndian, uint16(3))  // platformID
	binary.Write(&cmap, binary.BigEndian, uint16(1))  // encodingID
	binary.Write(&cmap, binary.BigEndian, uint32(12)) // subtable offset
	binary.Write(&cmap, binary.BigEndian, uint16(4))  // format
	binary.Write(&cmap, binary.BigEndian, uint16(32)) // length
	binary.Write(&cmap, binary.BigEndian, uint16(0))  // language
	binary.Write(&cmap, binary.BigEndian, uint16(4))  // segCountX2
	binary.Write(&cmap, binary.BigEndian, uint16(4))  // searchRange
	binary.Write(&cmap, binary.BigEndian, uint16(1))  // entrySelector
	binary.Write(&cmap, binary.BigEndian, uint16(0))  // rangeShift
	binary.Write(&cmap, binary.BigEndian, uint16(0x7A))
	binary.Write(&cmap, binary.BigEndian, uint16(0xFFFF))
	binary.Write(&cmap, binary.BigEndian, uint16(0)) // reservedPad
	binary.Write(&cmap, binary.BigEndian, uint16(0x20))
	binary.Write(&cmap, binary.BigEndian, uint16(0xFFFF))
	binary.Write(&cmap, binary.BigEndian, int16(-31)) // idDelta: c -> c-0x20+1
	binary.Write(&cmap, binary.BigEndian, int16(1))
	binary.Write(&cmap, binary.BigEndian, uint16(0)) // idRangeOffset
	binary.Write(&cmap, binary.BigEndian, uint16(0))

	psName := "TestFont"
	var nameTbl bytes.Buffer
	binary.Write(&nameTbl, binary.BigEndian, uint16(0))  // format
	binary.Write(&nameTbl, binary.BigEndian, uint16(1))  // count
	binary.Write(&nameTbl, binary.BigEndian, uint16(18)) // stringOffset
	binary.Write(&nameTbl, binary.BigEndian, uint16(1))  // platformID
	binary.Write(&nameTbl, binary.BigEndian, uint16(0))  // encodingID
	binary.Write(&nameTbl, binary.BigEndian, uint16(0))  // languageID
	binary.Write(&nameTbl, binary.BigEndian, uint16(6))  // nameID = PostScript
	binary.Write(&nameTbl, binary.BigEndian, uint16(len(psName)))
	binary.Write(&nameTbl, binary.BigEndian, uint16(0)) // offset
	nameTbl.WriteString(psName)

	type table struct {
		tag  string
		data []byte
	}
	tables := []table{
		{"cmap", cmap.Bytes()},
		{"glyf", glyf},
		{"head", head},
		{"hhea", hhea},
		{"hmtx", hmtx.Bytes()},
		{"loca", loca},
		{"maxp", maxp},
		{"name", nameTbl.Bytes()},
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0x00010000))
	binary.Write(&out, binary.BigEndian, uint16(len(tables)))
	binary.Write(&out, binary.BigEndian, uint16(0)) // searchRange
	binary.Write(&out, binary.BigEndian, uint16(0)) // entrySelector
	binary.Write(&out, binary.BigEndian, uint16(0)) // rangeShift

	offset := 12 + 16*len(tables)
	for _, tb := range tables {
		out.WriteString(tb.tag)
		binary.Write(&out, binary.BigEndian, uint32(0)) // checksum, unchecked
		binary.Write(&out, binary.BigEndian, uint32(offset))
		binary.Write(&out, binary.BigEndian, uint32(len(tb.data)))
		offset += len(tb.data)
	}
	for _, tb := range tables {
		out.Write(tb.data)
	}
	return out.Bytes()
}
