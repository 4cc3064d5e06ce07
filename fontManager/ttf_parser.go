// Package fontManager parses the TrueType tables a PDF font subsetter needs:
// metrics (head/hhea/maxp/hmtx), character mapping (cmap), the PostScript
// name (name), and the raw glyph outlines (loca/glyf) that get copied,
// renumbered and re-emitted into a subset font file.
package fontManager

import (
	"encoding/binary"
	"fmt"
)

// TtfType contains metrics and raw table data of a TrueType font, enough to
// both describe the font (FontDescriptor fields) and to carve a glyph
// subset out of it (glyf/loca).
type TtfType struct {
	Embeddable             bool
	UnitsPerEm             uint16
	PostScriptName         string
	Bold                   bool
	ItalicAngle            int16
	IsFixedPitch           bool
	TypoAscender           int16
	TypoDescender          int16
	UnderlinePosition      int16
	UnderlineThickness     int16
	Xmin, Ymin, Xmax, Ymax int16
	CapHeight              int16
	Widths                 []uint16
	Chars                  map[uint16]uint16 // unicode codepoint -> glyph index

	IndexToLocFormat int16 // 0 = uint16 entries (x2), 1 = uint32 entries
	NumGlyphs        uint16

	// Tables holds the raw, unparsed bytes for every table this parser
	// is not rewriting (cvt , prep, fpgm) plus the ones it partially
	// interprets itself (loca, glyf), keyed by 4-byte tag.
	Tables map[string][]byte
}

// GlyphOffsets returns, for the given glyph index, the byte range
// [start, end) of its outline within the glyf table, decoded from loca
// according to IndexToLocFormat.
func (t *TtfType) GlyphOffsets(glyphIndex uint16) (start, end uint32, err error) {
	loca := t.Tables["loca"]
	if t.IndexToLocFormat == 0 {
		idx := int(glyphIndex) * 2
		if idx+4 > len(loca) {
			return 0, 0, fmt.Errorf("glyph index %d out of bounds in loca", glyphIndex)
		}
		start = uint32(binary.BigEndian.Uint16(loca[idx:])) * 2
		end = uint32(binary.BigEndian.Uint16(loca[idx+2:])) * 2
	} else {
		idx := int(glyphIndex) * 4
		if idx+8 > len(loca) {
			return 0, 0, fmt.Errorf("glyph index %d out of bounds in loca", glyphIndex)
		}
		start = binary.BigEndian.Uint32(loca[idx:])
		end = binary.BigEndian.Uint32(loca[idx+4:])
	}
	return
}

// GlyphData returns a private copy of glyph glyphIndex's outline bytes.
func (t *TtfType) GlyphData(glyphIndex uint16) ([]byte, error) {
	start, end, err := t.GlyphOffsets(glyphIndex)
	if err != nil {
		return nil, err
	}
	glyf := t.Tables["glyf"]
	if end < start || int(end) > len(glyf) {
		return nil, fmt.Errorf("glyph index %d outline out of bounds", glyphIndex)
	}
	out := make([]byte, end-start)
	copy(out, glyf[start:end])
	return out, nil
}

type ttfParser struct {
	rec              TtfType
	data             []byte
	pos              int
	tables           map[string]tableEntry
	numberOfHMetrics uint16
	numGlyphs        uint16
}

type tableEntry struct {
	offset uint32
	length uint32
}

// TtfParse extracts metrics and subsetting tables from a TrueType font
// file. CFF-flavored OpenType ("OTTO") is rejected: the subsetter only
// understands glyf/loca outlines.
func TtfParse(data []byte) (TtfRec TtfType, err error) {
	var t ttfParser
	t.data = data
	t.pos = 0

	version, err := t.ReadStr(4)
	if err != nil {
		return
	}
	if version == "OTTO" {
		err = fmt.Errorf("fonts based on PostScript outlines are not supported")
		return
	}
	if version != "\x00\x01\x00\x00" && version != "true" {
		err = fmt.Errorf("unrecognized file format")
		return
	}
	numTables := int(t.ReadUShort())
	t.Skip(3 * 2) // searchRange, entrySelector, rangeShift
	t.tables = make(map[string]tableEntry, numTables)
	var tag string
	for j := 0; j < numTables; j++ {
		tag, err = t.ReadStr(4)
		if err != nil {
			return
		}
		t.Skip(4) // checkSum
		offset := t.ReadULong()
		length := t.ReadULong()
		if int(offset)+int(length) > len(data) || int64(offset)+int64(length) < 0 {
			err = fmt.Errorf("table %q out of bounds", tag)
			return
		}
		t.tables[tag] = tableEntry{offset: offset, length: length}
	}
	for _, required := range []string{"head", "hhea", "maxp", "hmtx", "loca", "glyf"} {
		if _, ok := t.tables[required]; !ok {
			err = fmt.Errorf("required table %q missing", required)
			return
		}
	}
	t.rec.Tables = make(map[string][]byte, len(t.tables))
	for tag, entry := range t.tables {
		t.rec.Tables[tag] = data[entry.offset : entry.offset+entry.length]
	}

	err = t.ParseComponents()
	if err != nil {
		return
	}
	TtfRec = t.rec
	return
}

func (t *ttfParser) ParseComponents() (err error) {
	for _, step := range []func() error{
		t.ParseHead, t.ParseHhea, t.ParseMaxp, t.ParseHmtx,
		t.ParseCmap, t.ParseName, t.ParseOS2, t.ParsePost,
	} {
		if err = step(); err != nil {
			return err
		}
	}
	return nil
}

func (t *ttfParser) ParseHead() (err error) {
	if err = t.Seek("head"); err != nil {
		return
	}
	t.Skip(3 * 4) // version, fontRevision, checkSumAdjustment
	magicNumber := t.ReadULong()
	if magicNumber != 0x5F0F3CF5 {
		return fmt.Errorf("incorrect magic number")
	}
	t.Skip(2) // flags
	t.rec.UnitsPerEm = t.ReadUShort()
	t.Skip(2 * 8) // created, modified
	t.rec.Xmin = t.ReadShort()
	t.rec.Ymin = t.ReadShort()
	t.rec.Xmax = t.ReadShort()
	t.rec.Ymax = t.ReadShort()
	t.Skip(2 + 2 + 2) // macStyle, lowestRecPPEM, fontDirectionHint
	t.rec.IndexToLocFormat = t.ReadShort()
	return nil
}

func (t *ttfParser) ParseHhea() (err error) {
	if err = t.Seek("hhea"); err != nil {
		return
	}
	t.Skip(4 + 15*2)
	t.numberOfHMetrics = t.ReadUShort()
	return nil
}

func (t *ttfParser) ParseMaxp() (err error) {
	if err = t.Seek("maxp"); err != nil {
		return
	}
	t.Skip(4)
	t.numGlyphs = t.ReadUShort()
	t.rec.NumGlyphs = t.numGlyphs
	return nil
}

func (t *ttfParser) ParseHmtx() (err error) {
	if err = t.Seek("hmtx"); err != nil {
		return
	}
	t.rec.Widths = make([]uint16, 0, t.numGlyphs)
	for j := uint16(0); j < t.numberOfHMetrics; j++ {
		t.rec.Widths = append(t.rec.Widths, t.ReadUShort())
		t.Skip(2) // lsb
	}
	if t.numberOfHMetrics < t.numGlyphs && t.numberOfHMetrics > 0 {
		lastWidth := t.rec.Widths[t.numberOfHMetrics-1]
		for j := t.numberOfHMetrics; j < t.numGlyphs; j++ {
			t.rec.Widths = append(t.rec.Widths, lastWidth)
		}
	}
	return nil
}

func (t *ttfParser) ParseCmap() (err error) {
	var offset int64
	if err = t.Seek("cmap"); err != nil {
		return
	}
	cmapTableOffset := int64(t.tables["cmap"].offset)
	t.Skip(2) // version
	numTables := int(t.ReadUShort())
	offset31 := int64(0)
	offset30 := int64(0)
	for j := 0; j < numTables; j++ {
		platformID := t.ReadUShort()
		encodingID := t.ReadUShort()
		offset = int64(t.ReadULong())
		if platformID == 3 && encodingID == 1 {
			offset31 = offset
		} else if platformID == 0 {
			offset30 = offset
		}
	}
	chosen := offset31
	if chosen == 0 {
		chosen = offset30
	}
	if chosen == 0 {
		return fmt.Errorf("no Unicode encoding found")
	}
	startCount := make([]uint16, 0, 8)
	endCount := make([]uint16, 0, 8)
	idDelta := make([]int16, 0, 8)
	idRangeOffset := make([]uint16, 0, 8)
	t.rec.Chars = make(map[uint16]uint16)
	if _, err = t.SeekToPos(cmapTableOffset + chosen); err != nil {
		return fmt.Errorf("could not seek to cmap subtable: %w", err)
	}
	format := t.ReadUShort()
	if format >= 15 {
		return fmt.Errorf("unsupported cmap subtable format %d", format)
	}
	if format != 4 {
		// Only format 4 is walked for the unicode->glyph map; other
		// accepted formats are left unconsulted (glyph lookup happens
		// through the codepoints the caller actually requests).
		return nil
	}
	t.Skip(2 * 2) // length, language
	segCount := int(t.ReadUShort() / 2)
	t.Skip(3 * 2) // searchRange, entrySelector, rangeShift
	for j := 0; j < segCount; j++ {
		endCount = append(endCount, t.ReadUShort())
	}
	t.Skip(2) // reservedPad
	for j := 0; j < segCount; j++ {
		startCount = append(startCount, t.ReadUShort())
	}
	for j := 0; j < segCount; j++ {
		idDelta = append(idDelta, t.ReadShort())
	}
	offset = t.GetPos()
	for j := 0; j < segCount; j++ {
		idRangeOffset = append(idRangeOffset, t.ReadUShort())
	}
	for j := 0; j < segCount; j++ {
		c1 := startCount[j]
		c2 := endCount[j]
		d := idDelta[j]
		ro := idRangeOffset[j]
		if ro > 0 {
			if _, err = t.SeekToPos(offset + 2*int64(j) + int64(ro)); err != nil {
				return fmt.Errorf("could not seek to id range offset: %w", err)
			}
		}
		for c := c1; c <= c2; c++ {
			if c == 0xFFFF {
				break
			}
			var gid int32
			if ro > 0 {
				gid = int32(t.ReadUShort())
				if gid > 0 {
					gid += int32(d)
				}
			} else {
				gid = int32(c) + int32(d)
			}
			if gid >= 65536 {
				gid -= 65536
			}
			if gid > 0 {
				t.rec.Chars[c] = uint16(gid)
			}
		}
	}
	return nil
}

func (t *ttfParser) ParseName() (err error) {
	if err = t.Seek("name"); err != nil {
		return
	}
	tableOffset := t.GetPos()
	t.rec.PostScriptName = ""
	t.Skip(2) // format
	count := t.ReadUShort()
	stringOffset := t.ReadUShort()
	for j := uint16(0); j < count && t.rec.PostScriptName == ""; j++ {
		t.Skip(3 * 2) // platformID, encodingID, languageID
		nameID := t.ReadUShort()
		length := t.ReadUShort()
		offset := t.ReadUShort()
		if nameID == 6 {
			if _, err = t.SeekToPos(tableOffset + int64(stringOffset) + int64(offset)); err != nil {
				return
			}
			var s string
			if s, err = t.ReadStr(int(length)); err != nil {
				return
			}
			t.rec.PostScriptName = cleanPostScriptName(stripNulls(s))
		}
	}
	if t.rec.PostScriptName == "" {
		t.rec.PostScriptName = "Subset"
	}
	return nil
}

func (t *ttfParser) ParseOS2() (err error) {
	if err = t.Seek("OS/2"); err != nil {
		// OS/2 is optional for some hand-built fonts; without it the
		// fields this function fills keep their zero values.
		return nil
	}
	version := t.ReadUShort()
	t.Skip(3 * 2) // xAvgCharWidth, usWeightClass, usWidthClass
	fsType := t.ReadUShort()
	t.rec.Embeddable = (fsType != 2) && (fsType&0x200) == 0
	t.Skip(11*2 + 10 + 4*4 + 4)
	fsSelection := t.ReadUShort()
	t.rec.Bold = (fsSelection & 32) != 0
	t.Skip(2 * 2) // usFirstCharIndex, usLastCharIndex
	t.rec.TypoAscender = t.ReadShort()
	t.rec.TypoDescender = t.ReadShort()
	if version >= 2 {
		t.Skip(3*2 + 2*4 + 2)
		t.rec.CapHeight = t.ReadShort()
	}
	return nil
}

func (t *ttfParser) ParsePost() (err error) {
	if err = t.Seek("post"); err != nil {
		return nil
	}
	t.Skip(4) // version
	t.rec.ItalicAngle = t.ReadShort()
	t.Skip(2) // decimal part of italic angle
	t.rec.UnderlinePosition = t.ReadShort()
	t.rec.UnderlineThickness = t.ReadShort()
	t.rec.IsFixedPitch = t.ReadULong() != 0
	return nil
}

func (t *ttfParser) SeekToPos(pos int64) (int64, error) {
	if pos < 0 || int(pos) >= len(t.data) {
		return 0, fmt.Errorf("seek position %d out of bounds", pos)
	}
	t.pos = int(pos)
	return pos, nil
}

func (t *ttfParser) GetPos() int64 {
	return int64(t.pos)
}

func (t *ttfParser) Seek(tag string) (err error) {
	entry, ok := t.tables[tag]
	if !ok {
		return fmt.Errorf("table not found: %s", tag)
	}
	if int(entry.offset) >= len(t.data) {
		return fmt.Errorf("seek position %d out of bounds", entry.offset)
	}
	t.pos = int(entry.offset)
	return nil
}

func (t *ttfParser) Skip(n int) {
	t.pos += n
}

func (t *ttfParser) ReadStr(length int) (str string, err error) {
	if length < 0 || t.pos+length > len(t.data) {
		return "", fmt.Errorf("unable to read %d bytes at position %d", length, t.pos)
	}
	str = string(t.data[t.pos : t.pos+length])
	t.pos += length
	return
}

func (t *ttfParser) ReadUShort() (val uint16) {
	if t.pos+2 > len(t.data) {
		return 0
	}
	val = binary.BigEndian.Uint16(t.data[t.pos:])
	t.pos += 2
	return
}

func (t *ttfParser) ReadShort() (val int16) {
	if t.pos+2 > len(t.data) {
		return 0
	}
	val = int16(binary.BigEndian.Uint16(t.data[t.pos:]))
	t.pos += 2
	return
}

func (t *ttfParser) ReadULong() (val uint32) {
	if t.pos+4 > len(t.data) {
		return 0
	}
	val = binary.BigEndian.Uint32(t.data[t.pos:])
	t.pos += 4
	return
}

func stripNulls(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != 0 {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// cleanPostScriptName removes characters that are illegal in a PDF name
// token: () {} <> space / % [ ]
func cleanPostScriptName(s string) string {
	var result []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(', ')', '{', '}', '<', '>', ' ', '/', '%', '[', ']':
		default:
			result = append(result, c)
		}
	}
	return string(result)
}
