package fontsubset

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tinywasm/capypdf/internal/objfmt"
)

var tableOrder = []string{"cmap", "cvt ", "prep", "fpgm", "head", "hhea", "maxp", "glyf", "loca", "hmtx"}

// AssembleSubsetFont builds a standalone TrueType file containing only
// the glyphs in subset id: a synthetic format-0 cmap, rewritten composite
// glyph references, a loca/glyf pair covering only subset slots, and a
// checksum-adjusted head table so the whole file satisfies the TrueType
// "sum of all uint32s == 0xB1B0AFBA (mod 2^32)" invariant.
func (s *Subsetter) AssembleSubsetFont(id int) ([]byte, error) {
	list := s.subsets[id]
	n := len(list)

	origToNewSlot := make(map[uint16]uint16, n)
	for slot, g := range list {
		origToNewSlot[g.GlyphIndex] = uint16(slot)
	}

	glyphBytes := make([][]byte, n)
	for slot, g := range list {
		data, err := s.font.GlyphData(g.GlyphIndex)
		if err != nil {
			return nil, fmt.Errorf("subset glyph %d: %w", slot, err)
		}
		data = rewriteComposite(data, origToNewSlot)
		glyphBytes[slot] = data
	}
	glyphBytes[0] = []byte{} // .notdef ships as an empty outline

	// loca/glyf, long (uint32) format to avoid the x2 overflow edge case.
	var glyf bytes.Buffer
	loca := make([]uint32, n+1)
	for i, g := range glyphBytes {
		loca[i] = uint32(glyf.Len())
		glyf.Write(g)
		if glyf.Len()%4 != 0 {
			glyf.Write(make([]byte, 4-glyf.Len()%4))
		}
	}
	loca[n] = uint32(glyf.Len())
	var locaBuf bytes.Buffer
	for _, off := range loca {
		binary.Write(&locaBuf, binary.BigEndian, off)
	}

	head := cloneTable(s.font.Tables["head"])
	if len(head) >= 52 {
		binary.BigEndian.PutUint32(head[8:], 0) // checkSumAdjustment, patched last
		binary.BigEndian.PutUint16(head[50:], 1) // indexToLocFormat = long
	}

	hhea := cloneTable(s.font.Tables["hhea"])
	if len(hhea) >= 36 {
		binary.BigEndian.PutUint16(hhea[34:], uint16(n))
	}

	maxp := cloneTable(s.font.Tables["maxp"])
	if len(maxp) >= 6 {
		binary.BigEndian.PutUint16(maxp[4:], uint16(n))
	}

	var hmtx bytes.Buffer
	for _, g := range list {
		var adv uint16
		if int(g.GlyphIndex) < len(s.font.Widths) {
			adv = s.font.Widths[g.GlyphIndex]
		}
		binary.Write(&hmtx, binary.BigEndian, adv)
		binary.Write(&hmtx, binary.BigEndian, int16(0)) // lsb, not tracked precisely
	}

	cmap := buildSyntheticCmap(n)

	tables := map[string][]byte{
		"cmap": cmap,
		"head": head,
		"hhea": hhea,
		"maxp": maxp,
		"glyf": glyf.Bytes(),
		"loca": locaBuf.Bytes(),
		"hmtx": hmtx.Bytes(),
	}
	for _, optional := range []string{"cvt ", "prep", "fpgm"} {
		if t, ok := s.font.Tables[optional]; ok {
			tables[optional] = cloneTable(t)
		}
	}

	var present []string
	for _, tag := range tableOrder {
		if _, ok := tables[tag]; ok {
			present = append(present, tag)
		}
	}

	out, headOffset := writeSfnt(present, tables)
	totalChecksum := objfmt.TTFChecksum(out)
	adjustment := uint32(0xB1B0AFBA) - totalChecksum
	binary.BigEndian.PutUint32(out[headOffset+8:], adjustment)
	return out, nil
}

func cloneTable(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// writeSfnt lays out the offset table, directory and table bytes (each
// table padded to a 4-byte boundary), returning the assembled file and
// the file offset at which the "head" table begins (needed to patch
// checkSumAdjustment afterward).
func writeSfnt(order []string, tables map[string][]byte) (file []byte, headOffset int) {
	numTables := len(order)
	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	rangeShift := numTables*16 - searchRange

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000))
	binary.Write(&buf, binary.BigEndian, uint16(numTables))
	binary.Write(&buf, binary.BigEndian, uint16(searchRange))
	binary.Write(&buf, binary.BigEndian, uint16(entrySelector))
	binary.Write(&buf, binary.BigEndian, uint16(rangeShift))

	dirStart := buf.Len()
	buf.Write(make([]byte, 16*numTables)) // placeholder directory

	offsets := make([]uint32, numTables)
	checksums := make([]uint32, numTables)
	lengths := make([]uint32, numTables)
	for i, tag := range order {
		data := tables[tag]
		offsets[i] = uint32(buf.Len())
		lengths[i] = uint32(len(data))
		checksums[i] = objfmt.TTFChecksum(data)
		buf.Write(data)
		if pad := buf.Len() % 4; pad != 0 {
			buf.Write(make([]byte, 4-pad))
		}
		if tag == "head" {
			headOffset = int(offsets[i])
		}
	}

	out := buf.Bytes()
	for i, tag := range order {
		entry := out[dirStart+i*16 : dirStart+i*16+16]
		copy(entry[0:4], []byte(tag))
		binary.BigEndian.PutUint32(entry[4:8], checksums[i])
		binary.BigEndian.PutUint32(entry[8:12], offsets[i])
		binary.BigEndian.PutUint32(entry[12:16], lengths[i])
	}
	return out, headOffset
}

// buildSyntheticCmap writes a format-0 cmap subtable mapping byte index i
// to glyph slot i for i<subsetSize, else 0, wrapped in a single-subtable
// directory (platform 1 / encoding 0, Mac Roman — the conventional
// pairing for a format-0 subtable).
func buildSyntheticCmap(subsetSize int) []byte {
	var sub bytes.Buffer
	binary.Write(&sub, binary.BigEndian, uint16(0))   // format
	binary.Write(&sub, binary.BigEndian, uint16(262)) // length
	binary.Write(&sub, binary.BigEndian, uint16(0))   // language
	var glyphIDs [256]byte
	for i := 0; i < 256 && i < subsetSize; i++ {
		glyphIDs[i] = byte(i)
	}
	sub.Write(glyphIDs[:])

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint16(0)) // version
	binary.Write(&out, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&out, binary.BigEndian, uint16(1)) // platformID = Macintosh
	binary.Write(&out, binary.BigEndian, uint16(0)) // encodingID
	binary.Write(&out, binary.BigEndian, uint32(12))
	out.Write(sub.Bytes())
	return out.Bytes()
}

// rewriteComposite mutates a composite glyph's component glyph indices to
// their new subset slots, walking the same ARGS_ARE_WORDS/MORE_COMPONENTS
// flags includeComposites uses to discover them. Simple glyphs pass
// through untouched.
func rewriteComposite(data []byte, remap map[uint16]uint16) []byte {
	if len(data) < 10 {
		return data
	}
	out := make([]byte, len(data))
	copy(out, data)
	numContours := int16(binary.BigEndian.Uint16(out[0:2]))
	if numContours >= 0 {
		return out
	}
	pos := 10
	for {
		if pos+4 > len(out) {
			break
		}
		flags := binary.BigEndian.Uint16(out[pos:])
		orig := binary.BigEndian.Uint16(out[pos+2:])
		if newSlot, ok := remap[orig]; ok {
			binary.BigEndian.PutUint16(out[pos+2:], newSlot)
		}
		pos += 4
		if flags&0x01 != 0 {
			pos += 4
		} else {
			pos += 2
		}
		if flags&0x08 != 0 {
			pos += 2
		} else if flags&0x40 != 0 {
			pos += 4
		} else if flags&0x80 != 0 {
			pos += 8
		}
		if flags&0x20 == 0 {
			break
		}
	}
	return out
}
