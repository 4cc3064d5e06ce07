package fontManager

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestTtfParseRejectsOTTO(t *testing.T) {
	data := append([]byte("OTTO"), make([]byte, 16)...)
	_, err := TtfParse(data)
	if err == nil || !strings.Contains(err.Error(), "PostScript") {
		t.Errorf("OTTO should be rejected as PostScript-outline, got %v", err)
	}
}

func TestTtfParseRejectsGarbage(t *testing.T) {
	if _, err := TtfParse([]byte("XXXXjunkjunkjunk")); err == nil {
		t.Errorf("unrecognized magic should fail")
	}
}

func TestTtfParseTableOutOfBounds(t *testing.T) {
	// Offset table with one directory entry whose extent exceeds the file.
	var data []byte
	data = append(data, 0x00, 0x01, 0x00, 0x00) // sfnt version
	data = append(data, 0x00, 0x01)             // numTables
	data = append(data, make([]byte, 6)...)     // search fields
	data = append(data, []byte("head")...)
	data = append(data, make([]byte, 4)...) // checksum
	off := make([]byte, 8)
	binary.BigEndian.PutUint32(off[0:], 28)     // offset
	binary.BigEndian.PutUint32(off[4:], 0xFFFF) // length beyond EOF
	data = append(data, off...)

	_, err := TtfParse(data)
	if err == nil || !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("oversized table should fail, got %v", err)
	}
}

func TestTtfParseMissingRequiredTable(t *testing.T) {
	// A well-formed directory that only carries "head": the required-table
	// check must reject it.
	var data []byte
	data = append(data, 0x00, 0x01, 0x00, 0x00)
	data = append(data, 0x00, 0x01)
	data = append(data, make([]byte, 6)...)
	data = append(data, []byte("head")...)
	data = append(data, make([]byte, 4)...)
	off := make([]byte, 8)
	binary.BigEndian.PutUint32(off[0:], 28)
	binary.BigEndian.PutUint32(off[4:], 4)
	data = append(data, off...)
	data = append(data, make([]byte, 4)...) // the 4-byte "head" payload

	_, err := TtfParse(data)
	if err == nil || !strings.Contains(err.Error(), "required table") {
		t.Errorf("missing tables should fail, got %v", err)
	}
}

func TestGlyphOffsetsShortFormat(t *testing.T) {
	loca := make([]byte, 6)
	binary.BigEndian.PutUint16(loca[2:], 5) // glyph 1 starts at byte 10
	binary.BigEndian.PutUint16(loca[4:], 8) // and ends at byte 16
	font := &TtfType{
		IndexToLocFormat: 0,
		Tables:           map[string][]byte{"loca": loca, "glyf": make([]byte, 16)},
	}
	start, end, err := font.GlyphOffsets(1)
	if err != nil {
		t.Fatal(err)
	}
	if start != 10 || end != 16 {
		t.Errorf("offsets = [%d,%d), want [10,16)", start, end)
	}
	if _, _, err := font.GlyphOffsets(5); err == nil {
		t.Errorf("out-of-range glyph index should fail")
	}
}
