// Package fontsubset builds PDF font subsets on top of the tables
// fontManager.TtfParse extracts: per-codepoint subset/slot assignment,
// composite-glyph index rewriting, checksum-adjusted subset file
// assembly, width computation, and ToUnicode CMap construction.
package fontsubset

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tinywasm/capypdf/fontManager"
	"github.com/tinywasm/capypdf/internal/objfmt"
)

// GlyphKind tags a TTGlyph's variant: a regular codepoint-mapped glyph, a
// bare composite component, or a ligature carrying its source text.
type GlyphKind int

const (
	GlyphRegular GlyphKind = iota
	GlyphComposite
	GlyphLigature
)

// TTGlyph is one occupied slot in a subset.
type TTGlyph struct {
	Kind       GlyphKind
	Codepoint  rune   // valid for GlyphRegular
	GlyphIndex uint16 // original font glyph index
	SourceText string // valid for GlyphLigature: the multi-codepoint source
}

const maxSubsetSize = 255
const spaceSlot = 32

// Subsetter assigns (codepoint, optional explicit glyph index) pairs to
// (subset id, slot) pairs for one source font, in the order callers first
// request them. Only a single subset (id 0) is produced today; the data
// shape can grow additional subsets if the 255-glyph cap is ever reached.
type Subsetter struct {
	font *fontManager.TtfType

	subsets     [][]TTGlyph        // subset id -> slot index -> glyph (slot 0 always .notdef)
	byCodepoint map[rune]slotRef   // codepoint -> assignment, subset 0 only
	byGlyphIdx  map[uint16]slotRef // explicit glyph-index / ligature assignment
}

type slotRef struct {
	subset int
	slot   int
}

// New creates a Subsetter over an already-parsed TrueType font, seeding
// subset 0 with its reserved .notdef slot.
func New(font *fontManager.TtfType) *Subsetter {
	s := &Subsetter{
		font:        font,
		subsets:     [][]TTGlyph{{{Kind: GlyphRegular, Codepoint: 0, GlyphIndex: 0}}},
		byCodepoint: make(map[rune]slotRef),
		byGlyphIdx:  make(map[uint16]slotRef),
	}
	return s
}

// currentSubset returns the subset id new glyphs should be appended to.
// Only subset 0 is ever produced today, but callers are routed through
// here so growing to subset N>0 only touches this function.
func (s *Subsetter) currentSubset() int { return 0 }

func (s *Subsetter) padToSpace(subset int) {
	list := s.subsets[subset]
	if len(list) > spaceSlot {
		return
	}
	fillerCp := rune('!')
	for len(list) < spaceSlot {
		gi, ok := s.font.Chars[uint16(fillerCp)]
		if !ok {
			gi = 0
		}
		list = append(list, TTGlyph{Kind: GlyphRegular, Codepoint: fillerCp, GlyphIndex: gi})
		fillerCp++
	}
	s.subsets[subset] = list
}

// AddCodepoint assigns cp a (subset, slot), parsing composite dependencies
// transitively. It returns the existing assignment if cp was already
// requested.
func (s *Subsetter) AddCodepoint(cp rune) (subset, slot int, err error) {
	if ref, ok := s.byCodepoint[cp]; ok {
		return ref.subset, ref.slot, nil
	}
	sub := s.currentSubset()
	if cp == ' ' {
		s.padToSpace(sub)
		gi := s.font.Chars[uint16(cp)]
		list := s.subsets[sub]
		if len(list) == spaceSlot {
			list = append(list, TTGlyph{Kind: GlyphRegular, Codepoint: cp, GlyphIndex: gi})
			s.subsets[sub] = list
			s.byCodepoint[cp] = slotRef{sub, spaceSlot}
			return sub, spaceSlot, nil
		}
		// Space requested after the reserved slot was already passed by
		// other glyph traffic; fall through to ordinary allocation.
	}
	gi, ok := s.font.Chars[uint16(cp)]
	if !ok {
		return 0, 0, fmt.Errorf("missing glyph for codepoint U+%04X", cp)
	}
	slotIdx, err := s.allocate(sub, TTGlyph{Kind: GlyphRegular, Codepoint: cp, GlyphIndex: gi})
	if err != nil {
		return 0, 0, err
	}
	s.byCodepoint[cp] = slotRef{sub, slotIdx}
	if err := s.includeComposites(sub, gi); err != nil {
		return 0, 0, err
	}
	return sub, slotIdx, nil
}

// AddLigature assigns an explicit glyph index carrying a multi-codepoint
// source text (e.g. the "fi" ligature) its own slot.
func (s *Subsetter) AddLigature(glyphIndex uint16, sourceText string) (subset, slot int, err error) {
	if ref, ok := s.byGlyphIdx[glyphIndex]; ok {
		return ref.subset, ref.slot, nil
	}
	sub := s.currentSubset()
	slotIdx, err := s.allocate(sub, TTGlyph{Kind: GlyphLigature, GlyphIndex: glyphIndex, SourceText: sourceText})
	if err != nil {
		return 0, 0, err
	}
	s.byGlyphIdx[glyphIndex] = slotRef{sub, slotIdx}
	if err := s.includeComposites(sub, glyphIndex); err != nil {
		return 0, 0, err
	}
	return sub, slotIdx, nil
}

// AddExplicitGlyph assigns a raw glyph index (no unicode codepoint) its
// own slot.
func (s *Subsetter) AddExplicitGlyph(glyphIndex uint16) (subset, slot int, err error) {
	if ref, ok := s.byGlyphIdx[glyphIndex]; ok {
		return ref.subset, ref.slot, nil
	}
	sub := s.currentSubset()
	slotIdx, err := s.allocate(sub, TTGlyph{Kind: GlyphComposite, GlyphIndex: glyphIndex})
	if err != nil {
		return 0, 0, err
	}
	s.byGlyphIdx[glyphIndex] = slotRef{sub, slotIdx}
	if err := s.includeComposites(sub, glyphIndex); err != nil {
		return 0, 0, err
	}
	return sub, slotIdx, nil
}

func (s *Subsetter) allocate(sub int, g TTGlyph) (int, error) {
	list := s.subsets[sub]
	if len(list) >= maxSubsetSize {
		return 0, fmt.Errorf("subset %d exceeds %d-glyph cap (additional subsets not implemented)", sub, maxSubsetSize)
	}
	idx := len(list)
	s.subsets[sub] = append(list, g)
	return idx, nil
}

// includeComposites walks a glyph's outline; if it is a composite glyph,
// every referenced component glyph index is (recursively) given a slot
// too, so the rewritten composite's references resolve within the subset.
func (s *Subsetter) includeComposites(sub int, glyphIndex uint16) error {
	data, err := s.font.GlyphData(glyphIndex)
	if err != nil || len(data) < 10 {
		return nil
	}
	numContours := int16(binary.BigEndian.Uint16(data[0:2]))
	if numContours >= 0 {
		return nil // simple glyph, no components
	}
	pos := 10
	for {
		if pos+4 > len(data) {
			break
		}
		flags := binary.BigEndian.Uint16(data[pos:])
		compGlyphIdx := binary.BigEndian.Uint16(data[pos+2:])
		pos += 4
		if _, ok := s.byGlyphIdx[compGlyphIdx]; !ok {
			if _, _, err := s.AddExplicitGlyph(compGlyphIdx); err != nil {
				return err
			}
		}
		if flags&0x01 != 0 { // ARGS_ARE_WORDS
			pos += 4
		} else {
			pos += 2
		}
		if flags&0x08 != 0 { // WE_HAVE_A_SCALE
			pos += 2
		} else if flags&0x40 != 0 { // WE_HAVE_AN_X_AND_Y_SCALE
			pos += 4
		} else if flags&0x80 != 0 { // WE_HAVE_A_TWO_BY_TWO
			pos += 8
		}
		if flags&0x20 == 0 { // !MORE_COMPONENTS
			break
		}
	}
	return nil
}

// SubsetCount reports how many subsets currently exist (always 1 today).
func (s *Subsetter) SubsetCount() int { return len(s.subsets) }

// SubsetSize reports the number of occupied slots in subset id.
func (s *Subsetter) SubsetSize(id int) int { return len(s.subsets[id]) }

// Widths returns the PDF glyph widths for every slot in subset id,
// scaled to the 1000-units-per-em space PDF width arrays use.
func (s *Subsetter) Widths(id int) []uint16 {
	list := s.subsets[id]
	upm := float64(s.font.UnitsPerEm)
	if upm == 0 {
		upm = 1000
	}
	out := make([]uint16, len(list))
	for i, g := range list {
		var adv uint16
		if int(g.GlyphIndex) < len(s.font.Widths) {
			adv = s.font.Widths[g.GlyphIndex]
		}
		out[i] = uint16(float64(adv) * 1000 / upm)
	}
	return out
}

// BuildToUnicodeCMap renders the Adobe-Identity-UCS beginbfchar/endbfchar
// CMap stream mapping each non-.notdef slot back to its source text.
func (s *Subsetter) BuildToUnicodeCMap(id int) []byte {
	list := s.subsets[id]
	f := objfmt.New()
	header := "" +
		"/CIDInit /ProcSet findresource begin\n" +
		"12 dict begin\n" +
		"begincmap\n" +
		"/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n" +
		"/CMapName /Adobe-Identity-UCS def\n" +
		"/CMapType 2 def\n" +
		"1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n"
	f.AddRaw(header)
	type entry struct {
		slot int
		hex  string
	}
	var entries []entry
	for slot, g := range list {
		if slot == 0 {
			continue
		}
		var text string
		switch g.Kind {
		case GlyphLigature:
			text = g.SourceText
		default:
			if g.Codepoint == 0 {
				continue
			}
			text = string(g.Codepoint)
		}
		entries = append(entries, entry{slot, hex4(slot) + " <" + utf16HexOf(text) + ">"})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].slot < entries[j].slot })
	const chunk = 100
	for start := 0; start < len(entries); start += chunk {
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		f.AddRaw(fmt.Sprintf("%d beginbfchar\n", end-start))
		for _, e := range entries[start:end] {
			f.AddRaw(e.hex + "\n")
		}
		f.AddRaw("endbfchar\n")
	}
	f.AddRaw("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return f.Steal()
}

func hex4(v int) string {
	return fmt.Sprintf("<%04X>", v)
}

func utf16HexOf(text string) string {
	var out []byte
	for _, r := range text {
		for _, w := range utf16encode(r) {
			out = append(out, []byte(fmt.Sprintf("%04X", w))...)
		}
	}
	return string(out)
}

func utf16encode(r rune) []uint16 {
	if r <= 0xFFFF {
		return []uint16{uint16(r)}
	}
	r -= 0x10000
	return []uint16{0xD800 + uint16(r>>10), 0xDC00 + uint16(r&0x3FF)}
}

// Glyphs returns the ordered glyph list of subset id, for callers that
// need to inspect assignments (tests, diagnostics).
func (s *Subsetter) Glyphs(id int) []TTGlyph {
	return s.subsets[id]
}
