package capypdf

// AddOptionalContentGroup registers a togglable layer (/OCG) and returns
// its id; DrawContext operators may activate one via a marked-content
// /OC tag.
func (d *Document) AddOptionalContentGroup(name_ string) OptionalContentGroupId {
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("OCG"))
	f.AddTokenPair("/Name", pdfTextString(name_))
	obj := d.store.add(fullObject{Dictionary: closedDict(f)})
	id := OptionalContentGroupId(len(d.ocgs))
	d.ocgs = append(d.ocgs, ocgEntry{obj: obj, name: name_})
	return id
}

// AddSubnav compiles an ordered chain of OCGs into a doubly-linked chain
// of /NavNode objects with forward (/NA) and backward (/PA) actions. It
// returns the object number of the chain's root node, to be attached at a
// page's /PresSteps slot via AddPage's subnavRoot. The root node's /NA
// turns the chain's first OCG on; no node carries an action that turns
// every OCG in the chain off.
func (d *Document) AddSubnav(chain []OptionalContentGroupId) (int, error) {
	if len(chain) == 0 {
		return 0, newErr(ErrZeroLengthArray, "subnav chain must not be empty")
	}
	for _, id := range chain {
		if int(id) >= len(d.ocgs) {
			return 0, newErr(ErrUnusedOcg, "subnav references an unknown optional content group")
		}
	}
	// Reserve object slots for every node up front so forward/backward
	// references can be written in one pass.
	nodeObjs := make([]int, len(chain)+1) // [0] is the root node, before the first step
	for i := range nodeObjs {
		nodeObjs[i] = d.store.add(fullObject{})
	}

	allOffOn := make([]string, len(chain))
	for i, id := range chain {
		allOffOn[i] = formatRefArray([]int{d.ocgs[id].obj})
	}

	for i := 0; i <= len(chain); i++ {
		f := newDictFormatter()
		f.AddTokenPair("/Type", name("NavNode"))
		if i < len(chain) {
			on := newDictFormatter()
			on.AddTokenPair("/Type", name("Action"))
			on.AddTokenPair("/S", name("SetOCGState"))
			on.AddTokenPair("/State", formatRefArrayWithLabel("ON", []int{d.ocgs[chain[i]].obj}))
			f.AddRawLine("/NA", string(closedDict(on)))
		}
		if i > 0 {
			off := newDictFormatter()
			off.AddTokenPair("/Type", name("Action"))
			off.AddTokenPair("/S", name("SetOCGState"))
			off.AddTokenPair("/State", formatRefArrayWithLabel("OFF", []int{d.ocgs[chain[i-1]].obj}))
			f.AddRawLine("/PA", string(closedDict(off)))
		}
		if i > 0 {
			f.AddObjectRefPair("/Prev", nodeObjs[i-1])
		}
		if i < len(chain) {
			f.AddObjectRefPair("/Next", nodeObjs[i+1])
		}
		d.store.set(nodeObjs[i], fullObject{Dictionary: closedDict(f)})
	}
	return nodeObjs[0], nil
}

// formatRefArrayWithLabel renders "[/ON n0 0 R]" style SetOCGState state
// arrays.
func formatRefArrayWithLabel(label string, objNums []int) string {
	out := "[/" + label
	for _, n := range objNums {
		out += " "
		out += itoaHelper(n) + " 0 R"
	}
	return out + "]"
}

func itoaHelper(n int) string {
	f := objfmtArr()
	f.AddToken(n)
	return string(f.Steal())
}
