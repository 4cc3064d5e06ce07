package capypdf

// StructureType names a structure-tree item's /S value: either a builtin
// PDF structure type ("P", "H1", "Span", ...) or a custom name that
// resolves through the document's /RoleMap.
type StructureType struct {
	Builtin string
	Role    RoleId
	IsRole  bool
}

// StructureExtra carries a structure item's optional /T, /Lang, /Alt, and
// /ActualText fields.
type StructureExtra struct {
	Title      string
	Lang       string
	Alt        string
	ActualText string
}

// AddRole registers a custom role name mapped to a builtin structure
// type, populating the catalog's /RoleMap. Re-registering the same name
// fails with ErrRoleAlreadyDefined.
func (d *Document) AddRole(customName, mapsToBuiltin string) (RoleId, error) {
	if _, ok := d.roles[customName]; ok {
		return 0, newErr(ErrRoleAlreadyDefined, "role", customName, "already defined")
	}
	id := RoleId(len(d.roles))
	d.roles[customName] = id
	if d.roleMapsTo == nil {
		d.roleMapsTo = make(map[RoleId]string)
		d.roleNames = make(map[RoleId]string)
	}
	d.roleMapsTo[id] = mapsToBuiltin
	d.roleNames[id] = customName
	return id, nil
}

// AddStructureItem appends a deferred structure-element cell to the
// object store and registers its metadata; actual /K child/MCID wiring
// happens at write time once every page's usage is known.
func (d *Document) AddStructureItem(t StructureType, parent *StructureItemId, extra StructureExtra) StructureItemId {
	obj := d.store.add(delayedStructItem{})
	id := StructureItemId(len(d.structureItems))
	d.structureItems = append(d.structureItems, structItemEntry{
		obj:      obj,
		typeName: t.Builtin,
		roleID:   t.Role,
		isRole:   t.IsRole,
		parent:   parent,
		extra:    extra,
	})
	d.store.set(obj, delayedStructItem{Sid: id})
	return id
}

// structureTagName resolves the /S tag name a BDC operator should emit
// for sid: its custom role name if it was registered with AddRole, else
// its builtin structure type name.
func (d *Document) structureTagName(sid StructureItemId) string {
	e := d.structureItems[sid]
	if e.isRole {
		return d.roleNames[e.roleID]
	}
	return e.typeName
}
