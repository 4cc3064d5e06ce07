package capypdf

// AddPage finalizes ctx (which must be a Page draw context) as the next
// page in document order. Every annotation, checkbox widget, and structure
// item ctx referenced via AttachAnnotation / AttachWidget / BDCStructure
// is bound to this page, failing the whole call if any of them was already
// bound to an earlier one. subnavRoot, if non-nil, is the object number
// AddSubnav returned for this page's /PresSteps entry point.
func (d *Document) AddPage(ctx *DrawContext, props PageProperties, subnavRoot *int) (int, error) {
	if ctx.kind != DrawPage {
		return 0, newErr(ErrInvalidDrawContextType, "AddPage requires a Page draw context")
	}
	if err := ctx.requireBaseState(); err != nil {
		return 0, err
	}

	effective := d.defaultPageProps.Merge(props)
	if effective.MediaBox == nil {
		return 0, newErr(ErrMissingMediabox, "page requires a MediaBox from either the document default or a page override")
	}

	pageIdx := len(d.pages)

	for _, wid := range ctx.usedWidgets {
		if page, used := d.widgetUsedOnPage[wid]; used {
			return 0, newErr(ErrAnnotationReuse, "form widget", int(wid), "already used on page", page)
		}
	}
	for _, aid := range ctx.usedAnnotations {
		if page, used := d.annotationUsedOnPage[aid]; used {
			return 0, newErr(ErrAnnotationReuse, "annotation", int(aid), "already used on page", page)
		}
	}
	for _, sid := range ctx.usedStructs {
		if page, used := d.structUsedOnPage[sid]; used {
			return 0, newErr(ErrStructureReuse, "structure item", int(sid), "already used on page", page)
		}
	}

	resourceDict := d.buildResourceDict(ctx)
	resourceObj := d.store.add(fullObject{Dictionary: resourceDict})

	commandsObj := d.store.add(deflateObject{
		OpenDictionary:         newDictFormatter().Bytes(),
		Stream:                 ctx.content.Bytes(),
		LeaveUncompressedDebug: !d.props.CompressStreams,
	})

	var structParents *int
	if len(ctx.usedStructs) > 0 {
		sp := len(d.structParentTree)
		d.structParentTree = append(d.structParentTree, append([]StructureItemId(nil), ctx.usedStructs...))
		structParents = &sp
	}

	pageObj := d.store.add(delayedPage{})
	d.pages = append(d.pages, pageEntry{resourceObj: resourceObj, commandsObj: commandsObj, pageObj: pageObj, props: effective})

	d.store.set(pageObj, delayedPage{
		PageNum:         pageIdx,
		UsedFormWidgets: append([]FormWidgetId(nil), ctx.usedWidgets...),
		UsedAnnotations: append([]AnnotationId(nil), ctx.usedAnnotations...),
		Transition:      ctx.transition,
		SubnavRoot:      subnavRoot,
		CustomProps:     effective,
		StructParents:   structParents,
	})

	for _, wid := range ctx.usedWidgets {
		d.widgetUsedOnPage[wid] = pageIdx
	}
	for _, aid := range ctx.usedAnnotations {
		d.annotationUsedOnPage[aid] = pageIdx
	}
	for _, sid := range ctx.usedStructs {
		d.structUsedOnPage[sid] = pageIdx
	}

	return pageIdx, nil
}

// AddPageLabeling registers a /PageLabels range starting at startPage
// (0-indexed). Ranges must be added in non-decreasing order of startPage
// (ErrNonSequentialPageNumber); a range restarting at the same page
// replaces nothing and simply follows its predecessor in /Nums.
func (d *Document) AddPageLabeling(label PageLabel) error {
	if len(d.pageLabels) > 0 && label.StartPage < d.pageLabels[len(d.pageLabels)-1].StartPage {
		return newErr(ErrNonSequentialPageNumber, "page labeling ranges must not start before the previous range")
	}
	d.pageLabels = append(d.pageLabels, label)
	return nil
}
