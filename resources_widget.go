package capypdf

// CheckboxWidget is the only form-widget type this codec emits: an on/off
// pair of appearance-stream Form XObjects and the field's partial name.
type CheckboxWidget struct {
	Rect        PdfRectangle
	OnXobj      FormXObjectId
	OffXobj     FormXObjectId
	PartialName string
}

// AddCheckboxWidget registers w and returns its id. Placement onto a
// page happens via AddPage's usedFormWidgets list, which enforces I2 (a
// widget used on at most one page).
func (d *Document) AddCheckboxWidget(w CheckboxWidget) (FormWidgetId, error) {
	if int(w.OnXobj) >= len(d.formXObjects) || int(w.OffXobj) >= len(d.formXObjects) {
		return 0, newErr(ErrIndexOutOfBounds, "checkbox widget xobject id out of range")
	}
	obj := d.store.add(delayedCheckboxWidget{})
	id := FormWidgetId(len(d.formWidgets))
	d.formWidgets = append(d.formWidgets, formWidgetEntry{obj: obj, widget: w})
	d.store.set(obj, delayedCheckboxWidget{
		WidgetID:    id,
		Rect:        w.Rect,
		OnXobj:      w.OnXobj,
		OffXobj:     w.OffXobj,
		PartialName: w.PartialName,
	})
	return id, nil
}
