package capypdf

// Resource handles are newtype wrappers around a dense, non-negative index
// into a component-specific vector owned by Document. They are opaque to
// callers, comparable for equality, and hashable; a plain Go int satisfies
// all three without any interface indirection.
type FontId int
type ImageId int
type IccColorSpaceId int
type LabColorSpaceId int
type SeparationId int
type PatternId int
type ShadingId int
type FunctionId int
type GraphicsStateId int
type OutlineId int
type FormXObjectId int
type TransparencyGroupId int
type SoftMaskId int
type OptionalContentGroupId int
type AnnotationId int
type StructureItemId int
type EmbeddedFileId int
type FormWidgetId int
type RoleId int
