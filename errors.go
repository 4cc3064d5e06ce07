package capypdf

import "github.com/tinywasm/capypdf/errs"

// ErrorCode enumerates every distinct failure mode this codec can return
// as one flat enum. Every fallible operation returns an *Error; none of
// them panic across the package boundary.
type ErrorCode int

const (
	ErrNone ErrorCode = iota

	// Argument / shape errors.
	ErrArgIsNull
	ErrInvalidBufsize
	ErrBadEnum
	ErrBadBoolean
	ErrIndexOutOfBounds
	ErrIndexIsNegative
	ErrZeroLengthArray
	ErrInvalidPageNumber
	ErrInvalidSubfont
	ErrInvalidImageSize
	ErrInvalidFlatness
	ErrNegativeDash
	ErrNegativeLineWidth
	ErrColorOutOfRange
	ErrIncorrectColorChannelCount
	ErrColorspaceMismatch
	ErrIncorrectFunctionType
	ErrIncorrectShadingType
	ErrIncorrectAnnotationType
	ErrIncorrectDocumentForObject
	ErrEmptyFunctionList
	ErrEmptyTitle
	ErrMissingMediabox
	ErrMissingGlyph
	ErrMissingPixels
	ErrMissingIntentIdentifier
	ErrOutputProfileMissing
	ErrMaskAndAlpha

	// State errors.
	ErrNoPages
	ErrWritingTwice
	ErrAnnotationMissingRect
	ErrAnnotationReuse
	ErrStructureReuse
	ErrDuplicateName
	ErrRoleAlreadyDefined
	ErrFontNotSpecified
	ErrInvalidDrawContextType
	ErrUnclosedMarkedContent
	ErrUnusedOcg
	ErrWrongDrawContext
	ErrWrongDCForTransp
	ErrWrongDCForMatrix
	ErrPatternNotAccepted
	ErrEmcOnEmpty
	ErrSlashStart
	ErrNonSequentialPageNumber
	ErrBadStripStart
	ErrBadOperationForIntent
	ErrImageFormatNotPermitted
	ErrNonBWColormap

	// I/O & external errors.
	ErrCouldNotOpenFile
	ErrFileDoesNotExist
	ErrFileReadError
	ErrFileWriteError
	ErrCompressionFailure
	ErrFreeTypeError
	ErrUnsupportedFormat
	ErrUnsupportedTIFF
	ErrMalformedFontFile
	ErrDynamicError
	ErrUnreachable
)

var errorCodeNames = map[ErrorCode]string{
	ErrNone:                       "none",
	ErrArgIsNull:                  "argument is null",
	ErrInvalidBufsize:             "invalid buffer size",
	ErrBadEnum:                    "bad enum value",
	ErrBadBoolean:                 "bad boolean value",
	ErrIndexOutOfBounds:           "index out of bounds",
	ErrIndexIsNegative:            "index is negative",
	ErrZeroLengthArray:            "zero length array",
	ErrInvalidPageNumber:          "invalid page number",
	ErrInvalidSubfont:             "invalid subfont index",
	ErrInvalidImageSize:           "invalid image size",
	ErrInvalidFlatness:            "invalid flatness",
	ErrNegativeDash:               "negative dash array element",
	ErrNegativeLineWidth:          "negative line width",
	ErrColorOutOfRange:            "color component out of range",
	ErrIncorrectColorChannelCount: "incorrect color channel count",
	ErrColorspaceMismatch:         "colorspace mismatch",
	ErrIncorrectFunctionType:      "incorrect function type",
	ErrIncorrectShadingType:       "incorrect shading type",
	ErrIncorrectAnnotationType:    "incorrect annotation type",
	ErrIncorrectDocumentForObject: "object belongs to a different document",
	ErrEmptyFunctionList:          "empty function list",
	ErrEmptyTitle:                 "empty title",
	ErrMissingMediabox:            "missing mediabox",
	ErrMissingGlyph:               "missing glyph",
	ErrMissingPixels:              "missing pixels",
	ErrMissingIntentIdentifier:    "missing output intent identifier",
	ErrOutputProfileMissing:       "output profile missing",
	ErrMaskAndAlpha:               "image has both a mask and alpha",
	ErrNoPages:                    "document has no pages",
	ErrWritingTwice:               "document already written",
	ErrAnnotationMissingRect:      "annotation missing rect",
	ErrAnnotationReuse:            "annotation used on more than one page",
	ErrStructureReuse:             "structure item used on more than one page",
	ErrDuplicateName:              "duplicate name",
	ErrRoleAlreadyDefined:         "role already defined",
	ErrFontNotSpecified:           "font not specified before text operator",
	ErrInvalidDrawContextType:     "invalid draw context type for operation",
	ErrUnclosedMarkedContent:      "unclosed marked content",
	ErrUnusedOcg:                  "optional content group never used",
	ErrWrongDrawContext:           "text built against a different draw context",
	ErrWrongDCForTransp:           "wrong draw context type for transparency properties",
	ErrWrongDCForMatrix:           "wrong draw context type for group matrix",
	ErrPatternNotAccepted:         "pattern not accepted in this draw context",
	ErrEmcOnEmpty:                 "EMC with no open marked content",
	ErrSlashStart:                 "name token may not start with a slash",
	ErrNonSequentialPageNumber:    "non sequential page number",
	ErrBadStripStart:              "bad strip start",
	ErrBadOperationForIntent:      "operation not permitted for output intent",
	ErrImageFormatNotPermitted:    "image format not permitted for output intent",
	ErrNonBWColormap:              "non black-and-white colormap",
	ErrCouldNotOpenFile:           "could not open file",
	ErrFileDoesNotExist:           "file does not exist",
	ErrFileReadError:              "file read error",
	ErrFileWriteError:             "file write error",
	ErrCompressionFailure:         "compression failure",
	ErrFreeTypeError:              "font engine error",
	ErrUnsupportedFormat:          "unsupported format",
	ErrUnsupportedTIFF:            "unsupported TIFF variant",
	ErrMalformedFontFile:          "malformed font file",
	ErrDynamicError:               "dynamic error",
	ErrUnreachable:                "unreachable",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return "unknown error"
}

// Error is the single error type this package returns: a
// machine-checkable Code plus a human-readable Msg.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

// newErr builds an *Error, joining extra diagnostic arguments via
// errs.New.
func newErr(code ErrorCode, args ...any) *Error {
	msg := ""
	if len(args) > 0 {
		msg = errs.New(args...).Error()
	}
	return &Error{Code: code, Msg: msg}
}
