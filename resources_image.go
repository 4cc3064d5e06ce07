package capypdf

import "github.com/tinywasm/capypdf/internal/colorconv"

// RawPixelImage is what an external PNG/TIFF decoder hands over:
// already-decoded pixel bytes plus enough metadata to write an /XObject
// /Image dictionary. Alpha, if present, is an 8-bit gray channel the same
// dimensions as Pixels, split out into its own /SMask image object.
type RawPixelImage struct {
	Width, Height    int
	ColorChannels    int // 1 (gray), 3 (rgb), 4 (cmyk)
	BitsPerComponent int
	Pixels           []byte
	ICCProfile       []byte // optional; if absent, DeviceGray/RGB/CMYK by ColorChannels
	Alpha            []byte // optional separate 8-bit gray alpha channel
}

// JpegImage is the contract for an already-encoded JPEG byte stream
// (DCTDecode-ready), the out-of-scope JPEG decoder's output value.
type JpegImage struct {
	Width, Height int
	ColorChannels int
	Data          []byte
}

// ImageProps configures AddImage/EmbedJpg.
type ImageProps struct {
	Interpolate bool
	ExplicitMask *ImageId // a 1-bit stencil mask image, mutually exclusive with embedded Alpha
}

// AddImage compresses img's pixels with Flate and writes an /XObject
// /Image dictionary, deriving its /ColorSpace from the embedded ICC
// profile (deduplicated) if present, and recursing into a second image
// object for an embedded alpha channel's /SMask.
func (d *Document) AddImage(img RawPixelImage, props ImageProps) (ImageId, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return 0, newErr(ErrInvalidImageSize, "image width/height must be positive")
	}
	if len(img.Alpha) > 0 && props.ExplicitMask != nil {
		return 0, newErr(ErrMaskAndAlpha, "image has both an embedded alpha channel and an explicit mask")
	}
	var smaskObj *int
	if len(img.Alpha) > 0 {
		grayObj, err := d.addImageObject(RawPixelImage{
			Width: img.Width, Height: img.Height, ColorChannels: 1,
			BitsPerComponent: 8, Pixels: img.Alpha,
		}, ImageProps{}, true)
		if err != nil {
			return 0, err
		}
		smaskObj = &grayObj
	}
	obj, err := d.addImageObject(img, props, false)
	if err != nil {
		return 0, err
	}
	if smaskObj != nil {
		d.patchImageSMask(obj, *smaskObj)
	}
	id := ImageId(len(d.images))
	d.images = append(d.images, &imageEntry{obj: obj, width: img.Width, height: img.Height, smaskObj: smaskObj})
	return id, nil
}

// AddMaskImage registers a standalone gray image meant to be referenced
// as another image's /SMask or a stencil /Mask.
func (d *Document) AddMaskImage(img RawPixelImage) (ImageId, error) {
	img.ColorChannels = 1
	obj, err := d.addImageObject(img, ImageProps{}, true)
	if err != nil {
		return 0, err
	}
	id := ImageId(len(d.images))
	d.images = append(d.images, &imageEntry{obj: obj, width: img.Width, height: img.Height})
	return id, nil
}

// EmbedJpg writes an /XObject /Image whose stream is the caller-supplied
// JPEG bytes unmodified, filtered with /DCTDecode instead of
// /FlateDecode.
func (d *Document) EmbedJpg(img JpegImage, props ImageProps) (ImageId, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return 0, newErr(ErrInvalidImageSize, "image width/height must be positive")
	}
	bpc := 8
	cs := deviceColorSpaceName(img.ColorChannels)
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("XObject"))
	f.AddTokenPair("/Subtype", name("Image"))
	f.AddTokenPair("/Width", img.Width)
	f.AddTokenPair("/Height", img.Height)
	f.AddTokenPair("/BitsPerComponent", bpc)
	f.AddTokenPair("/ColorSpace", name(cs))
	f.AddTokenPair("/Filter", name("DCTDecode"))
	obj := d.store.add(fullObject{Dictionary: closedDict(f), Stream: img.Data, HasStream: true})
	id := ImageId(len(d.images))
	d.images = append(d.images, &imageEntry{obj: obj, width: img.Width, height: img.Height})
	return id, nil
}

func (d *Document) addImageObject(img RawPixelImage, props ImageProps, isMask bool) (int, error) {
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	f := newDictFormatter()
	f.AddTokenPair("/Type", name("XObject"))
	f.AddTokenPair("/Subtype", name("Image"))
	f.AddTokenPair("/Width", img.Width)
	f.AddTokenPair("/Height", img.Height)
	f.AddTokenPair("/BitsPerComponent", bpc)
	if isMask {
		f.AddTokenPair("/ColorSpace", name("DeviceGray"))
	} else if len(img.ICCProfile) > 0 {
		n, err := colorconv.GetNumChannels(img.ICCProfile)
		if err != nil {
			n = img.ColorChannels
		}
		iccObj := d.addICCStreamObject(img.ICCProfile, n)
		f.AddObjectRefPair("/ColorSpace", d.iccArrayObjFor(iccObj))
	} else {
		f.AddTokenPair("/ColorSpace", name(deviceColorSpaceName(img.ColorChannels)))
	}
	if props.Interpolate {
		f.AddTokenPair("/Interpolate", "true")
	}
	if props.ExplicitMask != nil {
		if int(*props.ExplicitMask) >= len(d.images) {
			return 0, newErr(ErrIndexOutOfBounds, "explicit mask image id out of range")
		}
		f.AddObjectRefPair("/Mask", d.images[*props.ExplicitMask].obj)
	}
	obj := d.store.add(deflateObject{
		OpenDictionary:         f.Bytes(),
		Stream:                 img.Pixels,
		LeaveUncompressedDebug: !d.props.CompressStreams,
	})
	return obj, nil
}

// patchImageSMask rewrites an already-stored image cell to add an
// /SMask reference once the mask's own object number is known (the mask
// is written before the parent so that the parent dictionary can name it
// directly instead of deferring).
func (d *Document) patchImageSMask(imageObj, smaskObj int) {
	cell := d.store.get(imageObj).(deflateObject)
	f := objfmtArr()
	f.AddRaw(string(cell.OpenDictionary))
	f.AddObjectRefPair("/SMask", smaskObj)
	cell.OpenDictionary = f.Steal()
	d.store.set(imageObj, cell)
}

func deviceColorSpaceName(channels int) string {
	switch channels {
	case 1:
		return "DeviceGray"
	case 4:
		return "DeviceCMYK"
	default:
		return "DeviceRGB"
	}
}

// iccArrayObjFor maps a profile stream object back to its registered
// [/ICCBased ...] colorspace array object.
func (d *Document) iccArrayObjFor(streamObj int) int {
	for _, e := range d.iccProfiles {
		if e.obj == streamObj {
			return e.arrayObj
		}
	}
	return 0
}

func formatRefArrayTaggedICC(obj int) string {
	return "[/ICCBased " + itoaHelper(obj) + " 0 R]"
}
