package capypdf

import "github.com/tinywasm/capypdf/internal/objfmt"

// EmbeddedFile is the caller-supplied payload for Document.EmbedFile:
// the display name (deduplicated against collisions), raw bytes, and
// optional metadata for the /EF /Filespec dictionary.
type EmbeddedFile struct {
	Name        string
	Data        []byte
	MimeType    string
	Description string
}

// EmbedFile constructs an /EmbeddedFile stream object and a /Filespec
// dictionary. Re-embedding a name already in use fails with
// ErrDuplicateName; the display name is the only dedup key, unlike
// AddICCProfile's byte-equality dedup.
func (d *Document) EmbedFile(ef EmbeddedFile) (EmbeddedFileId, error) {
	for _, e := range d.embeddedFiles {
		if e.name == ef.Name {
			return 0, newErr(ErrDuplicateName, "embedded file name", ef.Name, "already in use")
		}
	}
	sf := newDictFormatter()
	sf.AddTokenPair("/Type", name("EmbeddedFile"))
	if ef.MimeType != "" {
		sf.AddTokenPair("/Subtype", name(pdfSubtypeFromMime(ef.MimeType)))
	}
	params := newDictFormatter()
	params.AddTokenPair("/Size", len(ef.Data))
	sf.AddRawLine("/Params", string(closedDict(params)))
	streamObj := d.store.add(deflateObject{
		OpenDictionary:         sf.Bytes(),
		Stream:                 ef.Data,
		LeaveUncompressedDebug: !d.props.CompressStreams,
	})

	fs := newDictFormatter()
	fs.AddTokenPair("/Type", name("Filespec"))
	fs.AddTokenPair("/F", pdfAsciiString(ef.Name))
	fs.AddTokenPair("/UF", pdfTextString(ef.Name))
	if ef.Description != "" {
		fs.AddTokenPair("/Desc", pdfTextString(ef.Description))
	}
	efDict := newDictFormatter()
	efDict.AddObjectRefPair("/F", streamObj)
	efDict.AddObjectRefPair("/UF", streamObj)
	fs.AddRawLine("/EF", string(closedDict(efDict)))
	fsObj := d.store.add(fullObject{Dictionary: closedDict(fs)})

	id := EmbeddedFileId(len(d.embeddedFiles))
	d.embeddedFiles = append(d.embeddedFiles, embeddedFileEntry{obj: streamObj, fsObj: fsObj, name: ef.Name})
	return id, nil
}

func pdfSubtypeFromMime(mime string) string {
	return objfmt.Bytes2PdfStringLiteral([]byte(mime), false)
}
