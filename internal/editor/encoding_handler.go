package editor

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

// Encoding names a text encoding a document was read with
type Encoding string

const (
	EncodingUTF8        Encoding = "UTF-8"
	EncodingUTF8BOM     Encoding = "UTF-8-BOM"
	EncodingUTF16LE     Encoding = "UTF-16LE"
	EncodingUTF16BE     Encoding = "UTF-16BE"
	EncodingWindows1252 Encoding = "WINDOWS-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding guesses the encoding of raw file content.
// BOMs win; otherwise valid UTF-8 is UTF-8 and anything else is taken as
// Windows-1252, the usual legacy encoding of French LaTeX sources.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(data):
		return EncodingUTF8
	default:
		return EncodingWindows1252
	}
}

// Decode converts raw file content to a UTF-8 string without BOM.
func Decode(data []byte) (string, Encoding, error) {
	enc := DetectEncoding(data)

	var (
		decoded []byte
		err     error
	)
	switch enc {
	case EncodingUTF8:
		decoded = data
	case EncodingUTF8BOM:
		decoded = data[len(bomUTF8):]
	case EncodingUTF16LE:
		decoded, err = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	case EncodingUTF16BE:
		decoded, err = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	case EncodingWindows1252:
		decoded, err = charmap.Windows1252.NewDecoder().Bytes(data)
	}
	if err != nil {
		logger.Error("failed to decode document", err, logger.String("encoding", string(enc)))
		return "", enc, types.NewAppError(types.ErrInvalidInput, fmt.Sprintf("failed to decode %s content", enc), err)
	}

	if enc != EncodingUTF8 {
		logger.Info("document converted to UTF-8", logger.String("from", string(enc)))
	}
	return string(decoded), enc, nil
}
