// Package metadata reads and writes the generation parameters embedded
// in image files: the 'parameters' PNG text chunk SwarmUI writes, the
// EXIF UserComment carrying the same JSON in JPEG files, and plain JSON
// sidecar files.
//
// png.go handles the PNG side natively. The standard image/png decoder
// discards ancillary chunks, so the tEXt/iTXt handling here works on the
// raw chunk stream instead.
package metadata

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// ParametersKey is the PNG text keyword carrying generation parameters.
const ParametersKey = "parameters"

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngChunk is one chunk of a PNG stream, type plus raw data.
type pngChunk struct {
	typ  string
	data []byte
}

// readChunks splits a PNG byte stream into chunks, verifying the
// signature but not the per-chunk CRCs.
func readChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("metadata: not a PNG file")
	}

	var chunks []pngChunk
	r := bytes.NewReader(data[len(pngSignature):])
	for {
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("metadata: reading chunk length: %w", err)
		}
		header := make([]byte, 4)
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, fmt.Errorf("metadata: reading chunk type: %w", err)
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("metadata: reading %s chunk: %w", header, err)
		}
		// Skip the CRC.
		if _, err := io.CopyN(io.Discard, r, 4); err != nil {
			return nil, fmt.Errorf("metadata: reading %s chunk CRC: %w", header, err)
		}
		chunks = append(chunks, pngChunk{typ: string(header), data: body})
	}
	return chunks, nil
}

// writeChunk appends one chunk with its length and CRC.
func writeChunk(w *bytes.Buffer, c pngChunk) {
	binary.Write(w, binary.BigEndian, uint32(len(c.data)))
	w.WriteString(c.typ)
	w.Write(c.data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(c.typ))
	crc.Write(c.data)
	binary.Write(w, binary.BigEndian, crc.Sum32())
}

// textFromChunk extracts keyword and text from a tEXt or iTXt chunk.
// Unsupported or malformed chunks return ok=false.
func textFromChunk(c pngChunk) (keyword, text string, ok bool) {
	switch c.typ {
	case "tEXt":
		keyword, rest, found := bytesCut(c.data, 0)
		if !found {
			return "", "", false
		}
		return string(keyword), string(rest), true
	case "iTXt":
		keyword, rest, found := bytesCut(c.data, 0)
		if !found || len(rest) < 2 {
			return "", "", false
		}
		compressed := rest[0] == 1
		rest = rest[2:] // compression flag + method
		if _, rest, found = bytesCut(rest, 0); !found {
			return "", "", false
		}
		if _, rest, found = bytesCut(rest, 0); !found {
			return "", "", false
		}
		if compressed {
			zr, err := zlib.NewReader(bytes.NewReader(rest))
			if err != nil {
				return "", "", false
			}
			defer zr.Close()
			plain, err := io.ReadAll(zr)
			if err != nil {
				return "", "", false
			}
			return string(keyword), string(plain), true
		}
		return string(keyword), string(rest), true
	default:
		return "", "", false
	}
}

func bytesCut(data []byte, sep byte) (before, after []byte, found bool) {
	i := bytes.IndexByte(data, sep)
	if i < 0 {
		return data, nil, false
	}
	return data[:i], data[i+1:], true
}

// PNGText returns all text entries (tEXt and iTXt) from a PNG byte
// stream, keyed by keyword.
func PNGText(data []byte) (map[string]string, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}
	texts := make(map[string]string)
	for _, c := range chunks {
		if keyword, text, ok := textFromChunk(c); ok {
			texts[keyword] = text
		}
	}
	return texts, nil
}

// ReadPNGParameters returns the 'parameters' text from a PNG file, or ""
// when the file carries none.
func ReadPNGParameters(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("metadata: reading %s: %w", path, err)
	}
	texts, err := PNGText(data)
	if err != nil {
		return "", fmt.Errorf("metadata: %s: %w", path, err)
	}
	return texts[ParametersKey], nil
}

// WithPNGParameters returns the PNG byte stream with a 'parameters' tEXt
// chunk set to the given text, replacing any existing text entry under
// that keyword. The chunk is placed right after IHDR.
func WithPNGParameters(data []byte, params string) ([]byte, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pngSignature)
	inserted := false
	for _, c := range chunks {
		if keyword, _, ok := textFromChunk(c); ok && keyword == ParametersKey {
			continue
		}
		writeChunk(&out, c)
		if c.typ == "IHDR" && !inserted {
			text := append([]byte(ParametersKey), 0)
			text = append(text, []byte(params)...)
			writeChunk(&out, pngChunk{typ: "tEXt", data: text})
			inserted = true
		}
	}
	if !inserted {
		return nil, fmt.Errorf("metadata: PNG stream has no IHDR chunk")
	}
	return out.Bytes(), nil
}
