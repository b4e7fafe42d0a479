package overdrive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const mediaMarkersDescription = "OverDrive MediaMarkers"

// readMediaMarkersFrame scans the file's ID3v2 tag for the TXXX frame holding
// the MediaMarkers document and returns its value.
func readMediaMarkersFrame(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 10)
	if _, err := io.ReadFull(f, header); err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrMetadataMissing)
	}
	if string(header[0:3]) != "ID3" {
		return "", fmt.Errorf("%s: no id3 tag: %w", path, ErrMetadataMissing)
	}

	version := header[3]
	if version < 3 {
		// ID3v2.2 tags never carry OverDrive markers.
		return "", fmt.Errorf("%s: id3v2.%d tag: %w", path, version, ErrMetadataMissing)
	}
	flags := header[5]
	tagSize := int64(decodeSynchsafe(header[6:10]))

	tag := make([]byte, tagSize)
	if _, err := io.ReadFull(f, tag); err != nil {
		return "", fmt.Errorf("read id3 tag of %s: %w", path, err)
	}

	unsync := flags&0x80 != 0
	if unsync && version == 3 {
		// v2.3 unsynchronisation covers the whole tag body.
		tag = removeUnsyncBytes(tag)
		tagSize = int64(len(tag))
	}

	offset := int64(0)
	if flags&0x40 != 0 {
		// Extended header: first four bytes hold its size.
		if len(tag) < 4 {
			return "", fmt.Errorf("%s: truncated extended header: %w", path, ErrMetadataMissing)
		}
		extSize := int64(decodeSynchsafe(tag[0:4]))
		if version == 3 {
			extSize = int64(binary.BigEndian.Uint32(tag[0:4])) + 4
		}
		offset += extSize
	}

	for offset+10 <= tagSize {
		frameID := string(tag[offset : offset+4])
		if frameID[0] == 0 {
			break // padding
		}

		var frameSize int64
		if version >= 4 {
			frameSize = int64(decodeSynchsafe(tag[offset+4 : offset+8]))
		} else {
			frameSize = int64(binary.BigEndian.Uint32(tag[offset+4 : offset+8]))
		}
		if frameSize <= 0 || offset+10+frameSize > tagSize {
			break
		}

		if frameID == "TXXX" {
			data := tag[offset+10 : offset+10+frameSize]
			// v2.4 unsynchronises per frame; the tag-level flag means every
			// frame was treated that way.
			if version >= 4 && (unsync || tag[offset+9]&0x02 != 0) {
				data = removeUnsyncBytes(data)
			}
			if value, ok := decodeTXXX(data); ok {
				return value, nil
			}
		}
		offset += 10 + frameSize
	}

	return "", fmt.Errorf("%s: no media markers frame: %w", path, ErrMetadataMissing)
}

// decodeTXXX splits a TXXX frame into description and value and reports
// whether the description names the MediaMarkers document.
// Format: [encoding byte][description\0][value]
func decodeTXXX(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	encoding := data[0]
	body := data[1:]

	nullIdx := findNullTerminator(body, encoding)
	if nullIdx < 0 {
		return "", false
	}

	description := decodeText(body[:nullIdx], encoding)
	if !strings.EqualFold(strings.TrimSpace(description), mediaMarkersDescription) {
		return "", false
	}
	value := decodeText(body[nullIdx+terminatorSize(encoding):], encoding)
	return value, true
}

func findNullTerminator(data []byte, encoding byte) int {
	switch encoding {
	case 1, 2: // UTF-16 variants: two-byte terminator aligned to code units
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				return i
			}
		}
		return -1
	default:
		for i, b := range data {
			if b == 0 {
				return i
			}
		}
		return -1
	}
}

func terminatorSize(encoding byte) int {
	if encoding == 1 || encoding == 2 {
		return 2
	}
	return 1
}

func decodeText(data []byte, encoding byte) string {
	var decoded []byte
	var err error
	switch encoding {
	case 0: // ISO-8859-1
		decoded, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
	case 1: // UTF-16 with BOM
		decoded, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	case 2: // UTF-16BE without BOM
		decoded, err = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	default: // UTF-8
		decoded = data
	}
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(decoded), "\x00")
}

// charsetReader lets the XML decoder handle latin-1 prologs that some
// OverDrive encoders emit.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8":
		return input, nil
	case "iso-8859-1", "latin1", "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

// removeUnsyncBytes reverses ID3 unsynchronisation: every 0xFF 0x00 pair
// collapses back to a bare 0xFF.
func removeUnsyncBytes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// decodeSynchsafe decodes a synchsafe integer (7 bits per byte).
func decodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}
