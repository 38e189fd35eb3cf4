package mediameta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var errNotWAV = errors.New("not a RIFF/WAVE file")

// WAVDurationMS computes the duration of a PCM WAV file by walking the RIFF
// chunks for fmt (byte rate) and data (payload length). Only WAV is parsed;
// other audio containers report no duration.
func WAVDurationMS(data []byte) (int64, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, errNotWAV
	}

	var byteRate uint32
	var dataLen uint32
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return 0, fmt.Errorf("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			dataLen = size
		}

		// chunks are word-aligned
		offset = body + int(size)
		if size%2 == 1 {
			offset++
		}
	}

	if byteRate == 0 || dataLen == 0 {
		return 0, fmt.Errorf("missing fmt or data chunk")
	}
	return int64(dataLen) * 1000 / int64(byteRate), nil
}
