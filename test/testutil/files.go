package testutil

import (
	"bytes"
	"encoding/binary"
)

// GenerateMP4 returns size bytes that start with a valid ftyp box. Nothing
// here decodes the video, so the rest is padding.
func GenerateMP4(size int) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, uint32(20))
	buf.WriteString("ftypisom")
	_ = binary.Write(buf, binary.BigEndian, uint32(0x200))
	buf.WriteString("isom")
	if size > buf.Len() {
		buf.Write(make([]byte, size-buf.Len()))
	}
	return buf.Bytes()
}
