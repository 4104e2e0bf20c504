package mocks

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"

	"github.com/lumenlabs/golight/common"
)

func pack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := struc.Pack(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFrom(buf []byte) common.Color {
	return common.Color{
		Hue:        binary.LittleEndian.Uint16(buf[0:2]),
		Saturation: binary.LittleEndian.Uint16(buf[2:4]),
		Brightness: binary.LittleEndian.Uint16(buf[4:6]),
		Kelvin:     binary.LittleEndian.Uint16(buf[6:8]),
	}
}
