// Package bridge drives the DAC and gate through a microcontroller on a
// serial line. Each bus or pin operation becomes one frame.
package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdDACWrite   = 0x20 // payload: word, big endian
	CmdChipSelect = 0x21 // payload: level
	CmdGate       = 0x22 // payload: level
)

// ErrBadFrame is returned by Decode for malformed input
var ErrBadFrame = errors.New("bridge: bad frame")

// AppendFrame appends the on-wire form of cmd and payload to dst:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload; CKS is LEN, CMD and the payload XORed.
func AppendFrame(dst []byte, cmd byte, payload []byte) []byte {
	length := byte(len(payload) + 1)
	cks := length ^ cmd
	for _, b := range payload {
		cks ^= b
	}
	dst = append(dst, SOF0, SOF1, length, cmd)
	dst = append(dst, payload...)
	return append(dst, cks)
}

// DACFrame returns the frame that writes w
func DACFrame(w uint16) []byte {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], w)
	return AppendFrame(nil, CmdDACWrite, p[:])
}

// LevelFrame returns a chip select or gate frame
func LevelFrame(cmd byte, high bool) []byte {
	var level byte
	if high {
		level = 1
	}
	return AppendFrame(nil, cmd, []byte{level})
}

// Decode parses the first frame in b. It returns the command, its payload
// (aliasing b) and the number of bytes consumed.
func Decode(b []byte) (cmd byte, payload []byte, n int, err error) {
	if len(b) < 5 {
		return 0, nil, 0, fmt.Errorf("%w: short (%d bytes)", ErrBadFrame, len(b))
	}
	if b[0] != SOF0 || b[1] != SOF1 {
		return 0, nil, 0, fmt.Errorf("%w: sync %#02x %#02x", ErrBadFrame, b[0], b[1])
	}
	length := int(b[2])
	if length == 0 {
		return 0, nil, 0, fmt.Errorf("%w: zero length", ErrBadFrame)
	}
	n = 3 + length + 1
	if len(b) < n {
		return 0, nil, 0, fmt.Errorf("%w: truncated", ErrBadFrame)
	}
	cks := b[2]
	for _, x := range b[3 : n-1] {
		cks ^= x
	}
	if cks != b[n-1] {
		return 0, nil, 0, fmt.Errorf("%w: checksum %#02x, want %#02x", ErrBadFrame, b[n-1], cks)
	}
	return b[3], b[4 : n-1], n, nil
}
