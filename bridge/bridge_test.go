package bridge

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"go-cvkeys/dac"
)

func TestDACFrameLayout(t *testing.T) {
	got := DACFrame(0x702A)
	// LEN=3, CMD=0x20, payload 0x70 0x2A, CKS=3^0x20^0x70^0x2A
	want := []byte{0xAA, 0x55, 0x03, 0x20, 0x70, 0x2A, 0x03 ^ 0x20 ^ 0x70 ^ 0x2A}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame=% x; want % x", got, want)
	}
}

func TestDecode(t *testing.T) {
	stream := append(DACFrame(0x1234), LevelFrame(CmdGate, true)...)

	cmd, payload, n, err := Decode(stream)
	if err != nil || cmd != CmdDACWrite || !bytes.Equal(payload, []byte{0x12, 0x34}) {
		t.Fatalf("first frame: cmd=%#x payload=% x err=%v", cmd, payload, err)
	}
	cmd, payload, _, err = Decode(stream[n:])
	if err != nil || cmd != CmdGate || !bytes.Equal(payload, []byte{1}) {
		t.Fatalf("second frame: cmd=%#x payload=% x err=%v", cmd, payload, err)
	}
}

func TestDecodeRejects(t *testing.T) {
	good := DACFrame(0x7000)
	corrupt := slices.Clone(good)
	corrupt[4] ^= 0xff

	cases := map[string][]byte{
		"short":     good[:4],
		"sync":      append([]byte{0x00}, good[1:]...),
		"truncated": good[:len(good)-1],
		"checksum":  corrupt,
		"zero len":  {0xAA, 0x55, 0x00, 0x20, 0x00},
	}
	for name, b := range cases {
		if _, _, _, err := Decode(b); !errors.Is(err, ErrBadFrame) {
			t.Errorf("%s: err=%v", name, err)
		}
	}
}

func TestBridgeDrivesDevice(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf)
	dev, err := dac.Open(dac.DefaultConfig(), b, b.ChipSelect(), dac.WithSetupDelay(0), dac.WithHoldDelay(0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dev.Write(0x702A); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b.Gate().SetLevel(true)

	var want []byte
	want = append(want, LevelFrame(CmdChipSelect, true)...)
	want = append(want, LevelFrame(CmdChipSelect, false)...)
	want = append(want, DACFrame(0x702A)...)
	want = append(want, LevelFrame(CmdChipSelect, true)...)
	want = append(want, LevelFrame(CmdGate, true)...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("stream=% x\nwant   % x", buf.Bytes(), want)
	}
	if b.Frames() != 5 {
		t.Fatalf("frames=%d", b.Frames())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestBridgeWriteError(t *testing.T) {
	b := New(failWriter{})
	if err := b.Transfer16(1); err == nil {
		t.Fatalf("expected write error")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close on non-closer: %v", err)
	}
}
