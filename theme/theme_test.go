package theme

import (
	"strings"
	"testing"
)

const sample = `GIMP Palette
Name: Two
Columns: 2
# comment
0 0 0 black
255 255 255 white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseGPL: %v", err)
	}
	if p.Name != "Two" || len(p.Colors) != 2 {
		t.Fatalf("palette=%+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Fatalf("Lookup(0.5)=%v", got)
	}
	if got := p.Lookup(2); got != (RGB{255, 255, 255}) {
		t.Fatalf("Lookup clamps high: %v", got)
	}
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Fatalf("empty palette accepted")
	}
}

func TestThemeColors(t *testing.T) {
	th := New(Builtin())
	if th.Active() == th.Muted() {
		t.Fatalf("roles should differ")
	}
	if c := string(th.Color(0)); c != "#12161c" {
		t.Fatalf("Color(0)=%s", c)
	}
}
