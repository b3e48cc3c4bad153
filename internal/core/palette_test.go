package core

import "testing"

func TestPalette(t *testing.T) {
	p := Palette(4)
	want := []string{
		"hsl(0, 70%, 60%)",
		"hsl(90, 70%, 60%)",
		"hsl(180, 70%, 60%)",
		"hsl(270, 70%, 60%)",
	}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("Palette(4)[%d] = %s, want %s", i, p[i], want[i])
		}
	}
	if got := Palette(16)[1]; got != "hsl(22.5, 70%, 60%)" {
		t.Fatalf("Palette(16)[1] = %s", got)
	}
	if len(Palette(0)) != 0 {
		t.Fatalf("Palette(0) should be empty")
	}
}

func TestPaletteDistinctAndDeterministic(t *testing.T) {
	for _, n := range []int{1, 2, 7, 16, 40} {
		a, b := Palette(n), Palette(n)
		seen := map[string]bool{}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("Palette(%d) not deterministic at %d", n, i)
			}
			if seen[a[i]] {
				t.Fatalf("Palette(%d) repeats %s", n, a[i])
			}
			seen[a[i]] = true
		}
	}
}

func TestPaletteHex(t *testing.T) {
	hex := PaletteHex(16)
	if hex[0] != "#e05252" {
		t.Fatalf("PaletteHex(16)[0] = %s, want #e05252", hex[0])
	}
	if hex[8] != "#52e0e0" {
		t.Fatalf("PaletteHex(16)[8] = %s, want #52e0e0", hex[8])
	}
}
