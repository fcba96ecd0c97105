package advisor

import (
	"testing"

	"github.com/feltkit/holdemd/internal/card"
)

func hole(t *testing.T, s string) []card.Card {
	t.Helper()
	cards, err := card.ParseMany(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	if len(cards) != 2 {
		t.Fatalf("parse %q: got %d cards, want 2", s, len(cards))
	}
	return cards
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		notation string
		size     int
		contains []string
		excludes []string
	}{
		{
			notation: "AA",
			size:     1,
			contains: []string{"As Ad"},
			excludes: []string{"Ks Kd", "As Ks"},
		},
		{
			notation: "66+",
			size:     9,
			contains: []string{"6s 6d", "9h 9c", "As Ah"},
			excludes: []string{"5s 5d"},
		},
		{
			notation: "A2s+",
			size:     12,
			contains: []string{"As 2s", "Ah Kh"},
			excludes: []string{"Ad 2c"},
		},
		{
			notation: "KTs+",
			size:     3,
			contains: []string{"Ks Ts", "Kh Qh"},
			excludes: []string{"Ks 9s", "Kd Th"},
		},
		{
			notation: "AA-22",
			size:     13,
			contains: []string{"2s 2d", "8h 8c", "Ah Ad"},
			excludes: []string{"As Kd"},
		},
		{
			notation: "AKs-A2s",
			size:     12,
			contains: []string{"As 5s", "Ah 2h"},
			excludes: []string{"As 5d"},
		},
		{
			notation: "22-66",
			size:     5,
			contains: []string{"3h 3s", "6c 6d"},
			excludes: []string{"7h 7s"},
		},
		{
			notation: "AQo",
			size:     1,
			contains: []string{"Ah Qd", "Qc As"},
			excludes: []string{"Ah Qh"},
		},
		{
			notation: "AK",
			size:     2,
			contains: []string{"Ah Kh", "Ah Kd"},
			excludes: []string{"Ah Qh"},
		},
		{
			notation: "QQ+, AKs, AKo",
			size:     5,
			contains: []string{"Qs Qd", "As Ks", "Ah Kd"},
			excludes: []string{"Js Jd", "As Qs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			t.Parallel()
			r, err := ParseRange(tt.notation)
			if err != nil {
				t.Fatalf("ParseRange(%q): %v", tt.notation, err)
			}
			if got := r.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
			for _, h := range tt.contains {
				if !r.Contains(hole(t, h)) {
					t.Errorf("Contains(%s) = false, want true", h)
				}
			}
			for _, h := range tt.excludes {
				if r.Contains(hole(t, h)) {
					t.Errorf("Contains(%s) = true, want false", h)
				}
			}
		})
	}
}

func TestParseRangeErrors(t *testing.T) {
	t.Parallel()

	bad := []string{"AKx", "A", "AAs", "AKs-KQs", "ZZ", "AKso", "+"}
	for _, notation := range bad {
		if _, err := ParseRange(notation); err == nil {
			t.Errorf("ParseRange(%q): expected error", notation)
		}
	}
}

func TestNotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cards string
		want  string
	}{
		{"As Ad", "AA"},
		{"5h Ah", "A5s"},
		{"Kd As", "AKo"},
		{"Th 9h", "T9s"},
		{"2c 7d", "72o"},
	}
	for _, tt := range tests {
		cards := hole(t, tt.cards)
		if got := Notation(cards[0], cards[1]); got != tt.want {
			t.Errorf("Notation(%s) = %q, want %q", tt.cards, got, tt.want)
		}
	}
}

func TestDefaultChartsComplete(t *testing.T) {
	t.Parallel()

	c := defaultCharts()

	openPositions := map[Format][]Position{
		HeadsUp: {SB},
		SixMax:  {UTG, MP, CO, BTN, SB},
		NineMax: {UTG, MP, CO, BTN, SB},
	}
	for format, positions := range openPositions {
		for _, position := range positions {
			r, ok := c.openRange(format, position)
			if !ok || r.Size() == 0 {
				t.Errorf("missing open chart for %s %s", format, position)
			}
		}
	}

	continuePositions := map[Format][]Position{
		HeadsUp: {SB, BB},
		SixMax:  {UTG, MP, CO, BTN, SB, BB},
		NineMax: {UTG, MP, CO, BTN, SB, BB},
	}
	for format, positions := range continuePositions {
		for _, position := range positions {
			if r, ok := c.threeBetRange(format, position); !ok || r.Size() == 0 {
				t.Errorf("missing 3-bet chart for %s %s", format, position)
			}
			if r, ok := c.callRange(format, position); !ok || r.Size() == 0 {
				t.Errorf("missing call chart for %s %s", format, position)
			}
		}
	}

	// The big blind never opens; it checks or raises limpers instead.
	if _, ok := c.openRange(SixMax, BB); ok {
		t.Error("big blind should have no opening chart")
	}

	// Later positions open wider.
	utg, _ := c.openRange(SixMax, UTG)
	btn, _ := c.openRange(SixMax, BTN)
	if utg.Size() >= btn.Size() {
		t.Errorf("UTG opens %d hands, button %d; button should be wider", utg.Size(), btn.Size())
	}
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		players int
		want    Format
	}{
		{2, HeadsUp}, {3, SixMax}, {6, SixMax}, {7, NineMax}, {9, NineMax},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.players); got != tt.want {
			t.Errorf("FormatFor(%d) = %s, want %s", tt.players, got, tt.want)
		}
	}
}

func TestPositionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		players int
		dist    int
		want    Position
	}{
		{2, 0, SB},
		{2, 1, BB},
		{6, 0, BTN},
		{6, 1, SB},
		{6, 2, BB},
		{6, 3, UTG},
		{6, 4, MP},
		{6, 5, CO},
		{9, 3, UTG},
		{9, 5, MP},
		{9, 8, CO},
		{4, 3, UTG},
	}
	for _, tt := range tests {
		if got := PositionFor(tt.players, tt.dist); got != tt.want {
			t.Errorf("PositionFor(%d, %d) = %s, want %s", tt.players, tt.dist, got, tt.want)
		}
	}
}
