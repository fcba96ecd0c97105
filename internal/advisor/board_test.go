package advisor

import (
	"testing"

	"github.com/feltkit/holdemd/internal/card"
)

func mustCards(t *testing.T, s string) []card.Card {
	t.Helper()
	cards, err := card.ParseMany(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return cards
}

func TestClassifyBoard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		board    string
		want     Texture
		paired   bool
		monotone bool
		rainbow  bool
	}{
		{"rainbow disconnected", "Ks 7d 2c", Dry, false, false, true},
		{"paired rag", "7s 7d 2h", Dry, true, false, true},
		{"two tone low", "9h 8h 2c", SemiWet, false, false, false},
		{"two tone connected", "Jd Td 9c", Wet, false, false, false},
		{"monotone broadway", "Ah Kh Qh", VeryWet, false, true, false},
		{"four to a straight flush", "As Ks Qs Js", VeryWet, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := ClassifyBoard(mustCards(t, tt.board))
			if b.Texture != tt.want {
				t.Errorf("Texture = %s, want %s", b.Texture, tt.want)
			}
			if b.Paired != tt.paired {
				t.Errorf("Paired = %v, want %v", b.Paired, tt.paired)
			}
			if b.Monotone != tt.monotone {
				t.Errorf("Monotone = %v, want %v", b.Monotone, tt.monotone)
			}
			if b.Rainbow != tt.rainbow {
				t.Errorf("Rainbow = %v, want %v", b.Rainbow, tt.rainbow)
			}
		})
	}
}

func TestClassifyBoardIncomplete(t *testing.T) {
	t.Parallel()

	b := ClassifyBoard(mustCards(t, "Ah Kh"))
	if b.Texture != Dry {
		t.Errorf("Texture = %s, want %s for an incomplete board", b.Texture, Dry)
	}
}

func TestStraightSpanCountsWheelAce(t *testing.T) {
	t.Parallel()

	b := ClassifyBoard(mustCards(t, "Ah 2c 3d"))
	if b.ToStraight != 3 {
		t.Errorf("ToStraight = %d, want 3 for an ace-low board", b.ToStraight)
	}
}

func TestDetectDraws(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		hole       string
		board      string
		flush      bool
		openEnded  bool
		gutshot    bool
		bdFlush    bool
		bdStraight bool
		outs       float64
	}{
		{
			name: "flush draw", hole: "Ah 7h", board: "Kh 2h 9c",
			flush: true, outs: 9,
		},
		{
			name: "open ended", hole: "9c 8d", board: "7h 6s Kd",
			openEnded: true, outs: 8,
		},
		{
			name: "gutshot", hole: "9c 8d", board: "6h 5s Kd",
			gutshot: true, outs: 4,
		},
		{
			name: "combo draw dedupes shared outs", hole: "9h 8h", board: "7h 6h Kd",
			flush: true, openEnded: true, outs: 15,
		},
		{
			name: "backdoor flush on the flop", hole: "Ah 7h", board: "Kh 9c 2d",
			bdFlush: true, outs: 1.5,
		},
		{
			name: "backdoor straight on the flop", hole: "Jh Th", board: "9c 3d 2s",
			bdStraight: true, outs: 1.5,
		},
		{
			name: "no backdoors past the flop", hole: "Ah 7h", board: "Kh 9c 2d 3s",
			outs: 0,
		},
		{
			name: "made straight is not a draw", hole: "9c 8d", board: "7h 6s 5d",
			outs: 0,
		},
		{
			name: "made flush is not a draw", hole: "Ah Kh", board: "Qh 7h 2h",
			outs: 0,
		},
		{
			name: "backdoor wheel with an ace", hole: "Ah Kd", board: "9c 5s 2h",
			bdStraight: true, outs: 1.5,
		},
		{
			name: "no draw at all", hole: "Kh 8d", board: "3c 5s Jh",
			outs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := DetectDraws(mustCards(t, tt.hole), mustCards(t, tt.board))
			if d.FlushDraw != tt.flush {
				t.Errorf("FlushDraw = %v, want %v", d.FlushDraw, tt.flush)
			}
			if d.OpenEnded != tt.openEnded {
				t.Errorf("OpenEnded = %v, want %v", d.OpenEnded, tt.openEnded)
			}
			if d.Gutshot != tt.gutshot {
				t.Errorf("Gutshot = %v, want %v", d.Gutshot, tt.gutshot)
			}
			if d.BackdoorFlush != tt.bdFlush {
				t.Errorf("BackdoorFlush = %v, want %v", d.BackdoorFlush, tt.bdFlush)
			}
			if d.BackdoorStraight != tt.bdStraight {
				t.Errorf("BackdoorStraight = %v, want %v", d.BackdoorStraight, tt.bdStraight)
			}
			if d.Outs != tt.outs {
				t.Errorf("Outs = %v, want %v", d.Outs, tt.outs)
			}
		})
	}
}

func TestDetectDrawsCountsOvercards(t *testing.T) {
	t.Parallel()

	d := DetectDraws(mustCards(t, "Ah Kd"), mustCards(t, "9c 5s 2h"))
	if d.Overcards != 2 {
		t.Errorf("Overcards = %d, want 2", d.Overcards)
	}

	d = DetectDraws(mustCards(t, "Ah 4d"), mustCards(t, "9c 5s 2h"))
	if d.Overcards != 1 {
		t.Errorf("Overcards = %d, want 1", d.Overcards)
	}
}
