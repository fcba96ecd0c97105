package card

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{name: "ace of hearts", input: "Ah", want: Card{Rank: Ace, Suit: Hearts}},
		{name: "ten of diamonds", input: "Td", want: Card{Rank: Ten, Suit: Diamonds}},
		{name: "deuce of spades", input: "2s", want: Card{Rank: Two, Suit: Spades}},
		{name: "lowercase rank", input: "kh", want: Card{Rank: King, Suit: Hearts}},
		{name: "uppercase suit", input: "qC", want: Card{Rank: Queen, Suit: Clubs}},
		{name: "invalid rank", input: "Xh", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "Ahh", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "one is not a rank", input: "1h", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("Parse(%q) error = %v, want *ParseError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	t.Parallel()
	// Every canonical card string must survive parse → String unchanged.
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := New(rank, suit)
			parsed, err := Parse(c.String())
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", c.String(), err)
			}
			if parsed != c {
				t.Errorf("round trip %v -> %q -> %v", c, c.String(), parsed)
			}
		}
	}
}

func TestParseCanonicalizesCase(t *testing.T) {
	t.Parallel()
	c, err := Parse("aS")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.String() != "As" {
		t.Errorf("canonical form = %q, want %q", c.String(), "As")
	}
}

func TestParseMany(t *testing.T) {
	t.Parallel()
	cards, err := ParseMany("AhKd 2c")
	if err != nil {
		t.Fatalf("ParseMany failed: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	if Format(cards) != "AhKd2c" {
		t.Errorf("Format = %q, want %q", Format(cards), "AhKd2c")
	}

	if _, err := ParseMany("AhK"); err == nil {
		t.Error("ParseMany with odd length should fail")
	}
}

func TestCardJSON(t *testing.T) {
	t.Parallel()
	type wrapper struct {
		Hole []Card `json:"hole"`
	}

	in := wrapper{Hole: []Card{{Rank: Ace, Suit: Hearts}, {Rank: Ten, Suit: Diamonds}}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"hole":["Ah","Td"]}` {
		t.Errorf("marshal = %s", data)
	}

	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out.Hole) != 2 || out.Hole[0] != in.Hole[0] || out.Hole[1] != in.Hole[1] {
		t.Errorf("round trip mismatch: %v", out.Hole)
	}
}

func TestIsRed(t *testing.T) {
	t.Parallel()
	if !New(Ace, Hearts).IsRed() || !New(Two, Diamonds).IsRed() {
		t.Error("hearts and diamonds should be red")
	}
	if New(Ace, Spades).IsRed() || New(Two, Clubs).IsRed() {
		t.Error("spades and clubs should not be red")
	}
}
