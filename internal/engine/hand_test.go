package engine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/eval"
	"github.com/feltkit/holdemd/internal/randutil"
)

func mustCards(t *testing.T, s string) []card.Card {
	t.Helper()
	cards, err := card.ParseMany(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return cards
}

func totalChips(g *GameState) int64 {
	var sum int64
	for i := range g.Players {
		sum += g.Players[i].Stack + g.Players[i].TotalBet
	}
	return sum
}

func stacksOf(g *GameState) map[string]int64 {
	out := make(map[string]int64, len(g.Players))
	for i := range g.Players {
		out[g.Players[i].ID] = g.Players[i].Stack
	}
	return out
}

func TestNewHandRequiresTwoActivePlayers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		seats []SeatedPlayer
	}{
		{"empty table", nil},
		{"single player", seatsWithStacks(1000)},
		{"second player busted", []SeatedPlayer{
			{PlayerID: "a", SeatIndex: 0, Stack: 1000},
			{PlayerID: "b", SeatIndex: 1, Stack: 0},
		}},
		{"second player sitting out", []SeatedPlayer{
			{PlayerID: "a", SeatIndex: 0, Stack: 1000},
			{PlayerID: "b", SeatIndex: 1, Stack: 1000, SittingOut: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewHand(testConfig(), tt.seats, -1)
			if !errors.Is(err, ErrNotEnoughPlayers) {
				t.Errorf("got %v, want ErrNotEnoughPlayers", err)
			}
		})
	}
}

func TestNewHandRotatesDealerPastInactiveSeats(t *testing.T) {
	t.Parallel()
	seats := []SeatedPlayer{
		{PlayerID: "a", SeatIndex: 0, Stack: 1000},
		{PlayerID: "b", SeatIndex: 1, Stack: 0},
		{PlayerID: "c", SeatIndex: 2, Stack: 1000},
		{PlayerID: "d", SeatIndex: 3, Stack: 1000, SittingOut: true},
		{PlayerID: "e", SeatIndex: 4, Stack: 1000},
	}

	g, err := NewHand(testConfig(), seats, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Seat 1 is busted and seat 3 sits out: the button lands on seat 2.
	if got := g.Players[g.DealerIndex].ID; got != "c" {
		t.Errorf("dealer = %q, want c", got)
	}
	if got := g.Players[g.SBIndex].ID; got != "e" {
		t.Errorf("small blind = %q, want e", got)
	}
	if got := g.Players[g.BBIndex].ID; got != "a" {
		t.Errorf("big blind = %q, want a (wraps)", got)
	}
}

func TestNewHandDealerWrapsFromLastSeat(t *testing.T) {
	t.Parallel()
	g, err := NewHand(testConfig(), seatsWithStacks(1000, 1000, 1000), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Players[g.DealerIndex].ID; got != "a" {
		t.Errorf("dealer = %q, want a (wrap past the highest seat)", got)
	}
}

func TestStartHeadsUpBlindPosting(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000)

	sb, bb := &g.Players[0], &g.Players[1]
	if sb.Stack != 995 || sb.CurrentBet != 5 {
		t.Errorf("sb stack/bet = %d/%d, want 995/5", sb.Stack, sb.CurrentBet)
	}
	if bb.Stack != 990 || bb.CurrentBet != 10 {
		t.Errorf("bb stack/bet = %d/%d, want 990/10", bb.Stack, bb.CurrentBet)
	}
	if g.CurrentBet != 10 || g.LastRaiseAmount != 10 {
		t.Errorf("currentBet/lastRaise = %d/%d, want 10/10", g.CurrentBet, g.LastRaiseAmount)
	}
	if g.LastAggressorID != "b" || !g.LastRaiseWasComplete || g.BBHasActed {
		t.Errorf("aggressor/complete/bbActed = %q/%v/%v, want b/true/false",
			g.LastAggressorID, g.LastRaiseWasComplete, g.BBHasActed)
	}
	if g.Phase != Preflop || g.CurrentIndex != 0 {
		t.Errorf("phase/current = %v/%d, want preflop/0", g.Phase, g.CurrentIndex)
	}
	if g.TurnStartedAt != testTime.UnixMilli() {
		t.Errorf("turnStartedAt = %d, want %d", g.TurnStartedAt, testTime.UnixMilli())
	}
}

func TestStartDealsTwoCardsEach(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000, 1000)

	seen := make(map[card.Card]bool)
	for i := range g.Players {
		if len(g.Players[i].HoleCards) != 2 {
			t.Fatalf("player %s has %d hole cards, want 2", g.Players[i].ID, len(g.Players[i].HoleCards))
		}
		for _, c := range g.Players[i].HoleCards {
			if seen[c] {
				t.Errorf("card %s dealt twice", c)
			}
			seen[c] = true
		}
	}
	if len(g.Deck) != 52-8 {
		t.Errorf("deck remainder = %d, want 44", len(g.Deck))
	}
}

func TestStartIsDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	build := func() *GameState {
		g, err := NewHand(testConfig(), seatsWithStacks(1000, 1000, 1000), -1)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.Start(testTime, randutil.New(42)); err != nil {
			t.Fatal(err)
		}
		return g
	}

	g1, g2 := build(), build()
	for i := range g1.Players {
		for j, c := range g1.Players[i].HoleCards {
			if g2.Players[i].HoleCards[j] != c {
				t.Fatalf("hole cards diverge for player %d", i)
			}
		}
	}
	for i, c := range g1.Deck {
		if g2.Deck[i] != c {
			t.Fatalf("deck diverges at %d", i)
		}
	}
}

func TestMinimumRaiseChain(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000)

	act(t, g, "a", Raise, 30)
	act(t, g, "b", Raise, 70) // 70 >= 30 + 20

	// 80 is under the 110 minimum (70 + last full raise of 40). The legacy
	// double-the-bet rule would also wrongly reject 110; both sides matter.
	_, err := g.ProcessAction(ActionInput{PlayerID: "c", Action: Raise, Amount: 80}, testTime)
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("raise to 80: got %v, want RuleError", err)
	}

	act(t, g, "c", Raise, 110)
	if g.CurrentBet != 110 || g.LastRaiseAmount != 40 {
		t.Errorf("currentBet/lastRaise = %d/%d, want 110/40", g.CurrentBet, g.LastRaiseAmount)
	}
	if g.LastAggressorID != "c" {
		t.Errorf("aggressor = %q, want c", g.LastAggressorID)
	}
}

func TestUnderRaiseLock(t *testing.T) {
	t.Parallel()
	// b reaches the flop with exactly 450 behind so the shove is a short
	// raise of 150 over c's full raise of 200.
	g := startHand(t, 1000, 460, 1000)
	act(t, g, "a", Call, 0)
	act(t, g, "b", Call, 0)
	act(t, g, "c", Check, 0)
	if g.Phase != Flop {
		t.Fatalf("phase = %v, want flop", g.Phase)
	}

	act(t, g, "b", Bet, 100)
	act(t, g, "c", Raise, 300)
	act(t, g, "a", Call, 300)
	res := act(t, g, "b", AllIn, 0)

	if res.Entry.Amount != 450 {
		t.Fatalf("all-in total = %d, want 450", res.Entry.Amount)
	}
	if g.LastRaiseWasComplete {
		t.Fatal("a 150 raise over a 200 raise must not count as complete")
	}
	if g.CurrentBet != 450 || g.LastRaiseAmount != 200 {
		t.Errorf("currentBet/lastRaise = %d/%d, want 450/200", g.CurrentBet, g.LastRaiseAmount)
	}

	// c made the last full raise: locked to call or fold.
	va := g.ValidActions()
	if va.PlayerID != "c" {
		t.Fatalf("current = %q, want c", va.PlayerID)
	}
	if va.CanRaise || va.CanAllIn {
		t.Errorf("raise/all-in = %v/%v for the locked aggressor, want false/false", va.CanRaise, va.CanAllIn)
	}
	if !va.CanCall || va.CallAmount != 150 {
		t.Errorf("call = %v %d, want true 150", va.CanCall, va.CallAmount)
	}
	if _, err := g.ProcessAction(ActionInput{PlayerID: "c", Action: Raise, Amount: 650}, testTime); err == nil {
		t.Error("locked aggressor's raise was accepted")
	}

	act(t, g, "c", Call, 0)

	// a never made a full raise this round, so the shove does not lock a.
	va = g.ValidActions()
	if va.PlayerID != "a" {
		t.Fatalf("current = %q, want a", va.PlayerID)
	}
	if !va.CanRaise || va.MinRaise != 650 {
		t.Errorf("raise = %v min %d, want true 650", va.CanRaise, va.MinRaise)
	}

	before := totalChips(g)
	act(t, g, "a", Call, 0)
	if g.Phase != Turn {
		t.Errorf("phase = %v, want turn", g.Phase)
	}
	if totalChips(g) != before {
		t.Errorf("chips changed across phase advance: %d != %d", totalChips(g), before)
	}
}

func TestBigBlindOptionRaiseReopensAction(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000)
	act(t, g, "a", Call, 0)
	act(t, g, "b", Call, 0)

	// The option bet is bookkept as a raise.
	res := act(t, g, "c", Bet, 30)
	if res.Entry.Action != Raise || res.Entry.Amount != 30 {
		t.Errorf("logged action = %v %d, want raise 30", res.Entry.Action, res.Entry.Amount)
	}
	if g.Phase != Preflop {
		t.Fatalf("phase = %v, the raise must keep the round open", g.Phase)
	}
	if g.LastAggressorID != "c" || g.LastRaiseAmount != 20 {
		t.Errorf("aggressor/lastRaise = %q/%d, want c/20", g.LastAggressorID, g.LastRaiseAmount)
	}

	act(t, g, "a", Call, 0)
	act(t, g, "b", Call, 0)
	if g.Phase != Flop {
		t.Errorf("phase = %v, want flop", g.Phase)
	}
}

func TestFoldToBetEndsHandWithRefund(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000)

	act(t, g, "a", Raise, 200)
	act(t, g, "b", Fold, 0)
	res := act(t, g, "c", Fold, 0)

	if !g.HandComplete || !res.HandComplete {
		t.Fatal("hand should be complete after the folds")
	}
	if res.Refund == nil || res.Refund.PlayerID != "a" || res.Refund.Amount != 190 {
		t.Fatalf("refund = %+v, want 190 to a", res.Refund)
	}
	if len(g.Winners) != 1 || g.Winners[0].PlayerID != "a" || g.Winners[0].Amount != 25 {
		t.Fatalf("winners = %+v, want a taking 25", g.Winners)
	}
	if g.Winners[0].Hand != nil {
		t.Error("no showdown: the winning hand must not be recorded")
	}

	stacks := stacksOf(g)
	if stacks["a"] != 1015 || stacks["b"] != 995 || stacks["c"] != 990 {
		t.Errorf("stacks = %v, want a=1015 b=995 c=990", stacks)
	}
}

func TestAllInPreflopRunsOutBoard(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000)
	before := totalChips(g)

	act(t, g, "a", AllIn, 0)
	res := act(t, g, "b", Call, 0)

	if !g.HandComplete {
		t.Fatal("hand should run out to completion")
	}
	if len(res.PhaseChanges) != 3 {
		t.Fatalf("got %d phase changes, want flop+turn+river", len(res.PhaseChanges))
	}
	wantLens := []int{3, 4, 5}
	for i, pc := range res.PhaseChanges {
		if len(pc.Community) != wantLens[i] {
			t.Errorf("street %d community = %d cards, want %d", i, len(pc.Community), wantLens[i])
		}
	}
	if len(g.Community) != 5 {
		t.Errorf("community = %d cards, want 5", len(g.Community))
	}
	if len(g.Winners) == 0 {
		t.Error("no winners recorded")
	}
	for _, w := range g.Winners {
		if w.Hand == nil {
			t.Errorf("showdown winner %s has no evaluated hand", w.PlayerID)
		}
	}

	var stacks int64
	for i := range g.Players {
		stacks += g.Players[i].Stack
	}
	if stacks != before {
		t.Errorf("stacks after hand = %d, want %d", stacks, before)
	}
}

func TestBlindsAllInRunsOutFromStart(t *testing.T) {
	t.Parallel()
	g, err := NewHand(testConfig(), seatsWithStacks(4, 7), -1)
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Start(testTime, randutil.New(42))
	if err != nil {
		t.Fatal(err)
	}

	if !g.HandComplete || !res.HandComplete {
		t.Fatal("blind-forced all-ins should run straight to showdown")
	}
	if len(res.PhaseChanges) != 3 {
		t.Errorf("got %d phase changes, want 3", len(res.PhaseChanges))
	}
	if res.Refund == nil || res.Refund.PlayerID != "b" || res.Refund.Amount != 3 {
		t.Errorf("refund = %+v, want 3 back to b", res.Refund)
	}

	var stacks int64
	for i := range g.Players {
		stacks += g.Players[i].Stack
	}
	if stacks != 11 {
		t.Errorf("total chips = %d, want 11", stacks)
	}
}

func TestShowdownSidePotsPayLadder(t *testing.T) {
	t.Parallel()
	// Stacks 100/200/500 all in: c's unmatched 300 comes back, a's aces win
	// the main pot, b's kings the side pot.
	g := &GameState{
		TableID:     "tbl-1",
		HandNumber:  7,
		Phase:       River,
		BigBlind:    10,
		SmallBlind:  5,
		DealerIndex: 0,
		SBIndex:     1,
		BBIndex:     2,
		Community:   mustCards(t, "2c 7d 9h 3s 5c"),
		Players: []HandPlayer{
			{ID: "a", SeatIndex: 0, Stack: 0, TotalBet: 100, AllIn: true, HoleCards: mustCards(t, "Ah Ad")},
			{ID: "b", SeatIndex: 1, Stack: 0, TotalBet: 200, AllIn: true, HoleCards: mustCards(t, "Kh Kd")},
			{ID: "c", SeatIndex: 2, Stack: 0, TotalBet: 500, AllIn: true, HoleCards: mustCards(t, "Qh Qd")},
		},
	}

	res := &Result{}
	g.endHand(res)

	if res.Refund == nil || res.Refund.PlayerID != "c" || res.Refund.Amount != 300 {
		t.Fatalf("refund = %+v, want 300 to c", res.Refund)
	}
	if len(g.Pots) != 2 || g.Pots[0].Amount != 300 || g.Pots[1].Amount != 200 {
		t.Fatalf("pots = %+v, want 300 and 200", g.Pots)
	}

	stacks := stacksOf(g)
	if stacks["a"] != 300 || stacks["b"] != 200 || stacks["c"] != 300 {
		t.Errorf("stacks = %v, want a=300 b=200 c=300", stacks)
	}

	if len(g.Winners) != 2 {
		t.Fatalf("winners = %+v, want two entries", g.Winners)
	}
	if w := g.Winners[0]; w.PlayerID != "a" || w.PotIndex != 0 || w.Amount != 300 {
		t.Errorf("main pot winner = %+v, want a/0/300", w)
	}
	if w := g.Winners[1]; w.PlayerID != "b" || w.PotIndex != 1 || w.Amount != 200 {
		t.Errorf("side pot winner = %+v, want b/1/200", w)
	}
	if g.Winners[0].Hand == nil || g.Winners[0].Hand.Category != eval.Pair {
		t.Errorf("winning hand = %+v, want a pair of aces", g.Winners[0].Hand)
	}
}

func TestShowdownSplitPotOddChip(t *testing.T) {
	t.Parallel()
	// Board plays for both live hands; the folded small blind's 5 chips make
	// the pot odd. The extra chip lands left of the dealer first.
	g := &GameState{
		TableID:     "tbl-1",
		HandNumber:  8,
		Phase:       River,
		BigBlind:    10,
		SmallBlind:  5,
		DealerIndex: 0,
		SBIndex:     1,
		BBIndex:     2,
		Community:   mustCards(t, "Ah Kh Qh Jh Th"),
		Players: []HandPlayer{
			{ID: "a", SeatIndex: 0, Stack: 90, TotalBet: 10, HoleCards: mustCards(t, "2c 3c")},
			{ID: "b", SeatIndex: 1, Stack: 95, TotalBet: 5, Folded: true},
			{ID: "c", SeatIndex: 2, Stack: 90, TotalBet: 10, HoleCards: mustCards(t, "2d 3d")},
		},
	}

	g.endHand(&Result{})

	if len(g.Pots) != 1 || g.Pots[0].Amount != 25 {
		t.Fatalf("pots = %+v, want a single 25 pot", g.Pots)
	}
	for _, id := range g.Pots[0].Eligible {
		if id == "b" {
			t.Error("folded player is eligible for the pot")
		}
	}

	stacks := stacksOf(g)
	if stacks["c"] != 103 || stacks["a"] != 102 {
		t.Errorf("stacks = %v, want c=103 (odd chip) a=102", stacks)
	}
	if stacks["b"] != 95 {
		t.Errorf("folded player stack = %d, want 95", stacks["b"])
	}
}

func TestProcessActionRejections(t *testing.T) {
	t.Parallel()

	t.Run("out of turn", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000, 1000)
		_, err := g.ProcessAction(ActionInput{PlayerID: "b", Action: Call}, testTime)
		var ruleErr *RuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("got %v, want RuleError", err)
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		_, err := g.ProcessAction(ActionInput{PlayerID: "zz", Action: Fold}, testTime)
		if !errors.Is(err, ErrUnknownPlayer) {
			t.Errorf("got %v, want ErrUnknownPlayer", err)
		}
	})

	t.Run("check facing a bet", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		_, err := g.ProcessAction(ActionInput{PlayerID: "a", Action: Check}, testTime)
		var ruleErr *RuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("got %v, want RuleError", err)
		}
	})

	t.Run("bet into open action", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		_, err := g.ProcessAction(ActionInput{PlayerID: "a", Action: Bet, Amount: 50}, testTime)
		var ruleErr *RuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("got %v, want RuleError", err)
		}
	})

	t.Run("raise above stack", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		_, err := g.ProcessAction(ActionInput{PlayerID: "a", Action: Raise, Amount: 2000}, testTime)
		var ruleErr *RuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("got %v, want RuleError", err)
		}
	})

	t.Run("action after completion", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		act(t, g, "a", Fold, 0)
		_, err := g.ProcessAction(ActionInput{PlayerID: "b", Action: Check}, testTime)
		if !errors.Is(err, ErrHandComplete) {
			t.Errorf("got %v, want ErrHandComplete", err)
		}
	})

	t.Run("rejection leaves state untouched", func(t *testing.T) {
		t.Parallel()
		g := startHand(t, 1000, 1000)
		before := totalChips(g)
		_, _ = g.ProcessAction(ActionInput{PlayerID: "a", Action: Raise, Amount: 2000}, testTime)
		if totalChips(g) != before {
			t.Error("a rejected action moved chips")
		}
		if len(g.ActionLog) != 0 {
			t.Error("a rejected action was logged")
		}
	})
}

func TestActionLogRecordsMetadata(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000)

	res, err := g.ProcessAction(ActionInput{
		PlayerID:  "a",
		Action:    Fold,
		ActionID:  "req-42",
		IsTimeout: true,
	}, testTime)
	if err != nil {
		t.Fatal(err)
	}

	entry := res.Entry
	if entry.ActionID != "req-42" || !entry.IsTimeout {
		t.Errorf("entry = %+v, want actionId req-42 with timeout flag", entry)
	}
	if entry.Phase != Preflop || entry.At != testTime.UnixMilli() {
		t.Errorf("entry phase/at = %v/%d, want preflop/%d", entry.Phase, entry.At, testTime.UnixMilli())
	}
	if len(g.ActionLog) != 1 || g.ActionLog[0] != entry {
		t.Errorf("action log = %+v, want the returned entry", g.ActionLog)
	}
}

func TestSanitizeHidesPrivateState(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000)

	s := g.Sanitize("b")
	if s.Deck != nil {
		t.Error("sanitized state leaks the deck")
	}
	if len(s.Players[1].HoleCards) != 2 {
		t.Error("viewer lost their own hole cards")
	}
	if s.Players[0].HoleCards != nil || s.Players[2].HoleCards != nil {
		t.Error("foreign hole cards leaked")
	}
	if len(g.Players[0].HoleCards) != 2 {
		t.Error("sanitizing mutated the source state")
	}
}

func TestSanitizeRevealsShowdownHands(t *testing.T) {
	t.Parallel()
	g := startHand(t, 1000, 1000, 1000)
	act(t, g, "a", Fold, 0)
	act(t, g, "b", AllIn, 0)
	act(t, g, "c", Call, 0)
	if !g.HandComplete {
		t.Fatal("expected a showdown")
	}

	s := g.Sanitize("spectator")
	if s.Players[0].HoleCards != nil {
		t.Error("folded player's cards revealed")
	}
	if len(s.Players[1].HoleCards) != 2 || len(s.Players[2].HoleCards) != 2 {
		t.Error("unfolded showdown hands must be public")
	}
}

// TestRandomHandsConserveChips plays randomized hands end to end, always
// choosing among the advertised legal actions, and checks conservation and
// termination for every one.
func TestRandomHandsConserveChips(t *testing.T) {
	t.Parallel()
	rng := randutil.New(42)

	for trial := 0; trial < 150; trial++ {
		n := 2 + rng.IntN(5)
		stacks := make([]int64, n)
		var before int64
		for i := range stacks {
			stacks[i] = int64(20 + rng.IntN(2000))
			before += stacks[i]
		}

		g, err := NewHand(testConfig(), seatsWithStacks(stacks...), rng.IntN(n))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.Start(testTime, rng); err != nil {
			t.Fatal(err)
		}

		for steps := 0; !g.HandComplete; steps++ {
			if steps > 500 {
				t.Fatalf("trial %d: hand did not terminate", trial)
			}
			if got := totalChips(g); got != before {
				t.Fatalf("trial %d: chips in flight %d, want %d", trial, got, before)
			}

			va := g.ValidActions()
			if va.PlayerID == "" {
				t.Fatalf("trial %d: no actor but hand incomplete (phase %v)", trial, g.Phase)
			}
			in := pickAction(rng, va)
			if _, err := g.ProcessAction(in, testTime); err != nil {
				t.Fatalf("trial %d: advertised action %s %d rejected: %v",
					trial, in.Action, in.Amount, err)
			}
		}

		var after int64
		for i := range g.Players {
			after += g.Players[i].Stack
			if g.Players[i].Stack < 0 {
				t.Fatalf("trial %d: negative stack for %s", trial, g.Players[i].ID)
			}
		}
		if after != before {
			t.Fatalf("trial %d: chips after hand %d, want %d", trial, after, before)
		}

		for _, p := range g.Pots {
			for _, id := range p.Eligible {
				if pl := g.Player(id); pl.Folded {
					t.Fatalf("trial %d: folded player %s eligible for a pot", trial, id)
				}
			}
		}
	}
}

// pickAction draws a random legal action, weighted towards passive lines so
// hands reach later streets.
func pickAction(rng *rand.Rand, va ValidActions) ActionInput {
	in := ActionInput{PlayerID: va.PlayerID}
	for {
		switch rng.IntN(10) {
		case 0:
			in.Action = Fold
			return in
		case 1, 2:
			if va.CanCheck {
				in.Action = Check
				return in
			}
		case 3, 4, 5, 6:
			if va.CanCall {
				in.Action = Call
				return in
			}
			if va.CanCheck {
				in.Action = Check
				return in
			}
		case 7:
			if va.CanBet {
				in.Action = Bet
				in.Amount = va.MinBet + int64(rng.IntN(int(va.MaxBet-va.MinBet)+1))
				return in
			}
		case 8:
			if va.CanRaise {
				in.Action = Raise
				in.Amount = va.MinRaise + int64(rng.IntN(int(va.MaxRaise-va.MinRaise)+1))
				return in
			}
		case 9:
			if va.CanAllIn {
				in.Action = AllIn
				return in
			}
		}
	}
}
