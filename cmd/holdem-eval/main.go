package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/feltkit/holdemd/internal/advisor"
	"github.com/feltkit/holdemd/internal/card"
	"github.com/feltkit/holdemd/internal/engine"
	"github.com/feltkit/holdemd/internal/eval"
	"github.com/feltkit/holdemd/internal/randutil"
)

var cli struct {
	Eval    EvalCmd    `cmd:"" help:"Evaluate the best five-card hand from 5-7 cards"`
	Compare CompareCmd `cmd:"" help:"Rank hole hands against each other on a board"`
	Odds    OddsCmd    `cmd:"" help:"Monte Carlo equity between hole hands"`
	Advise  AdviseCmd  `cmd:"" help:"Play seeded hands with the advisor and show its reasoning"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("holdem-eval"),
		kong.Description("Hand evaluation, equity and advisor tooling"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// EvalCmd evaluates a single set of cards.
type EvalCmd struct {
	Cards string `arg:"" help:"5 to 7 cards, e.g. 'AhKh 7s8d9c' or 'AhKh7s8d9c'"`
}

func (cmd *EvalCmd) Run() error {
	cards, err := card.ParseMany(cmd.Cards)
	if err != nil {
		return err
	}
	hand, err := eval.Evaluate(cards)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", handStyle.Render(formatCards(hand.Cards)))
	fmt.Printf("%s\n", categoryStyle.Render(hand.Description))
	return nil
}

// CompareCmd ranks two or more hole hands on a fixed board.
type CompareCmd struct {
	Hands []string `arg:"" required:"" help:"Hole hands of two cards each, e.g. 'AhKh' 'QdQs'"`
	Board string   `short:"b" required:"" help:"Board of 3 to 5 cards, e.g. 'Td7s8h'"`
}

func (cmd *CompareCmd) Run() error {
	hands, err := parseHoleHands(cmd.Hands)
	if err != nil {
		return err
	}
	if len(hands) < 2 {
		return fmt.Errorf("need at least two hands to compare")
	}
	board, err := card.ParseMany(cmd.Board)
	if err != nil {
		return fmt.Errorf("parsing board: %w", err)
	}
	if len(board) < 3 || len(board) > 5 {
		return fmt.Errorf("board must have 3 to 5 cards, got %d", len(board))
	}
	if err := validateNoDuplicates(hands, board); err != nil {
		return err
	}

	type ranked struct {
		hole []card.Card
		best eval.EvaluatedHand
	}
	results := make([]ranked, len(hands))
	for i, hole := range hands {
		best, err := eval.Evaluate(append(append([]card.Card{}, hole...), board...))
		if err != nil {
			return err
		}
		results[i] = ranked{hole: hole, best: best}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return eval.Compare(results[i].best, results[j].best) > 0
	})

	fmt.Printf("%s  %s\n\n", headerStyle.Render("board"), formatCards(board))
	place := 1
	for i, r := range results {
		if i > 0 && eval.Compare(results[i-1].best, r.best) != 0 {
			place = i + 1
		}
		line := fmt.Sprintf("%d. %s  %s", place,
			handStyle.Render(formatCards(r.hole)),
			categoryStyle.Render(r.best.Description))
		if place == 1 {
			line = winStyle.Render("▸") + " " + line
		} else {
			line = "  " + line
		}
		fmt.Println(line)
	}
	return nil
}

// OddsCmd runs a Monte Carlo equity calculation.
type OddsCmd struct {
	Hands      []string `arg:"" required:"" help:"Hole hands of two cards each, e.g. 'AhKh' 'QdQs'"`
	Board      string   `short:"b" help:"Community cards dealt so far (e.g. 'Td7s8h')"`
	Iterations int      `short:"i" default:"100000" help:"Number of Monte Carlo iterations"`
	Seed       *int64   `help:"Random seed for reproducible results"`
	Breakdown  bool     `short:"p" help:"Show hand category frequencies per player"`
}

type playerResult struct {
	hole       []card.Card
	wins       int
	ties       int
	total      int
	categories map[eval.Category]int
}

func (cmd *OddsCmd) Run() error {
	if cmd.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive (got %d)", cmd.Iterations)
	}
	hands, err := parseHoleHands(cmd.Hands)
	if err != nil {
		return err
	}
	var board []card.Card
	if cmd.Board != "" {
		board, err = card.ParseMany(cmd.Board)
		if err != nil {
			return fmt.Errorf("parsing board: %w", err)
		}
		if len(board) > 5 {
			return fmt.Errorf("board cannot have more than 5 cards")
		}
	}
	if err := validateNoDuplicates(hands, board); err != nil {
		return err
	}

	var seed int64
	if cmd.Seed != nil {
		seed = *cmd.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	start := time.Now()
	results, err := simulateEquity(hands, board, cmd.Iterations, rng)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	displayOdds(results, board, cmd.Breakdown, cmd.Iterations, duration)
	return nil
}

// simulateEquity completes the board at random for each iteration and scores
// every hand against the others.
func simulateEquity(hands [][]card.Card, board []card.Card, iterations int, rng *rand.Rand) ([]playerResult, error) {
	results := make([]playerResult, len(hands))
	for i := range results {
		results[i].hole = hands[i]
		results[i].total = iterations
		results[i].categories = make(map[eval.Category]int)
	}

	used := make(map[card.Card]bool)
	for _, c := range board {
		used[c] = true
	}
	for _, hand := range hands {
		for _, c := range hand {
			used[c] = true
		}
	}
	var available []card.Card
	for _, c := range card.NewDeck().Cards() {
		if !used[c] {
			available = append(available, c)
		}
	}

	need := 5 - len(board)
	if len(available) < need {
		return nil, fmt.Errorf("not enough cards left in the deck to finish the board")
	}
	fullBoard := make([]card.Card, 5)
	copy(fullBoard, board)
	seven := make([]card.Card, 7)
	evaluated := make([]eval.EvaluatedHand, len(hands))

	for iter := 0; iter < iterations; iter++ {
		// Partial Fisher-Yates: the first `need` cards are this run-out.
		for i := 0; i < need; i++ {
			j := i + rng.IntN(len(available)-i)
			available[i], available[j] = available[j], available[i]
			fullBoard[len(board)+i] = available[i]
		}

		for i, hand := range hands {
			copy(seven[:2], hand)
			copy(seven[2:], fullBoard)
			best, err := eval.Evaluate(seven)
			if err != nil {
				return nil, err
			}
			evaluated[i] = best
			results[i].categories[best.Category]++
		}

		best := evaluated[0]
		for i := 1; i < len(evaluated); i++ {
			if eval.Compare(evaluated[i], best) > 0 {
				best = evaluated[i]
			}
		}
		winners := 0
		for i := range evaluated {
			if eval.Compare(evaluated[i], best) == 0 {
				winners++
			}
		}
		for i := range evaluated {
			if eval.Compare(evaluated[i], best) == 0 {
				if winners == 1 {
					results[i].wins++
				} else {
					results[i].ties++
				}
			}
		}
	}
	return results, nil
}

func displayOdds(results []playerResult, board []card.Card, breakdown bool, iterations int, duration time.Duration) {
	if len(board) > 0 {
		fmt.Printf("%s\n", headerStyle.Render("board"))
		fmt.Printf("%s\n\n", formatCards(board))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"))
	for _, r := range results {
		winPct := float64(r.wins) / float64(r.total) * 100
		tiePct := float64(r.ties) / float64(r.total) * 100
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			handStyle.Render(formatCards(r.hole)),
			winStyle.Render(fmt.Sprintf("%.1f%%", winPct)),
			tieStyle.Render(fmt.Sprintf("%.1f%%", tiePct)))
	}
	w.Flush()

	if breakdown {
		fmt.Printf("\n")
		displayBreakdown(results)
	}

	fmt.Printf("\n%d iterations in %v\n", iterations, duration.Truncate(time.Millisecond))
}

func displayBreakdown(results []playerResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", categoryStyle.Render("hand"))
	for _, r := range results {
		fmt.Fprintf(w, "\t%s", handStyle.Render(formatCards(r.hole)))
	}
	fmt.Fprintf(w, "\n")

	for c := eval.RoyalFlush; c >= eval.HighCard; c-- {
		seen := false
		for _, r := range results {
			if r.categories[c] > 0 {
				seen = true
				break
			}
		}
		if !seen {
			continue
		}
		fmt.Fprintf(w, "%s", categoryStyle.Render(prettyCategory(c)))
		for _, r := range results {
			count := r.categories[c]
			if count > 0 {
				pct := float64(count) / float64(r.total) * 100
				fmt.Fprintf(w, "\t%s", percentStyle.Render(fmt.Sprintf("%.1f%%", pct)))
			} else {
				fmt.Fprintf(w, "\t%s", percentStyle.Render("."))
			}
		}
		fmt.Fprintf(w, "\n")
	}
	w.Flush()
}

// AdviseCmd deals seeded hands and lets the advisor play every seat,
// printing each suggestion with its rationale.
type AdviseCmd struct {
	Players    int    `short:"n" default:"3" help:"Players dealt in (2-10)"`
	Hands      int    `default:"1" help:"Number of hands to play"`
	Seed       *int64 `help:"Random seed for reproducible deals"`
	SmallBlind int64  `default:"5" help:"Small blind"`
	BigBlind   int64  `default:"10" help:"Big blind"`
	Stack      int64  `default:"1000" help:"Starting stack per player"`
}

func (cmd *AdviseCmd) Run() error {
	if cmd.Players < 2 || cmd.Players > 10 {
		return fmt.Errorf("players must be between 2 and 10 (got %d)", cmd.Players)
	}
	if cmd.Hands < 1 {
		return fmt.Errorf("hands must be positive (got %d)", cmd.Hands)
	}
	if cmd.SmallBlind <= 0 || cmd.BigBlind <= cmd.SmallBlind {
		return fmt.Errorf("invalid blinds %d/%d", cmd.SmallBlind, cmd.BigBlind)
	}

	var seed int64
	if cmd.Seed != nil {
		seed = *cmd.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)
	adv := advisor.New(rng)

	seats := make([]engine.SeatedPlayer, cmd.Players)
	for i := range seats {
		seats[i] = engine.SeatedPlayer{
			PlayerID:  fmt.Sprintf("p%d", i+1),
			SeatIndex: i,
			Stack:     cmd.Stack,
		}
	}

	fmt.Printf("%s  players %d  blinds %d/%d  seed %d\n",
		headerStyle.Render("advisor dry-run"),
		cmd.Players, cmd.SmallBlind, cmd.BigBlind, seed)

	dealerSeat := -1
	for h := int64(1); h <= int64(cmd.Hands); h++ {
		next, err := playAdvisedHand(adv, rng, seats, dealerSeat, h, cmd.SmallBlind, cmd.BigBlind)
		if err != nil {
			if h > 1 && errors.Is(err, engine.ErrNotEnoughPlayers) {
				fmt.Printf("\n%s\n", dimStyle.Render("not enough players with chips left"))
				return nil
			}
			return err
		}
		dealerSeat = next
	}
	return nil
}

// playAdvisedHand runs one complete hand with the advisor acting for every
// seat and returns the dealer seat for the next hand.
func playAdvisedHand(adv *advisor.Advisor, rng *rand.Rand, seats []engine.SeatedPlayer, dealerSeat int, handNumber, smallBlind, bigBlind int64) (int, error) {
	cfg := engine.Config{
		TableID:    "dry-run",
		HandNumber: handNumber,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
	}
	g, err := engine.NewHand(cfg, seats, dealerSeat)
	if err != nil {
		return dealerSeat, err
	}
	res, err := g.Start(time.Now(), rng)
	if err != nil {
		return dealerSeat, err
	}

	fmt.Printf("\n%s  dealer %s\n",
		headerStyle.Render(fmt.Sprintf("hand %d", handNumber)),
		g.Players[g.DealerIndex].ID)
	for i := range g.Players {
		p := &g.Players[i]
		if !p.InHand() {
			continue
		}
		fmt.Printf("  %-4s %s  %s\n", p.ID,
			handStyle.Render(formatCards(p.HoleCards)),
			dimStyle.Render(fmt.Sprintf("stack %d", p.Stack+p.TotalBet)))
	}
	fmt.Printf("%s  pot %d\n", categoryStyle.Render("preflop"), g.TotalPot())
	printTransitions(res)

	for !g.HandComplete {
		idx := g.CurrentIndex
		p := &g.Players[idx]
		sug := adv.Suggest(g, idx)
		fmt.Printf("  %-4s %s  %s\n", p.ID,
			actionPhrase(sug),
			dimStyle.Render(fmt.Sprintf("%s (%.2f)", sug.Rationale, sug.Confidence)))

		res, err = g.ProcessAction(engine.ActionInput{
			PlayerID: p.ID,
			Action:   sug.Action,
			Amount:   sug.Amount,
		}, time.Now())
		if err != nil {
			return dealerSeat, fmt.Errorf("advisor produced an illegal action: %w", err)
		}
		printTransitions(res)
	}

	for _, w := range g.Winners {
		detail := "takes it uncontested"
		if w.Hand != nil {
			detail = "with " + w.Hand.Description
		}
		fmt.Printf("%s %s wins %d %s\n",
			winStyle.Render("▸"), w.PlayerID, w.Amount, detail)
	}

	// Carry stacks into the next hand.
	for i := range seats {
		if p := g.Player(seats[i].PlayerID); p != nil {
			seats[i].Stack = p.Stack
		}
	}
	return g.Players[g.DealerIndex].SeatIndex, nil
}

func printTransitions(res *engine.Result) {
	if res == nil {
		return
	}
	if res.Refund != nil {
		fmt.Printf("  %s\n", dimStyle.Render(
			fmt.Sprintf("%d uncalled returned to %s", res.Refund.Amount, res.Refund.PlayerID)))
	}
	for _, pc := range res.PhaseChanges {
		fmt.Printf("%s  %s\n",
			categoryStyle.Render(pc.Phase.String()),
			handStyle.Render(formatCards(pc.Community)))
	}
}

func actionPhrase(s advisor.Suggestion) string {
	switch s.Action {
	case engine.Fold:
		return "folds"
	case engine.Check:
		return "checks"
	case engine.Call:
		return fmt.Sprintf("calls %d", s.Amount)
	case engine.Bet:
		return fmt.Sprintf("bets %d", s.Amount)
	case engine.Raise:
		return fmt.Sprintf("raises to %d", s.Amount)
	case engine.AllIn:
		return "moves all in"
	default:
		return s.Action.String()
	}
}

func parseHoleHands(args []string) ([][]card.Card, error) {
	hands := make([][]card.Card, 0, len(args))
	for i, arg := range args {
		hand, err := card.ParseMany(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		if len(hand) != 2 {
			return nil, fmt.Errorf("hand %d: must contain exactly 2 cards, got %d", i+1, len(hand))
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

func validateNoDuplicates(hands [][]card.Card, board []card.Card) error {
	seen := make(map[card.Card]bool)
	for _, c := range board {
		if seen[c] {
			return fmt.Errorf("duplicate card: %s", c)
		}
		seen[c] = true
	}
	for i, hand := range hands {
		for _, c := range hand {
			if seen[c] {
				return fmt.Errorf("duplicate card in hand %d: %s", i+1, c)
			}
			seen[c] = true
		}
	}
	return nil
}

func prettyCategory(c eval.Category) string {
	return strings.ReplaceAll(c.String(), "_", " ")
}

func formatCards(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
