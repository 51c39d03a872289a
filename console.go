package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/RedPaladin7/lanjack/blackjack"
)

const (
	optionHit   = "Hit"
	optionStand = "Stand"
)

// consoleDecider asks the player at the terminal.
type consoleDecider struct{}

func (consoleDecider) Decide(v blackjack.RoundView) (blackjack.Decision, error) {
	pterm.Info.Printfln("Round %d/%d  your hand: %s (%d)  dealer shows: %s",
		v.Round, v.Rounds, formatHand(v.Hand), v.Total, v.DealerUp)
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{optionHit, optionStand}).
		WithDefaultText("Hit or stand?").
		Show()
	if err != nil {
		return "", err
	}
	if choice == optionHit {
		return blackjack.DecisionHit, nil
	}
	return blackjack.DecisionStand, nil
}

func askRounds() (int, error) {
	for {
		in, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText("How many rounds? (1-255)").
			WithDefaultValue("3").
			Show()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(in))
		if err != nil || n < 1 || n > 255 {
			pterm.Warning.Printfln("%q is not a number between 1 and 255", in)
			continue
		}
		return n, nil
	}
}

func formatHand(cards []blackjack.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Short()
	}
	return strings.Join(parts, " ")
}

func printRound(out blackjack.RoundOutcome) {
	body := fmt.Sprintf("You:    %s (%d)\nDealer: %s (%d)",
		formatHand(out.Hand), out.PlayerTotal, formatHand(out.Dealer), out.DealerTotal)
	var title string
	switch out.Result {
	case blackjack.ResultWin:
		title = pterm.LightGreen("|WIN|")
	case blackjack.ResultLoss:
		title = pterm.LightRed("|LOSS|")
	default:
		title = pterm.LightYellow("|TIE|")
	}
	pterm.DefaultBox.
		WithTitle(title).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(body)
}

func printSummary(server string, t blackjack.Tally) {
	pterm.Success.Printfln("Finished playing %d rounds against %s, win rate: %.0f%% (W/L/T %s)",
		t.Rounds(), server, t.WinRate()*100, t)
}
