package strategy

import (
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

var (
	suits = []poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade}

	// higherIsBetter records the direction of the evaluator's scores,
	// probed once with a royal flush against a high-card hand.
	higherIsBetter = probeScoreDirection()
)

func probeScoreDirection() bool {
	royal := [5]poker.Card{
		mustCard(poker.Spade, 1), mustCard(poker.Spade, 13), mustCard(poker.Spade, 12),
		mustCard(poker.Spade, 11), mustCard(poker.Spade, 10),
	}
	junk := [5]poker.Card{
		mustCard(poker.Club, 7), mustCard(poker.Diamond, 5), mustCard(poker.Heart, 4),
		mustCard(poker.Spade, 3), mustCard(poker.Club, 2),
	}
	return poker.Eval5(&royal) > poker.Eval5(&junk)
}

func mustCard(s poker.Suit, r poker.Rank) poker.Card {
	c, err := poker.MakeCard(s, r)
	if err != nil {
		panic(err)
	}
	return c
}

// beats reports whether score a is a stronger hand than score b.
func beats(a, b int16) bool {
	if higherIsBetter {
		return a > b
	}
	return a < b
}

// ParseCard reads cards such as "As", "TD", "10h" or "sA".
func ParseCard(s string) (poker.Card, error) {
	var none poker.Card
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 3 {
		return none, fmt.Errorf("bad card %q", s)
	}

	rank, rankOK := parseRank(s[:len(s)-1])
	suit, suitOK := parseSuit(s[len(s)-1])
	if !rankOK || !suitOK {
		rank, rankOK = parseRank(s[1:])
		suit, suitOK = parseSuit(s[0])
	}
	if !rankOK || !suitOK {
		return none, fmt.Errorf("bad card %q", s)
	}
	return poker.MakeCard(suit, rank)
}

func parseRank(s string) (poker.Rank, bool) {
	switch strings.ToUpper(s) {
	case "A":
		return 1, true
	case "K":
		return 13, true
	case "Q":
		return 12, true
	case "J":
		return 11, true
	case "T", "10":
		return 10, true
	}
	if len(s) == 1 && s[0] >= '2' && s[0] <= '9' {
		return poker.Rank(s[0] - '0'), true
	}
	return 0, false
}

func parseSuit(c byte) (poker.Suit, bool) {
	switch c {
	case 'c', 'C':
		return poker.Club, true
	case 'd', 'D':
		return poker.Diamond, true
	case 'h', 'H':
		return poker.Heart, true
	case 's', 'S':
		return poker.Spade, true
	}
	return poker.Club, false
}

// parseCards converts every parseable card, skipping the rest.
func parseCards(in []string) []poker.Card {
	out := make([]poker.Card, 0, len(in))
	for _, s := range in {
		if c, err := ParseCard(s); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// deckWithout returns the 52-card deck minus the given cards.
func deckWithout(used []poker.Card) []poker.Card {
	seen := make(map[poker.Card]bool, len(used))
	for _, c := range used {
		seen[c] = true
	}
	deck := make([]poker.Card, 0, 52)
	for _, s := range suits {
		for r := poker.Rank(1); r <= 13; r++ {
			c := mustCard(s, r)
			if !seen[c] {
				deck = append(deck, c)
			}
		}
	}
	return deck
}
