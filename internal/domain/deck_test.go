package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestDealDistributesDistinctCards(t *testing.T) {
	d := NewDeck(DefaultMaxCardValue, rand.New(rand.NewSource(7)))

	hands, err := d.Deal(4, 5)
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if len(hands) != 4 {
		t.Fatalf("expected 4 hands, got %d", len(hands))
	}

	seenIDs := make(map[int]bool)
	for i, hand := range hands {
		if len(hand) != 5 {
			t.Fatalf("hand %d has %d cards, want 5", i, len(hand))
		}
		for _, c := range hand {
			if seenIDs[c.ID] {
				t.Fatalf("card id %d dealt twice", c.ID)
			}
			seenIDs[c.ID] = true
		}
	}
	if got := d.Remaining(); got != 36 {
		t.Fatalf("Remaining() = %d, want 36", got)
	}
}

func TestDealCoversFullDeckOnce(t *testing.T) {
	d := NewDeck(DefaultMaxCardValue, rand.New(rand.NewSource(3)))

	hands, err := d.Deal(4, 6)
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}

	ids := make(map[int]bool)
	values := make(map[int]bool)
	jokers := 0
	record := func(c Card) {
		if ids[c.ID] {
			t.Fatalf("duplicate card id %d", c.ID)
		}
		ids[c.ID] = true
		if c.IsJoker {
			jokers++
			if c.Value != JokerValue {
				t.Fatalf("joker has value %d", c.Value)
			}
		} else if values[c.Value] {
			t.Fatalf("duplicate value %d", c.Value)
		}
		values[c.Value] = true
	}
	for _, hand := range hands {
		for _, c := range hand {
			record(c)
		}
	}
	for {
		c, ok := d.DrawOne()
		if !ok {
			break
		}
		record(c)
	}

	if len(ids) != d.Size() {
		t.Fatalf("deck produced %d cards, want %d", len(ids), d.Size())
	}
	if jokers != 1 {
		t.Fatalf("deck produced %d jokers, want 1", jokers)
	}
	for id := range ids {
		if id < 1 || id > d.Size() {
			t.Fatalf("card id %d outside 1..%d", id, d.Size())
		}
	}
}

func TestDealExceedingCapacity(t *testing.T) {
	d := NewDeck(DefaultMaxCardValue, rand.New(rand.NewSource(1)))
	if _, err := d.Deal(8, 8); !errors.Is(err, ErrDeckCapacity) {
		t.Fatalf("Deal(8,8) = %v, want ErrDeckCapacity", err)
	}
}

func TestDrawOneExhaustsRemainder(t *testing.T) {
	d := NewDeck(DefaultMaxCardValue, rand.New(rand.NewSource(1)))
	if _, err := d.Deal(2, 3); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	for i := 0; i < 50; i++ {
		if _, ok := d.DrawOne(); !ok {
			t.Fatalf("DrawOne failed at %d with remainder expected", i)
		}
	}
	if _, ok := d.DrawOne(); ok {
		t.Fatal("DrawOne succeeded on empty remainder")
	}
}

func TestDealRebuildsEachRound(t *testing.T) {
	d := NewDeck(DefaultMaxCardValue, rand.New(rand.NewSource(9)))
	if _, err := d.Deal(4, 6); err != nil {
		t.Fatalf("first Deal: %v", err)
	}
	for d.Remaining() > 0 {
		d.DrawOne()
	}
	hands, err := d.Deal(8, 6)
	if err != nil {
		t.Fatalf("second Deal: %v", err)
	}
	total := 0
	for _, h := range hands {
		total += len(h)
	}
	if total != 48 || d.Remaining() != 8 {
		t.Fatalf("second deal dealt %d with %d remaining", total, d.Remaining())
	}
}
