package engine

import "math/rand/v2"

// Deck is an ordered stack of cards. Index 0 is the top.
type Deck[T any] []T

// NewDeck creates a deck from a copy of cards, shuffled with r.
func NewDeck[T any](cards []T, r *rand.Rand) Deck[T] {
	d := make(Deck[T], len(cards))
	copy(d, cards)
	d.Shuffle(r)
	return d
}

func (d Deck[T]) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Draw removes and returns the top n cards. Returns fewer if deck is short.
func (d *Deck[T]) Draw(n int) []T {
	if n > len(*d) {
		n = len(*d)
	}
	drawn := make([]T, n)
	copy(drawn, (*d)[:n])
	*d = (*d)[n:]
	return drawn
}

// DrawBottom removes and returns the bottom card.
func (d *Deck[T]) DrawBottom() (T, bool) {
	var zero T
	if len(*d) == 0 {
		return zero, false
	}
	last := (*d)[len(*d)-1]
	*d = (*d)[:len(*d)-1]
	return last, true
}

// PutOnTop places cards on the top of the deck, cards[0] becoming the new top.
func (d *Deck[T]) PutOnTop(cards []T) {
	out := make(Deck[T], 0, len(cards)+len(*d))
	out = append(out, cards...)
	*d = append(out, *d...)
}

// Return puts cards back at the bottom of the deck.
func (d *Deck[T]) Return(cards []T) {
	*d = append(*d, cards...)
}

// Remove takes out the first card matching fn.
func (d *Deck[T]) Remove(fn func(T) bool) (T, bool) {
	for i, c := range *d {
		if fn(c) {
			*d = append((*d)[:i:i], (*d)[i+1:]...)
			return c, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of cards remaining.
func (d Deck[T]) Len() int {
	return len(d)
}

// Peek returns top n cards without removing them.
func (d Deck[T]) Peek(n int) []T {
	if n > len(d) {
		n = len(d)
	}
	out := make([]T, n)
	copy(out, d[:n])
	return out
}

// Clone returns an independent copy.
func (d Deck[T]) Clone() Deck[T] {
	if d == nil {
		return nil
	}
	out := make(Deck[T], len(d))
	copy(out, d)
	return out
}

// newRand returns the generator for one shuffle. Each shuffle in a game
// uses its own stream so a game replays from its seed.
func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
