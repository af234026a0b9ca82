// Package openings names the opening a game has followed using the ECO
// classification.
package openings

import (
	"fmt"
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/opening"
)

type Opening struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Labeler loads the ECO book on first use and is safe for concurrent use.
type Labeler struct {
	once sync.Once
	book *opening.BookECO
}

func NewLabeler() *Labeler {
	return &Labeler{}
}

func (l *Labeler) load() *opening.BookECO {
	l.once.Do(func() {
		l.book = opening.NewBookECO()
	})
	return l.book
}

// Label replays moves, written in coordinate notation, from the standard
// starting position and returns the most specific named opening they reach.
func (l *Labeler) Label(moves []string) (Opening, bool, error) {
	if len(moves) == 0 {
		return Opening{}, false, nil
	}
	game := chess.NewGame()
	for i, s := range moves {
		mv, err := chess.UCINotation{}.Decode(game.Position(), s)
		if err != nil {
			return Opening{}, false, fmt.Errorf("move %d %s: %w", i+1, s, err)
		}
		if err := game.Move(mv); err != nil {
			return Opening{}, false, fmt.Errorf("move %d %s: %w", i+1, s, err)
		}
	}
	book := l.load()
	if book == nil {
		return Opening{}, false, nil
	}
	eco := book.Find(game.Moves())
	if eco == nil {
		return Opening{}, false, nil
	}
	return Opening{Code: eco.Code(), Title: eco.Title()}, true, nil
}
