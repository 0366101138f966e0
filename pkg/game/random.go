package game

import (
	"math/rand"

	"github.com/crossfire-games/crossfire/pkg/game/constants"
)

// IDGenerator issues session and player identifiers. There is no
// uniqueness guarantee against existing sessions or players; collision
// risk is accepted.
type IDGenerator interface {
	NewSessionID() int
	NewPlayerID() int
}

type randomIDGenerator struct{}

// NewRandomIDGenerator creates an IDGenerator producing uniform random
// ids: session ids in [100000,999999), player ids in [0,99999).
func NewRandomIDGenerator() IDGenerator {
	return &randomIDGenerator{}
}

func (g *randomIDGenerator) NewSessionID() int {
	return constants.SessionIDMin + rand.Intn(constants.SessionIDMax-constants.SessionIDMin)
}

func (g *randomIDGenerator) NewPlayerID() int {
	return rand.Intn(constants.PlayerIDMax)
}
