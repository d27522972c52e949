package main

import (
	"log"

	"github.com/joynet-go/joynet/joynet"
)

// End tells the clients of served games that they are over
// and releases every game.
func End(reg *joynet.Registry) {
	log.Print("Ending")

	for _, g := range reg.Games() {
		if g.Serving() && g.State() != joynet.StateOff {
			if err := g.End(); err != nil {
				log.Print(err)
			}
		}

		reg.Destroy(g)
	}
}
