package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/joynet-go/joynet/joynet"
)

var started = time.Now()

// Uptime reports for how many whole seconds the program has been running
func Uptime() float64 {
	return math.Floor(time.Since(started).Seconds())
}

// newGame creates and sets up a game as configured.
func newGame(reg *joynet.Registry) (*joynet.Game, error) {
	typ, err := joynet.ParseGameType(confString("game:type", "controllers"))
	if err != nil {
		return nil, err
	}

	g, err := reg.Create(
		confString("game:name", "joynet"),
		typ,
		confInt("game:max_players", 8),
		confInt("game:max_controllers", 4),
		logMessage,
	)
	if err != nil {
		return nil, err
	}

	err = g.SetupControllers(
		confInt("controllers:buttons", joynet.MaxControllerButtons),
		confInt("controllers:axes", 4),
		confInt("controllers:buffer_frames", 8),
	)
	if err != nil {
		reg.Destroy(g)
		return nil, err
	}

	g.SetLocalName(confString("player_name", ""))

	return g, nil
}

// logMessage logs what changes the shape of a session.
// Input is far too frequent to be logged.
func logMessage(m *joynet.Message) {
	switch m.Type {
	case joynet.MsgPlayerJoin, joynet.MsgPlayerLeave, joynet.MsgContentList:
		log.Print(m)
	}
}

func tickInterval() (time.Duration, error) {
	rate := confInt("tick_rate", 60)
	if rate <= 0 {
		return 0, fmt.Errorf("tick_rate %d must be positive", rate)
	}

	return time.Second / time.Duration(rate), nil
}

func openCatalog() (*Catalog, error) {
	return OpenCatalog(confString("content_db", "storage/content.sqlite"))
}

// status describes a game for the periodic status log.
func status(g *joynet.Game) string {
	b := g.Buffer()

	return fmt.Sprintf("%s: %s, %d players, %d frames buffered, %d overflows, %d starvations, up %.0fs",
		g.Name(), g.State(), g.PlayerCount(), b.Len(), b.Overflows(), b.Starvations(), Uptime())
}
