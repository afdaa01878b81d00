// Command demo walks through the eventcore dispatcher: priority-ordered
// immediate dispatch, cross-goroutine deferred dispatch, and automatic
// listener expiry.
package main

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dshills/eventcore"
)

type PlayerDied struct {
	eventcore.BaseEvent
	PlayerID int
	Damage   float64
	Cause    string
}

type PlayerLevelUp struct {
	eventcore.BaseEvent
	PlayerID int
	NewLevel int
}

type GameStateChange struct {
	eventcore.BaseEvent
	State string
}

type Player struct {
	ID     int
	logger *log.Logger
}

func (p *Player) OnPlayerDied(ev PlayerDied) {
	if ev.PlayerID == p.ID {
		p.logger.Info("received own death event", "player", p.ID, "damage", ev.Damage, "cause", ev.Cause)
		return
	}
	p.logger.Info("heard another player die", "player", p.ID, "died", ev.PlayerID)
}

func (p *Player) OnLevelUp(ev PlayerLevelUp) {
	p.logger.Info("saw level up", "player", p.ID, "leveled", ev.PlayerID, "level", ev.NewLevel)
}

type GameManager struct {
	logger      *log.Logger
	deadPlayers int
}

func (g *GameManager) OnPlayerDied(ev PlayerDied) {
	g.deadPlayers++
	g.logger.Info("processing player death", "player", ev.PlayerID, "eliminated", g.deadPlayers)
}

func (g *GameManager) OnStateChange(ev GameStateChange) {
	g.logger.Info("game state changed", "state", ev.State)
}

type AudioSystem struct {
	logger *log.Logger
}

func (a *AudioSystem) OnPlayerDied(ev PlayerDied) {
	a.logger.Info("playing death sound", "player", ev.PlayerID)
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})

	d := eventcore.New(eventcore.WithLogger(logger))

	manager := eventcore.NewRef(&GameManager{logger: logger.With("module", "game")})
	audio := eventcore.NewRef(&AudioSystem{logger: logger.With("module", "audio")})
	players := []*eventcore.Ref[Player]{
		eventcore.NewRef(&Player{ID: 1, logger: logger.With("module", "player")}),
		eventcore.NewRef(&Player{ID: 2, logger: logger.With("module", "player")}),
	}

	// The game manager must settle state before players and audio react.
	eventcore.Listen(d, manager, (*GameManager).OnPlayerDied, eventcore.PriorityHigh)
	eventcore.Listen(d, manager, (*GameManager).OnStateChange, eventcore.PriorityCritical)
	eventcore.Listen(d, audio, (*AudioSystem).OnPlayerDied, eventcore.PriorityNormal)
	for _, p := range players {
		eventcore.Listen(d, p, (*Player).OnPlayerDied, eventcore.PriorityLow)
		eventcore.Listen(d, p, (*Player).OnLevelUp, eventcore.PriorityNormal)
	}

	logger.Info("immediate dispatch")
	eventcore.Dispatch(d, GameStateChange{State: "playing"})
	eventcore.Dispatch(d, PlayerDied{PlayerID: 2, Damage: 55.5, Cause: "dragon"})

	logger.Info("deferred dispatch from worker goroutines")
	var wg sync.WaitGroup
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 3; i++ {
				eventcore.Enqueue(d, PlayerLevelUp{PlayerID: w + 1, NewLevel: i})
			}
		}(w)
	}
	wg.Wait()

	processed := d.ProcessQueuedEvents(0)
	logger.Info("drained deferred queue", "processed", processed)

	logger.Info("automatic expiry: releasing player 2")
	players[1].Release()
	eventcore.Dispatch(d, PlayerDied{PlayerID: 1, Damage: 12, Cause: "trap"})

	stats := d.Stats()
	logger.Info("dispatcher stats",
		"listeners", stats.TotalListeners,
		"dispatches", stats.TotalDispatches,
		"queued", stats.QueuedEvents,
		"types", stats.EventTypes,
	)
}
