// Command server hosts a single authoritative match over WebSocket. Human
// players connect and join; bot seats are filled at startup. The match
// result and its replay journal land in the archive when the match ends.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"islandwar/internal/archive"
	"islandwar/internal/game"
	"islandwar/internal/protocol"
	"islandwar/internal/transport/ws"
	"islandwar/internal/worldmap"
)

func main() {
	var (
		addr        = flag.String("addr", ":8714", "listen address")
		mapName     = flag.String("map", "twin-isles", "map name")
		tuningPath  = flag.String("tuning", "", "yaml tuning override file")
		bots        = flag.Int("bots", 1, "bot seats to fill at start")
		difficulty  = flag.Int("difficulty", 5, "bot difficulty 1-10")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "simulation seed")
		archivePath = flag.String("archive", "matches.db", "match archive database")
		verbose     = flag.Bool("v", false, "verbose simulation log")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(log, *addr, *mapName, *tuningPath, *bots, *difficulty, *seed, *archivePath, *verbose); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, addr, mapName, tuningPath string, bots, difficulty int, seed int64, archivePath string, verbose bool) error {
	m := worldmap.ByName(mapName)
	tun, err := game.LoadTuning(tuningPath)
	if err != nil {
		return err
	}

	w := game.NewWorld(m, tun, seed)
	w.Log.SetVerbose(verbose)
	for i := 0; i < bots; i++ {
		w.AddPlayer(fmt.Sprintf("bot-%d", i+1), true, difficulty)
	}

	store, err := archive.Open(archivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	journal, err := archive.NewJournal()
	if err != nil {
		return err
	}

	hub := ws.NewHub(w, log)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listener failed", "err", err)
		}
	}()
	log.Info("match host up", "addr", addr, "map", mapName, "bots", bots, "seed", seed)

	matchID := archive.NewMatchID()
	started := time.Now()
	ticker := time.NewTicker(time.Duration(tun.TickMs) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		// Joins and disconnects cross over here so all world mutation stays
		// on this goroutine.
		drain := true
		for drain {
			select {
			case j := <-hub.Joins():
				id := w.AddPlayer(j.Name, false, 0)
				j.Reply <- id
				log.Info("player joined", "player", id, "name", j.Name)
			case pid := <-hub.Leaves():
				w.RemovePlayer(pid)
				log.Info("player left", "player", pid)
			default:
				drain = false
			}
		}

		w.Step()
		if err := journal.Append(w.DrainEvents()); err != nil {
			log.Warn("journal append failed", "err", err)
		}
		if w.Tick%tun.SnapshotEvery == 0 {
			hub.Broadcast(protocol.SnapshotMsg(w.BuildSnapshot()))
		}
		if w.Over {
			break
		}
	}

	hub.Broadcast(protocol.ServerMsg{Type: protocol.MsgOver, Winner: int(w.Winner)})
	log.Info("match over", "winner", w.Winner, "ticks", w.Tick)

	blob, err := journal.Finish()
	if err != nil {
		return err
	}
	if err := store.SaveMatch(archive.ResultFor(matchID, w, started), blob); err != nil {
		return err
	}
	log.Info("match archived", "id", matchID, "replay_bytes", len(blob))

	hub.Close()
	return srv.Close()
}
