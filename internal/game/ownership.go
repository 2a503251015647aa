package game

// capturePass recomputes island ownership. An island belongs to the sole
// player with completed buildings standing on it; with no buildings it
// reverts to neutral, and a contested island keeps its current owner until
// one side is cleared out.
func (w *World) capturePass() {
	for i := range w.islands {
		owner := NeutralPlayer
		contested := false
		for _, bid := range w.islands[i].Buildings {
			b := w.Building(bid)
			if b == nil || b.Constructing() || !b.Alive() {
				continue
			}
			if owner == NeutralPlayer {
				owner = b.Owner
			} else if owner != b.Owner {
				contested = true
				break
			}
		}
		if contested {
			continue
		}
		if w.islands[i].Owner != owner {
			prev := w.islands[i].Owner
			w.islands[i].Owner = owner
			w.record("capture", map[string]any{"island": i, "from": int(prev), "to": int(owner)})
			w.Log.Add(w.Tick, w.playerName(owner), "island", "captured", "", float64(i))
		}
	}
}

// eliminate marks a player out of the match and removes their units.
// Buildings stay standing as ruins. Safe to call repeatedly; only the
// first call has any effect.
func (w *World) eliminate(pid PlayerID) {
	p := w.Player(pid)
	if p == nil || p.Status == PlayerEliminated {
		return
	}
	p.Status = PlayerEliminated
	w.elimLog = append(w.elimLog, pid)
	for _, u := range w.units {
		if u.Owner == pid {
			u.Health = 0
		}
	}
	w.record("eliminated", map[string]any{"player": int(pid)})
	w.Log.Add(w.Tick, p.Name, "player", "eliminated", "", 0)
}

// checkMatchEnd closes the match when at most one active player remains
// (of at least two that ever joined).
func (w *World) checkMatchEnd() {
	if len(w.players) < 2 {
		return
	}
	active := 0
	last := NeutralPlayer
	for _, p := range w.players {
		if p.Status == PlayerActive {
			active++
			last = p.ID
		}
	}
	if active > 1 {
		return
	}
	w.Over = true
	w.Winner = last
	w.record("match_end", map[string]any{"winner": int(last)})
	w.Log.Add(w.Tick, w.playerName(last), "match", "end", "", 0)
}

// islandGraph adjacency: static polygon overlap plus completed bridges
// whose two nodes stand on different islands.
func (w *World) islandNeighbors(isl int) []int {
	out := append([]int(nil), w.Map.Overlapping(isl)...)
	for _, l := range w.links {
		if l.Kind != LinkBridge || l.Health <= 0 {
			continue
		}
		a, b := w.Building(l.A), w.Building(l.B)
		if a == nil || b == nil {
			continue
		}
		switch isl {
		case a.Island:
			if b.Island >= 0 && b.Island != isl {
				out = append(out, b.Island)
			}
		case b.Island:
			if a.Island >= 0 && a.Island != isl {
				out = append(out, a.Island)
			}
		}
	}
	return out
}

// findIslandPath returns the island-id sequence from one island to another,
// inclusive of both ends, or nil when unreachable. Results are cached per
// island pair; the cache is flushed only when a link is created or removed,
// so ownership flips can serve stale routes until the next link change.
func (w *World) findIslandPath(from, to int) []int {
	if from == to {
		return []int{from}
	}
	key := [2]int{from, to}
	if p, ok := w.islandPaths[key]; ok {
		return p
	}
	path := w.bfsIslands(from, to)
	w.islandPaths[key] = path
	return path
}

func (w *World) bfsIslands(from, to int) []int {
	prev := map[int]int{from: from}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			var path []int
			for n := to; ; n = prev[n] {
				path = append([]int{n}, path...)
				if n == from {
					return path
				}
			}
		}
		for _, nb := range w.islandNeighbors(cur) {
			if _, seen := prev[nb]; !seen {
				prev[nb] = cur
				queue = append(queue, nb)
			}
		}
	}
	return nil
}

// IslandsConnected reports whether ground traffic can get from one island
// to the other (shared shoreline or bridge chain).
func (w *World) IslandsConnected(a, b int) bool {
	return w.findIslandPath(a, b) != nil
}

func (w *World) invalidateIslandPaths() {
	w.islandPaths = make(map[[2]int][]int)
}
