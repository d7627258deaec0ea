package application

import (
	"cmp"
	"slices"

	"voidline/peer/domain"
)

// Score は1ピアの撃墜数と被撃墜数です。
type Score struct {
	Peer   domain.PeerAddress
	Kills  int
	Deaths int
}

// Scoreboard は kill メッセージから戦績を集計します。
type Scoreboard struct {
	scores map[domain.PeerAddress]*Score
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{scores: make(map[domain.PeerAddress]*Score)}
}

func (s *Scoreboard) Record(killer, target domain.PeerAddress) {
	if !killer.IsEmpty() && killer != target {
		s.entry(killer).Kills++
	}
	if !target.IsEmpty() {
		s.entry(target).Deaths++
	}
}

func (s *Scoreboard) Get(peer domain.PeerAddress) Score {
	if sc, ok := s.scores[peer]; ok {
		return *sc
	}
	return Score{Peer: peer}
}

// Standings は撃墜数の多い順に並べた戦績です。同数なら被撃墜の少ない順、次にアドレス順です。
func (s *Scoreboard) Standings() []Score {
	out := make([]Score, 0, len(s.scores))
	for _, sc := range s.scores {
		out = append(out, *sc)
	}
	slices.SortFunc(out, func(a, b Score) int {
		if c := cmp.Compare(b.Kills, a.Kills); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Deaths, b.Deaths); c != 0 {
			return c
		}
		return cmp.Compare(a.Peer, b.Peer)
	})
	return out
}

func (s *Scoreboard) entry(peer domain.PeerAddress) *Score {
	sc, ok := s.scores[peer]
	if !ok {
		sc = &Score{Peer: peer}
		s.scores[peer] = sc
	}
	return sc
}
