package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/ffstats/internal/analysis"
	"github.com/omarshaarawi/ffstats/internal/models"
)

const defaultTTL = 24 * time.Hour

type teamWeek struct {
	team, week int
}

type cachedStandings struct {
	standings *analysis.Standings
	run       string
	updated   time.Time
}

// Repository is an in-process league store with a standings cache. It is safe
// for concurrent use.
type Repository struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu        sync.RWMutex
	teams     map[int]models.Team
	slots     []models.SlotCount
	matchups  []models.Matchup
	players   map[teamWeek][]models.PlayerScoreRecord
	standings map[string]cachedStandings
}

type Option func(*Repository)

func WithClock(clock clockwork.Clock) Option {
	return func(r *Repository) { r.clock = clock }
}

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) { r.ttl = ttl }
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		clock:     clockwork.NewRealClock(),
		ttl:       defaultTTL,
		teams:     make(map[int]models.Team),
		players:   make(map[teamWeek][]models.PlayerScoreRecord),
		standings: make(map[string]cachedStandings),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) SaveTeam(_ context.Context, team models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams[team.TeamID] = team
	r.invalidate()
	return nil
}

func (r *Repository) SaveSlots(_ context.Context, slots []models.SlotCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		replaced := false
		for i := range r.slots {
			if r.slots[i].Position == s.Position {
				r.slots[i] = s
				replaced = true
			}
		}
		if !replaced {
			r.slots = append(r.slots, s)
		}
	}
	r.invalidate()
	return nil
}

func (r *Repository) ReplaceMatchups(_ context.Context, matchups []models.Matchup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchups = append([]models.Matchup(nil), matchups...)
	r.invalidate()
	return nil
}

// SavePlayers replaces the stored roster of every (week, team) present in
// players.
func (r *Repository) SavePlayers(_ context.Context, players []models.PlayerScoreRecord) error {
	rosters := make(map[teamWeek][]models.PlayerScoreRecord)
	for _, p := range players {
		key := teamWeek{p.TeamID, p.Week}
		if !containsPlayer(rosters[key], p) {
			rosters[key] = append(rosters[key], p)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, roster := range rosters {
		r.players[key] = roster
	}
	r.invalidate()
	return nil
}

func containsPlayer(players []models.PlayerScoreRecord, p models.PlayerScoreRecord) bool {
	for _, existing := range players {
		if existing.Slot == p.Slot && existing.Player == p.Player {
			return true
		}
	}
	return false
}

func (r *Repository) Teams(context.Context) ([]models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := make([]models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].TeamID < teams[j].TeamID
	})
	return teams, nil
}

func (r *Repository) SlotCounts(context.Context) ([]models.SlotCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.SlotCount(nil), r.slots...), nil
}

func (r *Repository) Matchups(context.Context) ([]models.Matchup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Matchup(nil), r.matchups...), nil
}

func (r *Repository) Players(_ context.Context, teamID, week int) ([]models.PlayerScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.PlayerScoreRecord(nil), r.players[teamWeek{teamID, week}]...), nil
}

func (r *Repository) PlayersByWeek(_ context.Context, week int) ([]models.PlayerScoreRecord, error) {
	return r.collect(func(k teamWeek) bool { return k.week == week }), nil
}

func (r *Repository) AllPlayers(context.Context) ([]models.PlayerScoreRecord, error) {
	return r.collect(func(teamWeek) bool { return true }), nil
}

// collect returns matching rosters ordered by week then team.
func (r *Repository) collect(keep func(teamWeek) bool) []models.PlayerScoreRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []teamWeek
	for k := range r.players {
		if keep(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].week != keys[j].week {
			return keys[i].week < keys[j].week
		}
		return keys[i].team < keys[j].team
	})

	var players []models.PlayerScoreRecord
	for _, k := range keys {
		players = append(players, r.players[k]...)
	}
	return players
}

// SaveStandings caches s under its week window, tagged with the refresh run
// whose data produced it.
func (r *Repository) SaveStandings(s *analysis.Standings, run string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.standings[weeksKey(s.Weeks)] = cachedStandings{standings: s, run: run, updated: r.clock.Now()}
}

// GetStandings returns cached standings for the week window and their run if
// they are younger than the TTL.
func (r *Repository) GetStandings(weeks []int) (*analysis.Standings, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.standings[weeksKey(weeks)]
	if !ok || r.clock.Since(c.updated) > r.ttl {
		return nil, "", false
	}
	return c.standings, c.run, true
}

func (r *Repository) ClearStandings() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidate()
}

// invalidate drops cached standings; callers hold the write lock.
func (r *Repository) invalidate() {
	clear(r.standings)
}

func weeksKey(weeks []int) string {
	return fmt.Sprint(weeks)
}
