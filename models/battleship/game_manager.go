package battleship

import (
	"sync"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type GameManager interface {
	CreateMatch(difficulty uint8, opts ...MatchOption) (*Match, error)
	GetMatch(matchUuid string) (*Match, error)
	TerminateMatch(matchUuid string)
	Count() int
}

// BattleshipGameManager keeps every running match. Matches
// themselves are owned by one session each; only the map is
// shared.
type BattleshipGameManager struct {
	matches map[string]*Match
	mu      sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

func NewBattleshipGameManager() *BattleshipGameManager {
	return &BattleshipGameManager{
		matches: make(map[string]*Match, 10),
	}
}

func (bgm *BattleshipGameManager) CreateMatch(difficulty uint8, opts ...MatchOption) (*Match, error) {
	if !Difficulty(difficulty).IsValid() {
		return nil, cerr.ErrInvalidGameDifficulty(difficulty)
	}

	match, err := NewMatch(Difficulty(difficulty), opts...)
	if err != nil {
		return nil, err
	}

	bgm.mu.Lock()
	bgm.matches[match.Uuid()] = match
	bgm.mu.Unlock()

	return match, nil
}

func (bgm *BattleshipGameManager) GetMatch(matchUuid string) (*Match, error) {
	bgm.mu.RLock()
	match, prs := bgm.matches[matchUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(matchUuid)
	}

	return match, nil
}

func (bgm *BattleshipGameManager) TerminateMatch(matchUuid string) {
	bgm.mu.Lock()
	delete(bgm.matches, matchUuid)
	bgm.mu.Unlock()
}

func (bgm *BattleshipGameManager) Count() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.matches)
}
