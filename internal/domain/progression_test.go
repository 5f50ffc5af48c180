package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSessionXP(t *testing.T) {
	session := SessionSummary{
		SessionID:       "s1",
		TotalDistance:   10,
		TotalCalories:   300,
		DurationSeconds: 3600,
		AvgSpeed:        22,
		AvgPower:        120,
		EndTime:         time.Now(),
	}

	// 50 base + 100 distance + 60 duration + 30 calories + 10 speed + 15 power.
	assert.Equal(t, 265, CalculateSessionXP(session))
}

func TestCalculateSessionXP_BaseOnly(t *testing.T) {
	session := SessionSummary{SessionID: "s1", EndTime: time.Now()}
	assert.Equal(t, 50, CalculateSessionXP(session))
}

func TestCalculateSessionXP_TopTiers(t *testing.T) {
	session := SessionSummary{
		SessionID: "s1",
		AvgSpeed:  31,
		AvgPower:  201,
		EndTime:   time.Now(),
	}
	assert.Equal(t, 50+30+40, CalculateSessionXP(session))
}

func TestCalculateSessionXP_FloorsFractions(t *testing.T) {
	session := SessionSummary{
		SessionID:       "s1",
		DurationSeconds: 90, // 1.5 minutes
		EndTime:         time.Now(),
	}
	assert.Equal(t, 51, CalculateSessionXP(session))
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(265))
	assert.Equal(t, 2, LevelForXP(399))
	assert.Equal(t, 3, LevelForXP(400))
	assert.Equal(t, 11, LevelForXP(10000))
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 1; xp <= 5000; xp++ {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level regressed at xp=%d", xp)
		prev = level
	}
}

func TestXPToNextLevel(t *testing.T) {
	// Level 1 ends at 100 XP.
	assert.Equal(t, 100, XPToNextLevel(0))
	// At 265 XP (level 2), level 3 starts at 400.
	assert.Equal(t, 135, XPToNextLevel(265))
}

func TestRankForLevel(t *testing.T) {
	assert.Equal(t, RankNovice, RankForLevel(1))
	assert.Equal(t, RankNovice, RankForLevel(4))
	assert.Equal(t, RankBeginner, RankForLevel(5))
	assert.Equal(t, RankIntermediate, RankForLevel(10))
	assert.Equal(t, RankAdvanced, RankForLevel(20))
	assert.Equal(t, RankExpert, RankForLevel(30))
	assert.Equal(t, RankChampion, RankForLevel(40))
	assert.Equal(t, RankLegend, RankForLevel(50))
	assert.Equal(t, RankLegend, RankForLevel(120))
}

func TestUserProgression_DerivedFields(t *testing.T) {
	prog := UserProgression{XP: 265}
	assert.Equal(t, 2, prog.Level())
	assert.Equal(t, RankNovice, prog.Rank())

	prog.XP = 170000 // level 42
	assert.Equal(t, 42, prog.Level())
	assert.Equal(t, RankChampion, prog.Rank())
}
