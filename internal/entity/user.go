package entity

import (
	"database/sql"
	"math"

	"github.com/hauntpass/backend/pkg/enum"
)

type PassportTier string

var (
	PassportTierBronze   = enum.New(PassportTier("bronze"))
	PassportTierSilver   = enum.New(PassportTier("silver"))
	PassportTierGold     = enum.New(PassportTier("gold"))
	PassportTierPlatinum = enum.New(PassportTier("platinum"))
)

var passportTierRank = map[PassportTier]int{
	PassportTierBronze:   0,
	PassportTierSilver:   1,
	PassportTierGold:     2,
	PassportTierPlatinum: 3,
}

// User is the aggregate of a user's reward progress.
type User struct {
	Base

	WalletAddress      sql.NullString `gorm:"unique"`
	Name               string
	TotalXP            int64
	Level              int
	TotalTokensEarned  float64
	TotalTokensClaimed float64
	QuestsCompleted    int64
	PassportTier       PassportTier `gorm:"default:bronze"`
}

// LevelFromXP returns floor(sqrt(xp/100)) + 1.
func LevelFromXP(xp int64) int {
	if xp <= 0 {
		return 1
	}

	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// XPForLevel returns the smallest total XP reaching level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}

	return int64(100 * (level - 1) * (level - 1))
}

func TierFromLevel(level int) PassportTier {
	switch {
	case level >= 15:
		return PassportTierPlatinum
	case level >= 10:
		return PassportTierGold
	case level >= 5:
		return PassportTierSilver
	default:
		return PassportTierBronze
	}
}

// HigherTier returns the higher of two tiers.
func HigherTier(a, b PassportTier) PassportTier {
	if passportTierRank[b] > passportTierRank[a] {
		return b
	}

	return a
}
