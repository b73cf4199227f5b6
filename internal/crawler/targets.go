package crawler

import "github.com/whyando/tft-stat/internal/rank"

// Target is one (tier, division) ladder slice crawled each cycle.
type Target struct {
	Tier     rank.Tier
	Division rank.Division
}

// Targets is the ladder table every cycle enumerates. Apex tiers are left out
// of the default table; their players surface anyway as participants of the
// matches crawled here.
var Targets = []Target{
	{rank.TierDiamond, rank.DivisionI},
	{rank.TierDiamond, rank.DivisionII},
	{rank.TierDiamond, rank.DivisionIII},
	{rank.TierDiamond, rank.DivisionIV},
	{rank.TierPlatinum, rank.DivisionI},
	{rank.TierPlatinum, rank.DivisionII},
	{rank.TierPlatinum, rank.DivisionIII},
	{rank.TierPlatinum, rank.DivisionIV},
	{rank.TierGold, rank.DivisionI},
	{rank.TierGold, rank.DivisionII},
	{rank.TierGold, rank.DivisionIII},
}
