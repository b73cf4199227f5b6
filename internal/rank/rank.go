// Package rank converts tier/division/LP triples to and from a single ordered
// integer, so standings from different bands can be compared and averaged.
package rank

import (
	"errors"
	"fmt"
)

type Tier string

const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"

	// TierMasterPlus is the compressed band Decode reports for any value at or
	// above the apex base; the three apex tiers share it and cannot be told
	// apart from the numeric value alone.
	TierMasterPlus Tier = "MASTER+"
)

type Division string

const (
	DivisionI   Division = "I"
	DivisionII  Division = "II"
	DivisionIII Division = "III"
	DivisionIV  Division = "IV"
)

var (
	ErrUnknownTier     = errors.New("unknown tier")
	ErrUnknownDivision = errors.New("unknown division")
	ErrTeamSize        = errors.New("team average requires exactly 8 entries")
)

const (
	apexBase      = 2400
	divisionWidth = 100
	tierWidth     = 400
)

var tierBase = map[Tier]int{
	TierIron:        0,
	TierBronze:      400,
	TierSilver:      800,
	TierGold:        1200,
	TierPlatinum:    1600,
	TierDiamond:     2000,
	TierMaster:      apexBase,
	TierGrandmaster: apexBase,
	TierChallenger:  apexBase,
}

var divisionOffset = map[Division]int{
	DivisionIV:  0,
	DivisionIII: 100,
	DivisionII:  200,
	DivisionI:   300,
}

// Entry is one player's standing in encodable form.
type Entry struct {
	Tier     Tier
	Division Division
	Points   int
}

// ParseTier validates a tier label from upstream. Unknown labels are rejected
// here, at the deserialization boundary, rather than deeper in processing.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierBase[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

func ParseDivision(s string) (Division, error) {
	d := Division(s)
	if _, ok := divisionOffset[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDivision, s)
	}
	return d, nil
}

func (t Tier) Apex() bool {
	return t == TierMaster || t == TierGrandmaster || t == TierChallenger
}

// Encode maps an entry onto the shared numeric ladder. Points outside [0,100)
// deliberately spill into the adjacent band: GOLD III 100LP encodes the same
// as GOLD II 0LP.
func Encode(e Entry) (int, error) {
	base, ok := tierBase[e.Tier]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, e.Tier)
	}
	if e.Tier.Apex() {
		return base + e.Points, nil
	}
	offset, ok := divisionOffset[e.Division]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDivision, e.Division)
	}
	return base + offset + e.Points, nil
}

// Decode is the inverse by range. Values at or above the apex base collapse to
// the MASTER+ band with division I and unbounded points.
func Decode(v int) Entry {
	if v >= apexBase {
		return Entry{Tier: TierMasterPlus, Division: DivisionI, Points: v - apexBase}
	}
	tiers := []Tier{TierIron, TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
	tier := TierDiamond
	for i, t := range tiers {
		if v < (i+1)*tierWidth {
			tier = t
			break
		}
	}
	rem := v - tierBase[tier]
	divisions := []Division{DivisionIV, DivisionIII, DivisionII}
	division := DivisionI
	for i, d := range divisions {
		if rem < (i+1)*divisionWidth {
			division = d
			break
		}
	}
	return Entry{Tier: tier, Division: division, Points: rem - divisionOffset[division]}
}

// Render formats an entry as e.g. "GOLD III 42LP".
func Render(e Entry) string {
	return fmt.Sprintf("%s %s %dLP", e.Tier, e.Division, e.Points)
}

// apexWeight is the vote each original tier casts when a team average lands in
// the compressed apex band.
var apexWeight = map[Tier]int{
	TierChallenger:  3,
	TierGrandmaster: 2,
	TierMaster:      1,
}

// TeamAverage encodes all 8 entries, takes the integer mean (truncating toward
// zero) and decodes it. When the mean lands in the apex band, the specific
// label is re-resolved by a weighted vote over the original tiers; the mean's
// division and points are kept.
func TeamAverage(entries []Entry) (int, string, error) {
	if len(entries) != 8 {
		return 0, "", ErrTeamSize
	}
	sum := 0
	for _, e := range entries {
		v, err := Encode(e)
		if err != nil {
			return 0, "", err
		}
		sum += v
	}
	mean := sum / len(entries)

	avg := Decode(mean)
	if avg.Tier == TierMasterPlus {
		weight := 0
		for _, e := range entries {
			weight += apexWeight[e.Tier]
		}
		switch {
		case weight < 12:
			avg.Tier = TierMaster
		case weight < 20:
			avg.Tier = TierGrandmaster
		default:
			avg.Tier = TierChallenger
		}
	}
	return mean, Render(avg), nil
}
