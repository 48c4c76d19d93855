package bot

import "time"

// BandWeights estimate a card's chance of winning a trick from its value
// relative to the deck maximum.
type BandWeights struct {
	HighCut float64 // fraction of max value above which a card is "high"
	MidCut  float64
	LowCut  float64
	High    float64 // win probability per band
	Mid     float64
	Low     float64
	Floor   float64
	Joker   float64
}

// Tuning bundles the numeric knobs for one difficulty tier.
type Tuning struct {
	Bands         BandWeights
	BaseDelay     time.Duration
	DelayJitter   time.Duration
	MaxDelay      time.Duration
	JokerHighBias float64 // probability of declaring the joker at maximum
	CountDiscount bool    // discount bet estimates by player count
}

var mediumTuning = Tuning{
	Bands: BandWeights{
		HighCut: 0.85, MidCut: 0.65, LowCut: 0.45,
		High: 0.90, Mid: 0.60, Low: 0.35, Floor: 0.12, Joker: 0.95,
	},
	BaseDelay:     1200 * time.Millisecond,
	DelayJitter:   800 * time.Millisecond,
	MaxDelay:      3 * time.Second,
	JokerHighBias: 0.85,
}

var hardTuning = Tuning{
	Bands: BandWeights{
		HighCut: 0.85, MidCut: 0.65, LowCut: 0.45,
		High: 0.90, Mid: 0.60, Low: 0.35, Floor: 0.12, Joker: 0.95,
	},
	BaseDelay:     2 * time.Second,
	DelayJitter:   800 * time.Millisecond,
	MaxDelay:      3 * time.Second,
	JokerHighBias: 0.85,
	CountDiscount: true,
}

var easyTuning = Tuning{
	BaseDelay:   600 * time.Millisecond,
	DelayJitter: 800 * time.Millisecond,
	MaxDelay:    3 * time.Second,
}
