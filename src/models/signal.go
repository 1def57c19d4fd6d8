package models

type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

type Position int

const (
	PositionFlat Position = iota
	PositionLong
)

func (p Position) String() string {
	if p == PositionLong {
		return "LONG"
	}

	return "FLAT"
}

type TrendDirection int

const (
	TrendUndefined TrendDirection = iota
	TrendUp
	TrendDown
)

func (t TrendDirection) String() string {
	switch t {
	case TrendUp:
		return "UP"
	case TrendDown:
		return "DOWN"
	default:
		return "UNDEFINED"
	}
}

type Crossover int

const (
	CrossoverNone Crossover = iota
	CrossoverBullish
	CrossoverBearish
)

func (c Crossover) String() string {
	switch c {
	case CrossoverBullish:
		return "BULLISH"
	case CrossoverBearish:
		return "BEARISH"
	default:
		return "NONE"
	}
}
