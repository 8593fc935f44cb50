package model

import "strings"

type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

func ParsePolarity(raw string) (Polarity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PolarityPositive), "+":
		return PolarityPositive, true
	case string(PolarityNegative), "-":
		return PolarityNegative, true
	default:
		return "", false
	}
}

func (p Polarity) IsValid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

type Filter string

const (
	FilterAll      Filter = "all"
	FilterPositive Filter = "positive"
	FilterNegative Filter = "negative"
)

// ParseFilter treats an empty value as FilterAll.
func ParseFilter(raw string) (Filter, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FilterAll):
		return FilterAll, true
	case string(FilterPositive):
		return FilterPositive, true
	case string(FilterNegative):
		return FilterNegative, true
	default:
		return "", false
	}
}

// Polarity returns the polarity the filter restricts to, or false for FilterAll.
func (f Filter) Polarity() (Polarity, bool) {
	switch f {
	case FilterPositive:
		return PolarityPositive, true
	case FilterNegative:
		return PolarityNegative, true
	default:
		return "", false
	}
}

func (f Filter) Includes(vote Vote) bool {
	polarity, ok := f.Polarity()
	return !ok || vote.Polarity == polarity
}

type Direction int

const (
	DirectionPrev Direction = -1
	DirectionNext Direction = 1
)

func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "next", "+1", "1":
		return DirectionNext, true
	case "prev", "previous", "-1":
		return DirectionPrev, true
	default:
		return 0, false
	}
}
