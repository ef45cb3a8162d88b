package tournament

import (
	"errors"
	"fmt"
)

var ErrInvalidRules = errors.New("invalid tournament rules")

// Rules stores group-stage structure parameters.
type Rules struct {
	FinalRound             int
	GroupCount             int
	MaxTeamsPerGroup       int
	DefaultQualifyingCount int
	QualifyingCountByRound map[int]int
}

func DefaultRules() Rules {
	return Rules{
		FinalRound:             3,
		GroupCount:             2,
		MaxTeamsPerGroup:       6,
		DefaultQualifyingCount: 4,
	}
}

func (r Rules) Validate() error {
	if r.FinalRound < 1 {
		return fmt.Errorf("%w: final round must be >= 1", ErrInvalidRules)
	}
	if r.GroupCount < 1 {
		return fmt.Errorf("%w: group count must be >= 1", ErrInvalidRules)
	}
	if r.MaxTeamsPerGroup < 2 {
		return fmt.Errorf("%w: max teams per group must be >= 2", ErrInvalidRules)
	}
	if r.DefaultQualifyingCount < 0 {
		return fmt.Errorf("%w: qualifying count must be >= 0", ErrInvalidRules)
	}
	for round, count := range r.QualifyingCountByRound {
		if !r.ValidRound(round) {
			return fmt.Errorf("%w: qualifying count configured for unknown round %d", ErrInvalidRules, round)
		}
		if count < 0 {
			return fmt.Errorf("%w: qualifying count for round %d must be >= 0", ErrInvalidRules, round)
		}
	}
	return nil
}

func (r Rules) ValidRound(round int) bool {
	return round >= 1 && round <= r.FinalRound
}

func (r Rules) ValidGroup(group int) bool {
	return group >= 1 && group <= r.GroupCount
}

// IsFinalRound reports whether cross-group fixtures are allowed in round.
func (r Rules) IsFinalRound(round int) bool {
	return round >= r.FinalRound
}

func (r Rules) QualifyingCount(round int) int {
	if count, ok := r.QualifyingCountByRound[round]; ok {
		return count
	}
	return r.DefaultQualifyingCount
}

// Groups returns every group number in ascending order.
func (r Rules) Groups() []int {
	out := make([]int, 0, r.GroupCount)
	for group := 1; group <= r.GroupCount; group++ {
		out = append(out, group)
	}
	return out
}

func (r Rules) Rounds() []int {
	out := make([]int, 0, r.FinalRound)
	for round := 1; round <= r.FinalRound; round++ {
		out = append(out, round)
	}
	return out
}
