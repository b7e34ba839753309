package model

import (
	"cmp"
	"slices"
)

// SortTeams orders teams by points descending, then name ascending
func SortTeams(teams []*Team) {
	slices.SortStableFunc(teams, func(a, b *Team) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortChallenges orders challenges newest first
func SortChallenges(challenges []*Challenge) {
	slices.SortStableFunc(challenges, func(a, b *Challenge) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
