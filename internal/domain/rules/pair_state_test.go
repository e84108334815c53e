package rules

import (
	"testing"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

func decision(d enums.SwipeDecision) *enums.SwipeDecision {
	return &d
}

func TestPairStatePendingWhenAnyDecisionMissing(t *testing.T) {
	cases := []struct {
		name   string
		first  *enums.SwipeDecision
		second *enums.SwipeDecision
	}{
		{"no decisions", nil, nil},
		{"only first decided yes", decision(enums.SwipeDecisionYes), nil},
		{"only first decided no", decision(enums.SwipeDecisionNo), nil},
		{"only second decided", nil, decision(enums.SwipeDecisionYes)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PairStateFor(tc.first, tc.second); got != enums.PairStatePending {
				t.Fatalf("unexpected pair state: got %s want %s", got, enums.PairStatePending)
			}
		})
	}
}

func TestPairStateFavoritedOnlyWhenBothYes(t *testing.T) {
	got := PairStateFor(decision(enums.SwipeDecisionYes), decision(enums.SwipeDecisionYes))
	if got != enums.PairStateFavorited {
		t.Fatalf("unexpected pair state: got %s want %s", got, enums.PairStateFavorited)
	}
}

func TestPairStateDisagreementWhenNotBothYes(t *testing.T) {
	cases := []struct {
		name   string
		first  enums.SwipeDecision
		second enums.SwipeDecision
	}{
		{"yes/no", enums.SwipeDecisionYes, enums.SwipeDecisionNo},
		{"no/yes", enums.SwipeDecisionNo, enums.SwipeDecisionYes},
		{"no/no", enums.SwipeDecisionNo, enums.SwipeDecisionNo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PairStateFor(decision(tc.first), decision(tc.second)); got != enums.PairStateDisagreement {
				t.Fatalf("unexpected pair state: got %s want %s", got, enums.PairStateDisagreement)
			}
		})
	}
}

func TestPairStateIsSymmetric(t *testing.T) {
	first := decision(enums.SwipeDecisionYes)
	second := decision(enums.SwipeDecisionNo)

	if PairStateFor(first, second) != PairStateFor(second, first) {
		t.Fatalf("pair state must not depend on argument order")
	}
}
