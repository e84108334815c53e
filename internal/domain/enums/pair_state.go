package enums

type PairState string

const (
	PairStatePending      PairState = "pending"
	PairStateDisagreement PairState = "disagreement"
	PairStateFavorited    PairState = "favorited"
)
