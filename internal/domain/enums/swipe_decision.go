package enums

type SwipeDecision string

const (
	SwipeDecisionYes SwipeDecision = "yes"
	SwipeDecisionNo  SwipeDecision = "no"
)

func (d SwipeDecision) Valid() bool {
	return d == SwipeDecisionYes || d == SwipeDecisionNo
}
