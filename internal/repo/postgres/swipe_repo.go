package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert applies a last-write-wins decision for the (user, property) key.
// Terminal-state protection lives in the service, which checks the favorite
// row under the per-property lock before calling this.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, userID, propertyID string, decision enums.SwipeDecision, at time.Time) error {
	if userID == "" || propertyID == "" {
		return fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	_, err := tx.Exec(ctx, `
INSERT INTO user_swipes (user_id, property_id, decision, decided_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, property_id) DO UPDATE SET
	decision = EXCLUDED.decision,
	decided_at = EXCLUDED.decided_at
`, userID, propertyID, decision, at)
	if err != nil {
		return fmt.Errorf("upsert swipe %s/%s: %w", userID, propertyID, err)
	}

	return nil
}

// PairDecisions reads both users' live decisions for one property. Nil
// means the user has not decided.
func (r *SwipeRepo) PairDecisions(ctx context.Context, tx pgx.Tx, propertyID, userA, userB string) (*enums.SwipeDecision, *enums.SwipeDecision, error) {
	if tx == nil {
		return nil, nil, fmt.Errorf("transaction is required")
	}

	rows, err := tx.Query(ctx, `
SELECT user_id, decision
FROM user_swipes
WHERE property_id = $1 AND user_id = ANY($2)
`, propertyID, []string{userA, userB})
	if err != nil {
		return nil, nil, fmt.Errorf("read pair decisions for %s: %w", propertyID, err)
	}
	defer rows.Close()

	var decisionA, decisionB *enums.SwipeDecision
	for rows.Next() {
		var userID, decision string
		if err := rows.Scan(&userID, &decision); err != nil {
			return nil, nil, fmt.Errorf("scan pair decision: %w", err)
		}
		d := enums.SwipeDecision(decision)
		switch userID {
		case userA:
			decisionA = &d
		case userB:
			decisionB = &d
		}
	}

	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("iterate pair decisions: %w", rows.Err())
	}

	return decisionA, decisionB, nil
}
