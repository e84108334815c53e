package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

// CandidateRecord is one scored listing joined with both users' live swipe
// decisions and favorite state, the shape the dashboard consumes.
type CandidateRecord struct {
	Property       model.Property
	Match          model.PropertyMatch
	DecisionA      *enums.SwipeDecision
	DecisionB      *enums.SwipeDecision
	Favorited      bool
	FavoriteStatus *enums.FavoriteStatus
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// InsertIgnoreDuplicates appends match records. The (property_id,
// preference_version) key makes re-evaluation after a partial failure a
// no-op for pairs already scored; match history is never edited in place.
func (r *MatchRepo) InsertIgnoreDuplicates(ctx context.Context, matches []model.PropertyMatch) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	inserted := 0
	for _, m := range matches {
		if m.PropertyID == "" || m.PreferenceVersion <= 0 {
			return inserted, fmt.Errorf("invalid match record %q v%d", m.PropertyID, m.PreferenceVersion)
		}

		tag, err := r.pool.Exec(ctx, `
INSERT INTO property_matches (
	property_id, preference_version, match_score,
	criteria_met, criteria_missed, reasoning, run_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (property_id, preference_version) DO NOTHING
`, m.PropertyID, m.PreferenceVersion, m.MatchScore,
			m.CriteriaMet, m.CriteriaMissed, m.Reasoning, m.RunID, m.CreatedAt)
		if err != nil {
			return inserted, fmt.Errorf("insert match %s v%d: %w", m.PropertyID, m.PreferenceVersion, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ExistingForVersion reports which of the given properties already have a
// match record at the given preference version.
func (r *MatchRepo) ExistingForVersion(ctx context.Context, propertyIDs []string, version int) (map[string]bool, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(propertyIDs) == 0 {
		return map[string]bool{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT property_id
FROM property_matches
WHERE preference_version = $1 AND property_id = ANY($2)
`, version, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("list existing matches v%d: %w", version, err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(propertyIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan existing match: %w", err)
		}
		existing[id] = true
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate existing matches: %w", rows.Err())
	}

	return existing, nil
}

// ListCandidates returns all live scored listings for a preference version,
// best score first, with the household's swipe and favorite status attached.
func (r *MatchRepo) ListCandidates(ctx context.Context, version int, userA, userB string) ([]CandidateRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.id, p.source, p.source_id, p.address, p.city, p.area, p.latitude, p.longitude,
	p.price, p.rooms, p.sqm, p.description, p.features, p.images, p.url, p.status,
	p.raw_key, p.scraped_at, p.first_seen_at, p.last_seen_at, p.removed_at,
	m.match_score, m.criteria_met, m.criteria_missed, m.reasoning, m.run_id, m.created_at,
	sa.decision, sb.decision,
	f.property_id IS NOT NULL, f.status
FROM property_matches m
JOIN properties p ON p.id = m.property_id
LEFT JOIN user_swipes sa ON sa.property_id = p.id AND sa.user_id = $2
LEFT JOIN user_swipes sb ON sb.property_id = p.id AND sb.user_id = $3
LEFT JOIN favorite_properties f ON f.property_id = p.id
WHERE m.preference_version = $1 AND p.removed_at IS NULL
ORDER BY m.match_score DESC, p.id
`, version, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("list candidates v%d: %w", version, err)
	}
	defer rows.Close()

	var items []CandidateRecord
	for rows.Next() {
		var item CandidateRecord
		var source, status string
		var decisionA, decisionB, favStatus *string
		if err := rows.Scan(
			&item.Property.ID, &source, &item.Property.SourceID, &item.Property.Address,
			&item.Property.Location.City, &item.Property.Location.Area,
			&item.Property.Location.Latitude, &item.Property.Location.Longitude,
			&item.Property.Price, &item.Property.Rooms, &item.Property.SquareM,
			&item.Property.Description, &item.Property.Features, &item.Property.Images,
			&item.Property.URL, &status,
			&item.Property.RawKey, &item.Property.ScrapedAt,
			&item.Property.FirstSeenAt, &item.Property.LastSeenAt, &item.Property.RemovedAt,
			&item.Match.MatchScore, &item.Match.CriteriaMet, &item.Match.CriteriaMissed,
			&item.Match.Reasoning, &item.Match.RunID, &item.Match.CreatedAt,
			&decisionA, &decisionB,
			&item.Favorited, &favStatus,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		item.Property.Source = enums.Source(source)
		item.Property.Status = enums.ListingStatus(status)
		item.Match.PropertyID = item.Property.ID
		item.Match.PreferenceVersion = version
		if decisionA != nil {
			d := enums.SwipeDecision(*decisionA)
			item.DecisionA = &d
		}
		if decisionB != nil {
			d := enums.SwipeDecision(*decisionB)
			item.DecisionB = &d
		}
		if favStatus != nil {
			s := enums.FavoriteStatus(*favStatus)
			item.FavoriteStatus = &s
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}
