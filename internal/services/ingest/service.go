// Package ingest collects raw listings from every registered source,
// archives the raw payloads, and normalizes them into canonical properties
// for the diff engine.
package ingest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	"github.com/hamiltoon/housing-scout/internal/sources"
)

type RawArchive interface {
	Put(ctx context.Context, date string, source enums.Source, sourceID string, payload []byte) (string, error)
}

type Result struct {
	Properties   []model.Property
	Scraped      int
	Invalid      int
	SourceErrors int
}

type Service struct {
	sources []sources.Source
	archive RawArchive
	logger  *zap.Logger
}

func NewService(srcs []sources.Source, archive RawArchive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sources: srcs,
		archive: archive,
		logger:  logger,
	}
}

// Collect fetches the current listing set for one run date. A failing
// source only loses its own contribution; archive failures are storage
// failures and abort the run. Duplicate ids within a cycle keep the first
// occurrence.
func (s *Service) Collect(ctx context.Context, date string) (Result, error) {
	var result Result
	seen := map[string]bool{}

	for _, source := range s.sources {
		raws, err := source.FetchCurrentListings(ctx)
		if err != nil {
			var fetchErr *sources.FetchError
			if errors.As(err, &fetchErr) {
				s.logger.Warn("source fetch failed, skipping for this run",
					zap.String("source", string(fetchErr.Source)),
					zap.Error(err),
				)
				result.SourceErrors++
				continue
			}
			return Result{}, err
		}

		for _, raw := range raws {
			result.Scraped++

			key, err := s.archive.Put(ctx, date, raw.Source, raw.SourceID, raw.Payload)
			if err != nil {
				return Result{}, err
			}

			property, err := Normalize(raw)
			if err != nil {
				var validationErr *ValidationError
				if errors.As(err, &validationErr) {
					s.logger.Warn("dropping invalid listing",
						zap.String("source", string(raw.Source)),
						zap.String("source_id", validationErr.SourceID),
						zap.String("reason", validationErr.Reason),
					)
					result.Invalid++
					continue
				}
				return Result{}, err
			}

			if seen[property.ID] {
				continue
			}
			seen[property.ID] = true

			property.RawKey = key
			result.Properties = append(result.Properties, property)
		}
	}

	return result, nil
}
