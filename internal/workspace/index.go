package workspace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
)

// RebuildIndex regenerates and writes the summary index of repoPath.
func (m *DefaultManager) RebuildIndex(ctx context.Context, repoPath string) (*domain.WorkspaceIndex, error) {
	records, err := m.List(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	idx := buildIndex(records)
	idx.LastUpdated = m.clock.Now()

	if err := m.store.WriteIndex(ctx, repoPath, idx); err != nil {
		return nil, fmt.Errorf("failed to rebuild workspace index: %w", err)
	}
	return idx, nil
}

// reindex rebuilds the index after a mutation. The index is a cache, so a
// failure is only logged.
func (m *DefaultManager) reindex(ctx context.Context, repoPath string) {
	if _, err := m.RebuildIndex(ctx, repoPath); err != nil {
		log.Warn().Err(err).Str("repository", repoPath).Msg("failed to update workspace index")
	}
}

// buildIndex summarizes records, which must already be in listing order.
func buildIndex(records []*domain.WorkspaceMetadata) *domain.WorkspaceIndex {
	idx := &domain.WorkspaceIndex{
		TotalCount:   len(records),
		WorkspaceIDs: make([]string, 0, len(records)),
	}
	for _, r := range records {
		idx.WorkspaceIDs = append(idx.WorkspaceIDs, r.ID)
		switch r.Status {
		case constants.WorkspaceStatusActive:
			idx.ActiveCount++
		case constants.WorkspaceStatusInactive:
			idx.InactiveCount++
		case constants.WorkspaceStatusArchived:
			idx.ArchivedCount++
		case constants.WorkspaceStatusBroken:
			idx.BrokenCount++
		}
	}
	return idx
}

// Statistics aggregates counts across all workspaces of repoPath.
func (m *DefaultManager) Statistics(ctx context.Context, repoPath string) (*domain.WorkspaceStatistics, error) {
	records, err := m.List(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	stats := &domain.WorkspaceStatistics{
		TotalCount:   len(records),
		StatusCounts: make(map[string]int, len(constants.WorkspaceStatuses())),
		BranchCounts: map[string]int{},
		TagCounts:    map[string]int{},
	}
	for _, s := range constants.WorkspaceStatuses() {
		stats.StatusCounts[s.String()] = 0
	}

	for _, r := range records {
		stats.StatusCounts[r.Status.String()]++
		if r.Branch != "" {
			stats.BranchCounts[r.Branch]++
		}
		for _, tag := range r.Tags {
			stats.TagCounts[tag]++
		}
	}

	// Records are newest first.
	if len(records) > 0 {
		stats.NewestWorkspace = records[0].ID
		stats.OldestWorkspace = records[len(records)-1].ID
	}
	return stats, nil
}
