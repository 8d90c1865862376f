// Package domain provides shared domain types for workhorse.
package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/CoderDKai/workhorse/internal/constants"
)

// WorkspaceMetadata is the durable record of a workspace.
// Each workspace corresponds to one git worktree of a managed repository.
//
// Example JSON representation:
//
//	{
//	    "id": "3f0c9a7e-2b1d-4c55-9d1f-6a8b2e4f7c10",
//	    "name": "auth-feature",
//	    "repository_path": "/src/app",
//	    "workspace_path": "/src/app-auth-feature",
//	    "branch": "feat/user-auth",
//	    "status": "active",
//	    "created_at": "2026-01-12T10:00:00Z",
//	    "updated_at": "2026-01-12T10:05:00Z",
//	    "tags": ["backend"],
//	    "custom_fields": {"ticket": "AUTH-12"}
//	}
type WorkspaceMetadata struct {
	// ID is a random UUID assigned at creation.
	ID string `json:"id"`

	// Name is the human-readable workspace name.
	Name string `json:"name"`

	// RepositoryPath is the root of the managed repository that owns the record.
	RepositoryPath string `json:"repository_path"`

	// WorkspacePath is the worktree directory. Unique per repository.
	WorkspacePath string `json:"workspace_path"`

	// Branch is the branch checked out in the worktree, if any.
	Branch string `json:"branch,omitempty"`

	// Status is the lifecycle state.
	Status constants.WorkspaceStatus `json:"status"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`

	Description string `json:"description,omitempty"`

	// Tags is kept sorted and free of duplicates.
	Tags []string `json:"tags"`

	CustomFields map[string]string `json:"custom_fields"`
}

// HasTag reports whether the workspace carries tag.
func (m *WorkspaceMetadata) HasTag(tag string) bool {
	_, found := slices.BinarySearch(m.Tags, tag)
	return found
}

// AddTag inserts tag keeping the set sorted. Returns false when it was already present.
func (m *WorkspaceMetadata) AddTag(tag string) bool {
	idx, found := slices.BinarySearch(m.Tags, tag)
	if found {
		return false
	}
	m.Tags = slices.Insert(m.Tags, idx, tag)
	return true
}

// RemoveTag deletes tag. Returns false when it was absent.
func (m *WorkspaceMetadata) RemoveTag(tag string) bool {
	idx, found := slices.BinarySearch(m.Tags, tag)
	if !found {
		return false
	}
	m.Tags = slices.Delete(m.Tags, idx, idx+1)
	return true
}

// NormalizeTags sorts the tag set and drops duplicates and empty entries.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Clone returns a deep copy of the metadata.
func (m *WorkspaceMetadata) Clone() *WorkspaceMetadata {
	if m == nil {
		return nil
	}
	c := *m
	c.Tags = slices.Clone(m.Tags)
	c.CustomFields = maps.Clone(m.CustomFields)
	if m.LastAccessedAt != nil {
		t := *m.LastAccessedAt
		c.LastAccessedAt = &t
	}
	if m.ArchivedAt != nil {
		t := *m.ArchivedAt
		c.ArchivedAt = &t
	}
	return &c
}

// WorkspaceInfo combines a record with the live state of its worktree.
type WorkspaceInfo struct {
	Metadata      *WorkspaceMetadata `json:"metadata"`
	GitStatus     *GitStatus         `json:"git_status,omitempty"`
	PathExists    bool               `json:"path_exists"`
	IsGitWorktree bool               `json:"is_git_worktree"`
}

// GitStatus is the subset of repository status shown for a workspace.
type GitStatus struct {
	Branch string `json:"branch"`
	Dirty  bool   `json:"dirty"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
	Files  int    `json:"files"`
}

// WorkspaceIndex is a derived summary of all records of a repository.
// It can always be regenerated from the records.
type WorkspaceIndex struct {
	TotalCount    int       `json:"total_count"`
	ActiveCount   int       `json:"active_count"`
	InactiveCount int       `json:"inactive_count"`
	ArchivedCount int       `json:"archived_count"`
	BrokenCount   int       `json:"broken_count"`
	LastUpdated   time.Time `json:"last_updated"`
	WorkspaceIDs  []string  `json:"workspace_ids"`
}

// WorkspaceStatistics aggregates counts across all records of a repository.
type WorkspaceStatistics struct {
	TotalCount      int            `json:"total_count"`
	StatusCounts    map[string]int `json:"status_counts"`
	BranchCounts    map[string]int `json:"branch_counts"`
	TagCounts       map[string]int `json:"tag_counts"`
	OldestWorkspace string         `json:"oldest_workspace,omitempty"`
	NewestWorkspace string         `json:"newest_workspace,omitempty"`
}

// CreateWorkspaceRequest holds the parameters for creating a workspace.
type CreateWorkspaceRequest struct {
	Name        string   `json:"name"`
	Branch      string   `json:"branch,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	BasePath    string   `json:"base_path,omitempty"`
}

// ArchiveWorkspaceRequest holds the parameters for archiving a workspace.
type ArchiveWorkspaceRequest struct {
	WorkspaceID   string `json:"workspace_id"`
	KeepFiles     bool   `json:"keep_files"`
	ArchiveReason string `json:"archive_reason,omitempty"`
}
