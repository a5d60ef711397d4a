package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	ownerID := uuid.New()
	done := false

	tests := []struct {
		name     string
		query    domain.TaskQuery
		wantTail string
		wantArgs []any
	}{
		{
			name:     "defaults to creation order",
			query:    domain.TaskQuery{OwnerID: ownerID},
			wantTail: "WHERE t.owner_id = $1 ORDER BY t.created_at ASC, t.id ASC",
			wantArgs: []any{ownerID},
		},
		{
			name: "completed filter and ascending sort",
			query: domain.TaskQuery{
				OwnerID:   ownerID,
				Completed: &done,
				Sort:      &domain.TaskSort{Field: domain.SortByUpdatedAt},
			},
			wantTail: "WHERE t.owner_id = $1 AND t.completed = $2 ORDER BY t.updated_at ASC, t.id ASC",
			wantArgs: []any{ownerID, false},
		},
		{
			name: "unknown sort field falls back to default order",
			query: domain.TaskQuery{
				OwnerID: ownerID,
				Sort:    &domain.TaskSort{Field: "owner_id; DROP TABLE tasks", Descending: true},
			},
			wantTail: "ORDER BY t.created_at ASC, t.id ASC",
			wantArgs: []any{ownerID},
		},
		{
			name:     "skip without limit",
			query:    domain.TaskQuery{OwnerID: ownerID, Skip: 3},
			wantTail: "ORDER BY t.created_at ASC, t.id ASC OFFSET $2",
			wantArgs: []any{ownerID, 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := buildListQuery(tc.query)
			assert.Contains(t, sql, tc.wantTail)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}
