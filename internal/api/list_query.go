package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
)

// ParseTaskQuery builds the listing query for ownerID from the URL query.
//
//   - completed=true|false filters on the flag; any other value is ignored
//   - sortBy=field:desc sorts descending, any other direction ascending;
//     unknown fields keep the default creation order
//   - limit and skip must be non-negative integers, anything else is ignored
func ParseTaskQuery(ownerID uuid.UUID, values url.Values) domain.TaskQuery {
	query := domain.TaskQuery{OwnerID: ownerID}

	switch values.Get("completed") {
	case "true":
		completed := true
		query.Completed = &completed
	case "false":
		completed := false
		query.Completed = &completed
	}

	if sortBy := values.Get("sortBy"); sortBy != "" {
		name, direction, _ := strings.Cut(sortBy, ":")
		if field, ok := domain.ParseSortField(name); ok {
			query.Sort = &domain.TaskSort{
				Field:      field,
				Descending: direction == "desc",
			}
		}
	}

	query.Limit = nonNegativeInt(values.Get("limit"))
	query.Skip = nonNegativeInt(values.Get("skip"))
	return query
}

func nonNegativeInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
