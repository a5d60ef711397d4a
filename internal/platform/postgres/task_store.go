package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/store"
)

const taskColumns = `t.id, t.description, t.completed, t.owner_id,
		(SELECT COUNT(*) FROM task_images i WHERE i.task_id = t.id),
		t.created_at, t.updated_at`

// taskSortColumns whitelists the columns a listing may be ordered by.
var taskSortColumns = map[domain.SortField]string{
	domain.SortByDescription: "t.description",
	domain.SortByCompleted:   "t.completed",
	domain.SortByCreatedAt:   "t.created_at",
	domain.SortByUpdatedAt:   "t.updated_at",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.OwnerID,
		&task.ImageCount,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, description, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Description,
		task.Completed,
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1 AND t.owner_id = $2`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// buildListQuery renders the SQL for a listing. Sort columns come only from
// taskSortColumns; every value is a bind parameter.
func buildListQuery(q domain.TaskQuery) (string, []any) {
	var b strings.Builder
	args := []any{q.OwnerID}

	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks t WHERE t.owner_id = $1`)

	if q.Completed != nil {
		args = append(args, *q.Completed)
		fmt.Fprintf(&b, ` AND t.completed = $%d`, len(args))
	}

	order := "t.created_at ASC"
	if q.Sort != nil {
		if column, ok := taskSortColumns[q.Sort.Field]; ok {
			direction := "ASC"
			if q.Sort.Descending {
				direction = "DESC"
			}
			order = column + " " + direction
		}
	}
	b.WriteString(` ORDER BY ` + order + `, t.id ASC`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		fmt.Fprintf(&b, ` OFFSET $%d`, len(args))
	}

	return b.String(), args
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildListQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", q.OwnerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("tasks listed",
		slog.String("owner_id", q.OwnerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET description = $1, completed = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Description,
		task.Completed,
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks t
		WHERE t.id = $1 AND t.owner_id = $2
		RETURNING ` + taskColumns
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for delete", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return task, nil
}

// AppendImages implements store.TaskStore.AppendImages
func (s *PostgresTaskStore) AppendImages(ctx context.Context, taskID uuid.UUID, images [][]byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	// Touching the row takes its lock for the rest of the transaction.
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET updated_at = $1 WHERE id = $2`, now, taskID)
	if err != nil {
		log.Error("failed to lock task for image append",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	var next int
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM task_images WHERE task_id = $1`,
		taskID).Scan(&next)
	if err != nil {
		log.Error("failed to read next image position",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO task_images (id, task_id, position, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		log.Error("failed to prepare image insert", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn("failed to close statement", slog.String("error", closeErr.Error()))
		}
	}()

	for i, data := range images {
		if _, err := stmt.ExecContext(ctx, uuid.New(), taskID, next+i, data, now); err != nil {
			log.Error("failed to insert task image",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()),
				slog.Int("position", next+i))
			return MapError(err)
		}
	}

	log.Info("task images appended",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(images)),
		slog.Int("first_position", next))
	return nil
}

// FirstImage implements store.TaskStore.FirstImage
func (s *PostgresTaskStore) FirstImage(ctx context.Context, taskID uuid.UUID) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT i.data
		FROM tasks t
		LEFT JOIN LATERAL (
			SELECT data FROM task_images WHERE task_id = t.id ORDER BY position LIMIT 1
		) i ON TRUE
		WHERE t.id = $1
	`
	var data []byte
	if err := s.db.QueryRowContext(ctx, query, taskID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task image",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	if data == nil {
		return nil, store.ErrImageNotFound
	}
	return data, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
