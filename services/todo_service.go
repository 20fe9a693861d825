package services

import (
	"context"
	"fmt"

	"notepad/models"
	"notepad/provider"
)

var (
	todoListProjection   = []string{models.ColumnID, models.TodoColumnTitle, models.TodoColumnCompleted, models.TodoColumnDueDate}
	todoEditorProjection = []string{models.ColumnID, models.TodoColumnTitle, models.TodoColumnContent, models.TodoColumnCompleted, models.TodoColumnCreated, models.TodoColumnDueDate}
)

// TodoService handles the todo list and editor workflows
type TodoService struct {
	resolver Resolver
}

func NewTodoService(resolver Resolver) *TodoService {
	return &TodoService{resolver: resolver}
}

// List returns todos, newest first. A non-nil completed filters by state.
func (ts *TodoService) List(ctx context.Context, completed *bool) ([]models.Todo, error) {
	selection, args := "", []any(nil)
	if completed != nil {
		selection = models.TodoColumnCompleted + " = ?"
		args = []any{boolInt(*completed)}
	}

	c, err := ts.resolver.Query(ctx, models.TodosURI, todoListProjection, selection, args, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]models.Todo, 0, c.Count())
	for c.Next() {
		todos = append(todos, todoFromCursor(c))
	}
	return todos, nil
}

func (ts *TodoService) Get(ctx context.Context, id int64) (*models.Todo, error) {
	c, err := ts.resolver.Query(ctx, models.TodoURI(id), todoEditorProjection, "", nil, "")
	if err != nil {
		return nil, err
	}
	if !c.MoveToFirst() {
		return nil, fmt.Errorf("%w: %d", ErrTodoNotFound, id)
	}
	todo := todoFromCursor(c)
	return &todo, nil
}

// Create inserts a todo. Nil fields take their defaults.
func (ts *TodoService) Create(ctx context.Context, req models.TodoRequest) (*models.Todo, error) {
	change, err := ts.resolver.Insert(ctx, models.TodosURI, todoValues(req))
	if err != nil {
		return nil, err
	}
	id, err := idFromURI(change.URI)
	if err != nil {
		return nil, err
	}
	return ts.Get(ctx, id)
}

// Update changes the non-nil fields of req
func (ts *TodoService) Update(ctx context.Context, id int64, req models.TodoRequest) (*models.Todo, error) {
	if err := ts.update(ctx, id, todoValues(req)); err != nil {
		return nil, err
	}
	return ts.Get(ctx, id)
}

func (ts *TodoService) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return ts.update(ctx, id, models.Values{models.TodoColumnCompleted: completed})
}

// ClearCompleted deletes every completed todo and returns how many went.
func (ts *TodoService) ClearCompleted(ctx context.Context) (int64, error) {
	change, err := ts.resolver.Delete(ctx, models.TodosURI, models.TodoColumnCompleted+" = ?", []any{1})
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed todos: %w", err)
	}
	return change.Count, nil
}

func (ts *TodoService) Delete(ctx context.Context, id int64) error {
	change, err := ts.resolver.Delete(ctx, models.TodoURI(id), "", nil)
	if err != nil {
		return err
	}
	if change.Count == 0 {
		return fmt.Errorf("%w: %d", ErrTodoNotFound, id)
	}
	return nil
}

func (ts *TodoService) update(ctx context.Context, id int64, values models.Values) error {
	if len(values) == 0 {
		// Nothing to write; still report a missing item
		_, err := ts.Get(ctx, id)
		return err
	}
	change, err := ts.resolver.Update(ctx, models.TodoURI(id), values, "", nil)
	if err != nil {
		return err
	}
	if change.Count == 0 {
		return fmt.Errorf("%w: %d", ErrTodoNotFound, id)
	}
	return nil
}

func todoValues(req models.TodoRequest) models.Values {
	values := models.Values{}
	if req.Title != nil {
		values[models.TodoColumnTitle] = *req.Title
	}
	if req.Content != nil {
		values[models.TodoColumnContent] = *req.Content
	}
	if req.Completed != nil {
		values[models.TodoColumnCompleted] = *req.Completed
	}
	if req.DueDate != nil {
		values[models.TodoColumnDueDate] = *req.DueDate
	}
	return values
}

func todoFromCursor(c *provider.Cursor) models.Todo {
	todo := models.Todo{
		ID:        c.Int64(models.ColumnID),
		Title:     c.String(models.TodoColumnTitle),
		Content:   c.String(models.TodoColumnContent),
		Completed: c.Bool(models.TodoColumnCompleted),
		CreatedAt: timeFromCursor(c, models.TodoColumnCreated),
	}
	if !c.IsNull(models.TodoColumnDueDate) {
		due := timeFromCursor(c, models.TodoColumnDueDate)
		todo.DueAt = &due
	}
	return todo
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
