// Package presence tracks who is on the board: one User per live connection,
// with generated display names, palette colors and last cursor positions.
//
// A Registry is not safe for concurrent use; it is owned by the session's
// event loop.
package presence

import "github.com/dmitrijs2005/sketchboard/internal/board/models"

type Registry struct {
	users      map[string]*models.User
	order      []string
	colorIndex int
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*models.User)}
}

// Join registers a new user for the connection id. The name reflects the
// current head count, not a counter, so names repeat after churn. The color
// index only ever grows.
func (r *Registry) Join(id string) models.User {
	u := &models.User{
		ID:    id,
		Name:  models.DisplayName(len(r.users)),
		Color: models.Palette[r.colorIndex%len(models.Palette)],
	}
	r.colorIndex++

	if _, exists := r.users[id]; !exists {
		r.order = append(r.order, id)
	}
	r.users[id] = u
	return *u
}

// Leave removes the user and reports whether it was present.
func (r *Registry) Leave(id string) (models.User, bool) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, false
	}
	delete(r.users, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *u, true
}

// Get returns a copy of the user with the given id.
func (r *Registry) Get(id string) (models.User, bool) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, false
	}
	return u.Clone(), true
}

// MoveCursor overwrites the user's cursor and returns the updated user.
func (r *Registry) MoveCursor(id string, c models.Cursor) (models.User, bool) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, false
	}
	u.Cursor = &c
	return u.Clone(), true
}

// IDs lists connection ids in join order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Snapshot copies all users in join order.
func (r *Registry) Snapshot() []models.User {
	out := make([]models.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id].Clone())
	}
	return out
}

func (r *Registry) Len() int { return len(r.users) }
