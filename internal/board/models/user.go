// Package models holds the data shared by every board component: the users
// present on the board and the drawing operations in its history.
package models

import "fmt"

// Palette is the fixed set of colors handed out to users in join order.
// The index wraps, so the ninth concurrent user shares the first user's color.
var Palette = [8]string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEAA7",
	"#DDA0DD",
	"#98D8C8",
	"#F7DC6F",
}

// Cursor is the last pointer position reported by a user.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// User is one connected party. ID equals the connection identity.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Cursor *Cursor `json:"cursor"`
}

// Public is the subset of a user attached to relayed cursor events.
type Public struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Public strips the cursor.
func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Color: u.Color}
}

// Clone returns a copy that does not share the cursor pointer.
func (u User) Clone() User {
	if u.Cursor != nil {
		c := *u.Cursor
		u.Cursor = &c
	}
	return u
}

// DisplayName is the generated name for a user joining a board that already
// holds present users.
func DisplayName(present int) string {
	return fmt.Sprintf("User %d", present+1)
}
