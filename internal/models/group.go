package models

// Group is a set of people sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Code is the short join code shared with new members (6 uppercase characters).
	Code string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a person within a group.
// A member can only be removed while no expense or split references them.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the display name, unique within the group.
	Name string

	// CreatedAt is the Unix timestamp when the member joined.
	CreatedAt int64
}
