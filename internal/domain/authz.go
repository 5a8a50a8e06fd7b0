package domain

// Group represents a named role a user can belong to.
type Group struct {
	ID          int64
	Name        string
	Description string
}

// Permission represents a grantable capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}
