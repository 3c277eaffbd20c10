package core

// DBOrdering is a single ordering clause shared by the SQL and REST repositories.
type DBOrdering struct {
	Field     string
	Ascending bool
}

// String renders the clause for SQL: `created_at DESC`.
func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

