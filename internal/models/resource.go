package models

// Resource describes one kind of financial entry and the table backing it.
type Resource struct {
	// Kind is the singular name used in logs and messages.
	Kind string
	// Table is the SQL table holding rows of this kind.
	Table string
}

var (
	// Costs are money going out.
	Costs = Resource{Kind: "cost", Table: "costs"}
	// Receivements are money coming in.
	Receivements = Resource{Kind: "receivement", Table: "receivements"}
)
