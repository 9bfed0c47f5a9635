package model

// CategoryKind indicates whether a category holds income or expense postings.
type CategoryKind string

const (
	// CategoryKindIncome represents income (receita) categories.
	CategoryKindIncome CategoryKind = "income"
	// CategoryKindExpense represents expense (despesa) categories.
	CategoryKindExpense CategoryKind = "expense"
)

// Category is a node in the user's chart of accounts. Categories form a tree
// via ParentID; only leaf categories may receive postings.
type Category struct {
	Description string
	Kind        CategoryKind
	ID          int64
	ParentID    int64
	UserID      int64
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == 0
}
