package model

// Account is a transient copy of one row of the cards table. The store is
// the source of truth; a copy is fetched per operation and never cached.
type Account struct {
	Number  string
	PIN     string
	Balance float64
}
