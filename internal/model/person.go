package model

// Person is the payee or payer a transaction is associated with.
type Person struct {
	Name   string
	ID     int64
	UserID int64
}
