package domain

type User struct {
	ID       int64
	Email    string // unique, compared case-sensitively
	Password string // opaque, stored verbatim
	Name     string
}
