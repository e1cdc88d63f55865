package sample

// Version is the application version.
const Version = "1.0.0"

const (
	// StatusOK indicates success.
	StatusOK = 200
	// StatusError indicates failure.
	StatusError = 500
)

// Base is a base struct.
type Base struct {
	ID int
}

// User embeds Base.
type User struct {
	Base
	Name, Nickname string `json:"name"`
	Age            int    `json:"age"`
}

// Namer is implemented by User.
type Namer interface {
	Named() string
}

// Named returns the display name.
func (u *User) Named() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

// Sum adds the ages of adults.
func Sum(users []User, limit int) (total int) {
	for i, u := range users {
		if i >= limit {
			break
		}
		switch {
		case u.Age >= 18:
			total += u.Age
		default:
			continue
		}
	}
	adults := func(n int) bool { return n > 0 }
	if !adults(total) {
		total = -1
	}
	return
}

func first(xs ...int) (int, bool) {
	var x int
	for _, v := range xs {
		x = v
		return x, true
	}
	_ = Base{ID: StatusOK}
	ch := make(chan int, 1)
	select {
	case v := <-ch:
		return v, false
	default:
	}
	return x, false
}
