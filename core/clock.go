package core

import "time"

// Clock abstracts time.Now so that "today" and access-window checks
// are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return realClock{} }
