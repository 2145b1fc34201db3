package generator

import (
	"fmt"
	"time"

	"github.com/mikequentel/mindfulpost/internal/content"
)

// PromptSelector picks the index of the next prompt out of n.
type PromptSelector interface {
	Select(n int) int
}

// RandomSelector picks uniformly.
type RandomSelector struct {
	Rand content.Rand
}

func (s RandomSelector) Select(n int) int {
	return s.Rand.Intn(n)
}

// RotatingSelector walks the list by wall-clock second, nudged by a random
// 0..2 offset so runs started close together don't land on the same prompt.
type RotatingSelector struct {
	Rand content.Rand
	Now  func() time.Time
}

func (s RotatingSelector) Select(n int) int {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	base := int(now().Unix() % int64(n))
	return (base + s.Rand.Intn(3)) % n
}

// NewSelector maps a configured policy name to a selector.
func NewSelector(policy string, rnd content.Rand) (PromptSelector, error) {
	switch policy {
	case "", "random":
		return RandomSelector{Rand: rnd}, nil
	case "rotating":
		return RotatingSelector{Rand: rnd}, nil
	}
	return nil, fmt.Errorf("unknown prompt selection %q", policy)
}
