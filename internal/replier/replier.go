package replier

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/xaenox/heartmatch/internal/models"
)

// Replier produces the text of an automated bot reply.
type Replier interface {
	Reply(ctx context.Context, bot models.ChatBot, history []models.Message) string
}

var CannedReplies = []string{
	"That's interesting! Tell me more about yourself.",
	"I think you might like some of our new members. Want to see?",
	"Based on your profile, I can suggest some great matches for you!",
	"Have you updated your profile recently? It helps find better matches.",
	"What are you looking for in a potential match?",
}

// CannedReplier picks one of CannedReplies uniformly at random.
type CannedReplier struct {
	mu   sync.Mutex
	intn func(n int) int
}

func NewCannedReplier() *CannedReplier {
	return &CannedReplier{intn: rand.IntN}
}

// NewCannedReplierWithSource is used where the choice must be reproducible.
func NewCannedReplierWithSource(src rand.Source) *CannedReplier {
	r := rand.New(src)
	return &CannedReplier{intn: r.IntN}
}

func (c *CannedReplier) Reply(ctx context.Context, bot models.ChatBot, history []models.Message) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CannedReplies[c.intn(len(CannedReplies))]
}
