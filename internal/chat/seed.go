package chat

import (
	"fmt"
	"time"

	"github.com/xaenox/heartmatch/internal/models"
)

// Seed offsets relative to session start. Greetings are older than replies.
const (
	humanGreetingAge = time.Hour
	humanReplyAge    = 50 * time.Minute
	botGreetingAge   = 2 * time.Hour
)

func (s *Store) seedConversations(me *models.User) models.Conversations {
	now := s.now()
	convs := make(models.Conversations, len(s.humans)+len(s.bots))

	for _, h := range s.humans {
		convs[h.ID] = []models.Message{
			{
				ID:         s.newID(),
				SenderID:   h.ID,
				ReceiverID: me.ID,
				Content:    fmt.Sprintf("Hi %s! How are you?", me.Username),
				Timestamp:  now.Add(-humanGreetingAge),
				Read:       true,
			},
			{
				ID:         s.newID(),
				SenderID:   me.ID,
				ReceiverID: h.ID,
				Content:    "I'm good, thanks for asking! How about you?",
				Timestamp:  now.Add(-humanReplyAge),
				Read:       true,
			},
		}
	}

	for _, b := range s.bots {
		convs[b.ID] = []models.Message{
			{
				ID:         s.newID(),
				SenderID:   b.ID,
				ReceiverID: me.ID,
				Content:    fmt.Sprintf("Hello %s! I'm %s. How can I help you today?", me.Username, b.Name),
				Timestamp:  now.Add(-botGreetingAge),
				IsBot:      true,
				Read:       true,
			},
		}
	}
	return convs
}
