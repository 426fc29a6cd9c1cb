package chat

import (
	"time"

	"github.com/xaenox/heartmatch/internal/models"
)

// DefaultBots is the fixed bot roster. Bot ids never overlap human ids.
func DefaultBots() []models.ChatBot {
	return []models.ChatBot{
		{
			ID:     "bot1",
			Name:   "LoveBot",
			Avatar: "https://images.pexels.com/photos/7242908/pexels-photo-7242908.jpeg",
			Bio:    "I can help you find your perfect match!",
		},
		{
			ID:     "bot2",
			Name:   "DateAdvisor",
			Avatar: "https://images.pexels.com/photos/8438923/pexels-photo-8438923.jpeg",
			Bio:    "Dating tips and advice just for you",
		},
		{
			ID:     "bot3",
			Name:   "Cupid",
			Avatar: "https://images.pexels.com/photos/8090137/pexels-photo-8090137.jpeg",
			Bio:    "Let me match you with your soulmate",
		},
	}
}

// DefaultHumans is the fixed roster of human counterparties seeded with a greeting.
func DefaultHumans() []models.User {
	now := time.Now()
	return []models.User{
		{
			ID:             "user1",
			Username:       "emma",
			Email:          "emma@example.com",
			ProfilePicture: "https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg",
			Bio:            "Adventure seeker",
			Age:            27,
			Location:       "Los Angeles",
			Interests:      []string{"hiking", "yoga", "travel"},
			CreatedAt:      now,
		},
		{
			ID:             "user2",
			Username:       "alex",
			Email:          "alex@example.com",
			ProfilePicture: "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg",
			Bio:            "Music lover and coffee addict",
			Age:            30,
			Location:       "Chicago",
			Interests:      []string{"music", "coffee", "art"},
			CreatedAt:      now,
		},
	}
}
