package discover

import (
	"time"

	"github.com/xaenox/heartmatch/internal/models"
)

func DefaultProfiles() []models.User {
	now := time.Now()
	return []models.User{
		{
			ID:             "user1",
			Username:       "Emma",
			Email:          "emma@example.com",
			ProfilePicture: "https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg",
			Bio:            "Adventure seeker and coffee enthusiast. Love hiking and photography.",
			Age:            27,
			Location:       "Los Angeles",
			Interests:      []string{"hiking", "photography", "travel"},
			CreatedAt:      now,
		},
		{
			ID:             "user2",
			Username:       "Alex",
			Email:          "alex@example.com",
			ProfilePicture: "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg",
			Bio:            "Music lover and coffee addict. Always looking for new adventures.",
			Age:            30,
			Location:       "Chicago",
			Interests:      []string{"music", "coffee", "art"},
			CreatedAt:      now,
		},
		{
			ID:             "user3",
			Username:       "Sophia",
			Email:          "sophia@example.com",
			ProfilePicture: "https://images.pexels.com/photos/774909/pexels-photo-774909.jpeg",
			Bio:            "Bookworm and yoga instructor. Love quiet evenings and deep conversations.",
			Age:            28,
			Location:       "New York",
			Interests:      []string{"yoga", "reading", "cooking"},
			CreatedAt:      now,
		},
		{
			ID:             "user4",
			Username:       "James",
			Email:          "james@example.com",
			ProfilePicture: "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg",
			Bio:            "Tech enthusiast and foodie. Looking for someone to explore new restaurants with.",
			Age:            32,
			Location:       "San Francisco",
			Interests:      []string{"technology", "food", "hiking"},
			CreatedAt:      now,
		},
		{
			ID:             "user5",
			Username:       "Olivia",
			Email:          "olivia@example.com",
			ProfilePicture: "https://images.pexels.com/photos/1036623/pexels-photo-1036623.jpeg",
			Bio:            "Artist and animal lover. Spend most of my weekends at art galleries or dog parks.",
			Age:            26,
			Location:       "Portland",
			Interests:      []string{"art", "animals", "nature"},
			CreatedAt:      now,
		},
	}
}
