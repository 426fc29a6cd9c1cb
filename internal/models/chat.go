package models

import "time"

// ChatBot is a fixed automated counterparty.
type ChatBot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// Message is one entry of a conversation between the current user and a counterparty.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsBot      bool      `json:"isBot"`
	Read       bool      `json:"read"`
}

// Conversations maps a counterparty id to its messages in insertion order.
type Conversations map[string][]Message

// Counterparty is the presentation view of either a human profile or a bot.
type Counterparty struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
	IsBot  bool   `json:"isBot"`
}

func CounterpartyFromUser(u User) Counterparty {
	return Counterparty{ID: u.ID, Name: u.Username, Avatar: u.ProfilePicture, Bio: u.Bio}
}

func CounterpartyFromBot(b ChatBot) Counterparty {
	return Counterparty{ID: b.ID, Name: b.Name, Avatar: b.Avatar, Bio: b.Bio, IsBot: true}
}

// Like records a right swipe in the discovery feed.
type Like struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	LikedUserID string    `json:"likedUserId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Match is a mutual like between two users.
type Match struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1Id"`
	User2ID   string    `json:"user2Id"`
	CreatedAt time.Time `json:"createdAt"`
}
