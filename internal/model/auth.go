package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the room-scoped JWT issued when a player joins. A
// reconnecting client may present it to prove the name it is rebinding.
type PlayerClaims struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	jwt.RegisteredClaims
}
