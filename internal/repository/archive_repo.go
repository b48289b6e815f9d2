package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviarooms/internal/model"
)

// RoomArchive keeps final snapshots of ended rooms so game-over summaries
// survive the store's retention window.
type RoomArchive interface {
	Save(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, roomID string) (*model.Room, error)
}

type roomArchive struct {
	collection *mongo.Collection
}

// NewRoomArchive creates a Mongo-backed archive.
func NewRoomArchive(db *mongo.Database) RoomArchive {
	return &roomArchive{
		collection: db.Collection("finishedRooms"),
	}
}

func (r *roomArchive) Save(ctx context.Context, room *model.Room) error {
	// Upsert by game id so re-archiving an already ended room is a no-op.
	_, err := r.collection.ReplaceOne(ctx,
		map[string]interface{}{"gameId": room.ID},
		room,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *roomArchive) GetByID(ctx context.Context, roomID string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, map[string]interface{}{"gameId": roomID}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}
