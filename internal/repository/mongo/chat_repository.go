package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const chatsCollection = "chats"

type messageDocument struct {
	SenderID  string    `bson:"senderId"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdAt"`
}

type chatDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PairKey      string             `bson:"pairKey"`
	Participants []string           `bson:"participants"`
	Messages     []messageDocument  `bson:"messages"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *chatDocument) toDomain() (*domain.Chat, error) {
	chat := &domain.Chat{
		ID:           d.ID.Hex(),
		PairKey:      d.PairKey,
		Participants: make([]uuid.UUID, 0, len(d.Participants)),
		Messages:     make([]domain.Message, 0, len(d.Messages)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, p := range d.Participants {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("chat %s has malformed participant %q: %w", chat.ID, p, err)
		}
		chat.Participants = append(chat.Participants, id)
	}
	for _, m := range d.Messages {
		sender, err := uuid.Parse(m.SenderID)
		if err != nil {
			return nil, fmt.Errorf("chat %s has malformed sender %q: %w", chat.ID, m.SenderID, err)
		}
		chat.Messages = append(chat.Messages, domain.Message{
			SenderID:  sender,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return chat, nil
}

type chatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(db *mongo.Database) repository.ChatRepository {
	return &chatRepository{collection: db.Collection(chatsCollection)}
}

func (r *chatRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pair_key"),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetName("participants"),
		},
	})
	if err != nil {
		return fmt.Errorf("create chat indexes: %w", err)
	}
	return nil
}

func (r *chatRepository) GetOrCreate(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	now := time.Now().UTC()
	filter := bson.M{"pairKey": domain.PairKey(a, b)}
	update := bson.M{
		"$setOnInsert": bson.M{
			"participants": []string{a.String(), b.String()},
			"messages":     bson.A{},
			"createdAt":    now,
			"updatedAt":    now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc chatDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost an upsert race on the unique index; the winner's document is there now
		err = r.collection.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create chat: %w", err)
	}
	return doc.toDomain()
}

func (r *chatRepository) AppendMessage(ctx context.Context, a, b uuid.UUID, msg domain.Message) error {
	filter := bson.M{"pairKey": domain.PairKey(a, b)}
	update := bson.M{
		"$push": bson.M{"messages": messageDocument{
			SenderID:  msg.SenderID.String(),
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		}},
		"$set": bson.M{"updatedAt": msg.CreatedAt},
		"$setOnInsert": bson.M{
			"participants": []string{a.String(), b.String()},
			"createdAt":    msg.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// both participants sent the first message at once; the other insert won
		_, err = r.collection.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}
