package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// assistantStore keeps chat history. Documents carry expiresAt so a
// Firestore TTL policy on that field can purge them.
type assistantStore struct {
	client *firestore.Client
}

func NewAssistantStore(client *firestore.Client) *assistantStore {
	return &assistantStore{client: client}
}

func (s *assistantStore) messagesCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("assistant_messages")
}

func (s *assistantStore) SaveMessage(ctx context.Context, uid string, msg models.ChatMessage) error {
	if _, err := s.messagesCollection(uid).Doc(msg.ID).Set(ctx, msg); err != nil {
		return errs.NewDatabaseError("update", "failed to save chat message", err)
	}
	return nil
}

func (s *assistantStore) GetMessage(ctx context.Context, uid, messageID string) (*models.ChatMessage, error) {
	doc, err := s.messagesCollection(uid).Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("message not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get chat message", err)
	}
	var msg models.ChatMessage
	if err := doc.DataTo(&msg); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse chat message", err)
	}
	return &msg, nil
}

// ListMessages returns the newest limit messages, oldest first.
func (s *assistantStore) ListMessages(ctx context.Context, uid string, limit int) ([]models.ChatMessage, error) {
	query := s.messagesCollection(uid).Query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []models.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list chat messages", err)
		}
		var msg models.ChatMessage
		if err := doc.DataTo(&msg); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse chat message", err)
		}
		out = append(out, msg)
	}

	reverseMessages(out)
	return out, nil
}

func (s *assistantStore) DeleteMessages(ctx context.Context, uid string) error {
	bw := s.client.BulkWriter(ctx)
	iter := s.messagesCollection(uid).Select().Documents(ctx)
	defer iter.Stop()

	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("read", "failed to list chat messages", err)
		}
		j, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("delete", "failed to schedule chat message delete", err)
		}
		jobs = append(jobs, j)
	}
	bw.End()

	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			return errs.NewDatabaseError("delete", "failed to delete chat message", err)
		}
	}
	return nil
}

func reverseMessages(msgs []models.ChatMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
