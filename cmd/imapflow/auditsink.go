package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionEvent is one row of the audit ledger: a record that a session
// reached some noteworthy point, not a cache of mailbox state (that
// stays a Non-goal).
type sessionEvent struct {
	SessionID string    `bson:"sessionId"`
	Kind      string    `bson:"kind"`
	Payload   string    `bson:"payload"`
	At        time.Time `bson:"at"`
}

// auditSink appends session log events to a Mongo collection. It is
// wired as an OnLog observer, never on the core's hot path: writes are
// fire-and-forget with a bounded per-write timeout so a slow or
// unreachable Mongo never blocks the IMAP connection.
type auditSink struct {
	sessionID  string
	collection *mongo.Collection
	logger     *chromaLogger
}

func newAuditSink(ctx context.Context, uri, database, collection, sessionID string, logger *chromaLogger) (*auditSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	return &auditSink{
		sessionID:  sessionID,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

// record is suitable as a Session.OnLog callback.
func (a *auditSink) record(kind string, payload interface{}) {
	evt := sessionEvent{
		SessionID: a.sessionID,
		Kind:      kind,
		Payload:   toPayloadString(payload),
		At:        time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := a.collection.InsertOne(ctx, evt); err != nil {
			a.logger.Debug("audit sink insert failed: %v", err)
		}
	}()
}

func toPayloadString(payload interface{}) string {
	switch v := payload.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		b, err := bson.MarshalExtJSON(bson.M{"value": payload}, false, false)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
