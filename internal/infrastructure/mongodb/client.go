package mongodb

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"marketchat/pkg/logger"
)

// Client wraps the driver client with an explicit connect/close lifecycle and
// a cached topology capability probe. It is constructed once in main and
// passed down; nothing reaches it through package state.
type Client struct {
	client *mongo.Client
	db     *mongo.Database

	probeOnce sync.Once
	txSupport bool
}

func Connect(ctx context.Context, uri, database string, connectTimeout time.Duration) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

// SupportsTransactions probes the deployment once and caches the answer.
// Multi-document transactions need a replica set or a mongos; a standalone
// server reports neither a setName nor the isdbgrid msg in its hello reply.
func (c *Client) SupportsTransactions(ctx context.Context) bool {
	c.probeOnce.Do(func() {
		var hello bson.M
		err := c.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
		if err != nil {
			logger.Warn("SupportsTransactions: hello command failed, assuming no transaction support: %v", err)
			return
		}

		if _, ok := hello["setName"]; ok {
			c.txSupport = true
			return
		}
		if msg, ok := hello["msg"].(string); ok && msg == "isdbgrid" {
			c.txSupport = true
		}
	})
	return c.txSupport
}

// WithTransaction runs fn inside a transactional session. The session is
// acquired here and released on every exit path; fn sees a session-scoped
// context, so repository calls made with it join the transaction.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
