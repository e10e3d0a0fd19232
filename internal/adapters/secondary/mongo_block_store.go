package secondary

import (
	"context"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/repository"
	"ethereum-block-explorer/internal/infrastructure/database"
	apperrors "ethereum-block-explorer/pkg/errors"
	"ethereum-block-explorer/pkg/utils"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// blockDocument is the MongoDB representation of a cached block
type blockDocument struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	Number       int64                 `bson:"number"`
	Hash         string                `bson:"hash"`
	Uncles       []string              `bson:"uncles"`
	Transactions []transactionDocument `bson:"transactions"`
	CachedAt     primitive.DateTime    `bson:"cached_at"`
}

// transactionDocument stores the value as a decimal string since BSON has no 256-bit integer
type transactionDocument struct {
	Hash             string  `bson:"hash"`
	TransactionIndex int64   `bson:"transaction_index"`
	From             string  `bson:"from"`
	To               *string `bson:"to"`
	Value            string  `bson:"value"`
}

// MongoBlockStore implements BlockStore on a MongoDB collection
type MongoBlockStore struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewMongoBlockStore creates new MongoDB block store
func NewMongoBlockStore(db *database.MongoDB) repository.BlockStore {
	return &MongoBlockStore{
		db:         db,
		collection: db.BlocksCollection(),
	}
}

// RetrieveBlock gets block by number
func (r *MongoBlockStore) RetrieveBlock(ctx context.Context, blockNumber uint64) (*entity.Block, error) {
	filter := bson.M{"number": int64(blockNumber)}

	var doc blockDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewCacheError(fmt.Sprintf("failed to read block %d", blockNumber), err)
	}

	return fromBlockDocument(&doc)
}

// StoreBlock upserts block by number
func (r *MongoBlockStore) StoreBlock(ctx context.Context, block *entity.Block) error {
	filter := bson.M{"number": int64(block.Number)}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, filter, toBlockDocument(block), opts); err != nil {
		return apperrors.NewCacheError(fmt.Sprintf("failed to write block %d", block.Number), err)
	}
	return nil
}

// HealthCheck pings the MongoDB deployment
func (r *MongoBlockStore) HealthCheck(ctx context.Context) error {
	if err := r.db.HealthCheck(ctx); err != nil {
		return apperrors.NewCacheError("mongodb block cache is unreachable", err)
	}
	return nil
}

// Close closes the underlying MongoDB connection
func (r *MongoBlockStore) Close(ctx context.Context) error {
	return r.db.Close(ctx)
}

func toBlockDocument(block *entity.Block) *blockDocument {
	doc := &blockDocument{
		Number:       int64(block.Number),
		Hash:         block.Hash,
		Uncles:       block.Uncles,
		Transactions: make([]transactionDocument, 0, len(block.Transactions)),
		CachedAt:     primitive.NewDateTimeFromTime(time.Now()),
	}

	for _, tx := range block.Transactions {
		doc.Transactions = append(doc.Transactions, transactionDocument{
			Hash:             tx.Hash,
			TransactionIndex: int64(tx.TransactionIndex),
			From:             tx.From,
			To:               tx.To,
			Value:            utils.BigIntToString(tx.Value),
		})
	}

	return doc
}

func fromBlockDocument(doc *blockDocument) (*entity.Block, error) {
	block := &entity.Block{
		Number:       uint64(doc.Number),
		Hash:         doc.Hash,
		Uncles:       doc.Uncles,
		Transactions: make([]*entity.Transaction, 0, len(doc.Transactions)),
	}

	for _, txDoc := range doc.Transactions {
		value, err := utils.StringToBigInt(txDoc.Value)
		if err != nil {
			return nil, apperrors.NewCacheError(
				fmt.Sprintf("invalid value in cached transaction %s", txDoc.Hash), err)
		}

		block.Transactions = append(block.Transactions, &entity.Transaction{
			Hash:             txDoc.Hash,
			BlockNumber:      block.Number,
			TransactionIndex: uint(txDoc.TransactionIndex),
			From:             txDoc.From,
			To:               txDoc.To,
			Value:            value,
		})
	}

	return block, nil
}
