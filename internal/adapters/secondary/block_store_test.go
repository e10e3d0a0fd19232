package secondary

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
	apperrors "ethereum-block-explorer/pkg/errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testBlock() *entity.Block {
	to := "0x742d35Cc6e56A0e24C1D887FC9b50f08a2B6F4bC"
	value, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	return &entity.Block{
		Number: 17000000,
		Hash:   "0xabc",
		Uncles: []string{"0xdef"},
		Transactions: []*entity.Transaction{
			{
				Hash:             "0x01",
				BlockNumber:      17000000,
				TransactionIndex: 0,
				From:             "0xA0b86a33E6441E6C7D3D4B4f6c7E8F9a0B1c2D3e",
				To:               &to,
				Value:            value,
			},
			{
				Hash:             "0x02",
				BlockNumber:      17000000,
				TransactionIndex: 1,
				From:             "0xA0b86a33E6441E6C7D3D4B4f6c7E8F9a0B1c2D3e",
				To:               nil,
				Value:            big.NewInt(0),
			},
		},
	}
}

func assertSameBlock(t *testing.T, expected, actual *entity.Block) {
	t.Helper()

	require.NotNil(t, actual)
	assert.Equal(t, expected.Number, actual.Number)
	assert.Equal(t, expected.Hash, actual.Hash)
	assert.Equal(t, expected.Uncles, actual.Uncles)
	require.Len(t, actual.Transactions, len(expected.Transactions))

	for i, tx := range expected.Transactions {
		got := actual.Transactions[i]
		assert.Equal(t, tx.Hash, got.Hash)
		assert.Equal(t, tx.BlockNumber, got.BlockNumber)
		assert.Equal(t, tx.TransactionIndex, got.TransactionIndex)
		assert.Equal(t, tx.From, got.From)
		assert.Equal(t, tx.To, got.To)
		assert.Equal(t, 0, tx.Value.Cmp(got.Value))
		assert.Equal(t, tx.IsContractCreation(), got.IsContractCreation())
	}
}

func TestPebbleBlockStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blocks")

	store, err := NewPebbleBlockStore(path)
	require.NoError(t, err)

	require.NoError(t, store.HealthCheck(ctx))

	missing, err := store.RetrieveBlock(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	block := testBlock()
	require.NoError(t, store.StoreBlock(ctx, block))

	cached, err := store.RetrieveBlock(ctx, block.Number)
	require.NoError(t, err)
	assertSameBlock(t, block, cached)

	require.NoError(t, store.Close(ctx))

	// Entries survive reopening the database
	store, err = NewPebbleBlockStore(path)
	require.NoError(t, err)
	defer store.Close(ctx)

	cached, err = store.RetrieveBlock(ctx, block.Number)
	require.NoError(t, err)
	assertSameBlock(t, block, cached)
}

func TestPebbleBlockStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()

	store, err := NewPebbleBlockStore(filepath.Join(t.TempDir(), "blocks"))
	require.NoError(t, err)
	defer store.Close(ctx)

	pebbleStore := store.(*PebbleBlockStore)
	require.NoError(t, pebbleStore.db.Set(BlockKey(5), []byte{0xff, 0x00}, nil))

	_, err = store.RetrieveBlock(ctx, 5)
	require.Error(t, err)

	var explorerErr *apperrors.ExplorerError
	require.ErrorAs(t, err, &explorerErr)
	assert.Equal(t, apperrors.ErrCodeCache, explorerErr.Code)
}

func TestBlockKey(t *testing.T) {
	assert.Equal(t, []byte{'b', 0, 0, 0, 0, 0, 0, 0x01, 0x00}, BlockKey(256))

	lower, upper := BlockKeyBounds()
	assert.Less(t, string(lower), string(BlockKey(0)))
	assert.Less(t, string(BlockKey(^uint64(0))), string(upper))
	assert.Less(t, string(BlockKey(255)), string(BlockKey(256)))
}

func TestMongoBlockDocument(t *testing.T) {
	block := testBlock()

	raw, err := bson.Marshal(toBlockDocument(block))
	require.NoError(t, err)

	var doc blockDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "123456789012345678901234567890", doc.Transactions[0].Value)
	assert.Nil(t, doc.Transactions[1].To)

	decoded, err := fromBlockDocument(&doc)
	require.NoError(t, err)
	assertSameBlock(t, block, decoded)
}

func TestMongoBlockDocument_InvalidValue(t *testing.T) {
	doc := toBlockDocument(testBlock())
	doc.Transactions[0].Value = "not-a-number"

	_, err := fromBlockDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[CACHE]")
	assert.Contains(t, err.Error(), "not-a-number")
}
