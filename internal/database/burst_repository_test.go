package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) (*DB, *BurstRepository) {
	t.Helper()
	var logBuf bytes.Buffer
	db, err := NewDB(Config{Path: filepath.Join(t.TempDir(), "archive", "bursts.db")}, log.New(&logBuf, "[DB] ", 0))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	assert.Contains(t, logBuf.String(), "Burst archive initialized")
	assert.Equal(t, "bursts.db", filepath.Base(db.Path()))
	return db, NewBurstRepository(db.GetDB())
}

func testBurst(seq int, file string, offset int64) *Burst {
	b := NewBurst(seq, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 1, 2, byte(seq)}, bytes.Repeat([]byte{byte(seq)}, 64))
	b.FilterDelay = 7
	b.ExcessBandwidth = 0.3
	b.Prototype = "kaiser"
	b.Samples = 324636
	b.File = file
	b.SampleOffset = offset
	return b
}

func TestNewBurst(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 64)
	b := NewBurst(3, []byte{1, 2, 3, 4, 5, 6, 7, 8}, payload)

	sum := sha256.Sum256(payload)
	assert.Equal(t, "0102030405060708", b.Header)
	assert.Equal(t, hex.EncodeToString(sum[:]), b.PayloadSHA256)
	assert.Len(t, b.ID, 36)
	assert.False(t, b.IsValid(), "no samples recorded yet")

	b.Samples = 10
	assert.True(t, b.IsValid())
	assert.NotEqual(t, b.ID, NewBurst(3, nil, payload).ID)
}

func TestBurstRepository_CreateGet(t *testing.T) {
	db, repo := newTestRepository(t)
	require.NoError(t, db.Health())
	require.NoError(t, repo.HealthCheck())
	assert.GreaterOrEqual(t, db.Stats().OpenConnections, 1)

	b := testBurst(1, "out.cf32", 0)
	require.NoError(t, repo.Create(b))
	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Header, got.Header)
	assert.Equal(t, b.PayloadSHA256, got.PayloadSHA256)
	assert.Equal(t, 324636, got.Samples)
	assert.InDelta(t, 0.3, got.ExcessBandwidth, 1e-12)

	_, err = repo.GetByID("00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestBurstRepository_CreateInvalid(t *testing.T) {
	_, repo := newTestRepository(t)

	assert.Error(t, repo.Create(nil))

	b := testBurst(1, "out.cf32", 0)
	b.Samples = 0
	assert.Error(t, repo.Create(b))

	b = testBurst(1, "out.cf32", 0)
	b.ID = "not-a-uuid"
	assert.Error(t, repo.Create(b))
}

func TestBurstRepository_BatchAndQueries(t *testing.T) {
	_, repo := newTestRepository(t)

	frame := int64(324636 + 1000)
	bursts := []Burst{
		*testBurst(2, "a.cf32", 2*frame),
		*testBurst(0, "a.cf32", 0),
		*testBurst(1, "a.cf32", frame),
		*testBurst(0, "b.cf32", 0),
	}
	require.NoError(t, repo.CreateBatch(bursts))
	require.NoError(t, repo.CreateBatch(nil))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	list, err := repo.ListByFile("a.cf32")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, b := range list {
		assert.Equal(t, i, b.Sequence)
		assert.Equal(t, int64(i)*frame, b.SampleOffset)
	}

	// sequence 0 payloads are identical in both files
	same, err := repo.FindByPayloadHash(bursts[1].PayloadSHA256)
	require.NoError(t, err)
	assert.Len(t, same, 2)

	stats, err := repo.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats["total_bursts"])
	assert.Equal(t, int64(4*324636), stats["total_samples"])
	assert.Contains(t, stats, "last_created")

	deleted, err := repo.DeleteByFile("a.cf32")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBurstRepository_BatchRejectsInvalid(t *testing.T) {
	_, repo := newTestRepository(t)

	bad := *testBurst(1, "a.cf32", 0)
	bad.Samples = 0
	err := repo.CreateBatch([]Burst{*testBurst(0, "a.cf32", 0), bad})
	assert.Error(t, err)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBurstRepository_EmptyStatistics(t *testing.T) {
	_, repo := newTestRepository(t)

	stats, err := repo.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats["total_bursts"])
	assert.NotContains(t, stats, "last_created")
}

func TestBurst_String(t *testing.T) {
	b := testBurst(5, "x.cf32", 42)
	assert.Contains(t, b.String(), "#5 ")
	assert.Contains(t, b.String(), "[x.cf32@42]")
}
