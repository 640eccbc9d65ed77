package processor

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equitystek/server/internal/database"
	"equitystek/server/internal/models"
	"equitystek/server/internal/portfolio"
	"equitystek/server/internal/queue"
	"equitystek/server/internal/scheduler"
	"equitystek/server/internal/valuation"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRevaluationPipelineIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	logger := logrus.New()

	calc, err := valuation.NewCalculator(valuation.DefaultRates())
	require.NoError(t, err)
	service := portfolio.NewService(portfolio.NewStore(db), calc, portfolio.Options{Logger: logger})

	revaluationQueue := queue.NewRevaluationQueue(10, logger)
	processor := NewBatchProcessor(service, revaluationQueue, testSettings(), nil, logger)
	processor.Start()
	revaluationQueue.Start(2)
	defer revaluationQueue.Close()
	defer processor.Stop()

	var ids []int64
	for _, sqft := range []int{1000, 2000, 3000} {
		p := &models.Property{
			OwnerID:      1,
			Name:         "Test Property",
			PropertyType: models.PropertyTypeCondo,
			SquareFeet:   sqft,
		}
		require.NoError(t, db.CreateProperty(ctx, p))
		ids = append(ids, p.ID)
	}

	sweeper := scheduler.NewScheduler(db, revaluationQueue, 0, 2, logger)
	enqueued, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, enqueued)

	for i, id := range ids {
		expected := decimal.NewFromInt(int64((i + 1) * 1000 * 200))
		assert.Eventually(t, func() bool {
			record, err := db.GetValuation(ctx, id)
			return err == nil && record.CompositeValue.Equal(expected)
		}, 2*time.Second, 20*time.Millisecond)
	}
}
