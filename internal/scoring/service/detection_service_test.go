package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardshield-scoring/internal/config"
	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/registry"
	"github.com/cardshield-scoring/internal/scoring/decision"
	"github.com/cardshield-scoring/internal/scoring/features"
	"github.com/cardshield-scoring/internal/scoring/model"
	"github.com/cardshield-scoring/internal/scoring/rules"
	"github.com/cardshield-scoring/internal/scoring/scaler"
)

// MockCardRepository mocks the card.Repository interface
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) GetByCardID(ctx context.Context, cardID string) (*card.Profile, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Profile), args.Error(1)
}

func (m *MockCardRepository) ListKnownFraudulent(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCardRepository) MarkFraudulent(ctx context.Context, cardIDs []string) ([]string, error) {
	args := m.Called(ctx, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCardRepository) CreateStolenReport(ctx context.Context, report *card.StolenReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockCardRepository) ListStolenReports(ctx context.Context) ([]*card.StolenReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.StolenReport), args.Error(1)
}

// MockVerdictRepository mocks the verdict.Repository interface
type MockVerdictRepository struct {
	mock.Mock
}

func (m *MockVerdictRepository) Create(ctx context.Context, v *verdict.Verdict) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVerdictRepository) GetByTransactionID(ctx context.Context, transactionID string) (*verdict.Verdict, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verdict.Verdict), args.Error(1)
}

func (m *MockVerdictRepository) GetByCardID(ctx context.Context, cardID string, limit, offset int) ([]*verdict.Verdict, error) {
	args := m.Called(ctx, cardID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*verdict.Verdict), args.Error(1)
}

func (m *MockVerdictRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	args := m.Called(ctx, cardID)
	return args.Get(0).(int64), args.Error(1)
}

type fixtureDeps struct {
	cards      *MockCardRepository
	verdicts   *MockVerdictRepository
	registries *registry.Store
}

// newTestService wires a real pipeline over a tiny three-feature model. The
// classifier weights are zero with a large negative intercept, so scored
// transactions come out legitimate unless a registry rule fires.
func newTestService(t *testing.T) (*DetectionService, fixtureDeps) {
	t.Helper()
	logger := slog.Default()

	deps := fixtureDeps{
		cards:      &MockCardRepository{},
		verdicts:   &MockVerdictRepository{},
		registries: registry.NewStore(),
	}

	cfg := &config.RulesConfig{
		FraudThreshold:  0.85,
		AmountThreshold: 10000,
		HourlyLimit:     5000,
		TopFactors:      3,
	}

	sc, err := scaler.New(logger, scaler.Params{
		Features: []string{"Amount", "amount_ratio", "cvv_mismatch"},
		Mean:     []float64{0, 0, 0},
		Scale:    []float64{1, 1, 1},
	})
	require.NoError(t, err)

	classifier := model.NewLogistic([]float64{0, 0, 0}, -5, []float64{0.5, 0.3, 0.2})

	svc := NewDetectionService(
		logger,
		deps.cards,
		deps.verdicts,
		deps.registries,
		features.NewBuilder(logger, features.HashedGeoRisk{}),
		sc,
		classifier,
		rules.NewEngine(logger, deps.registries, cfg),
		decision.NewComposer(cfg.FraudThreshold, cfg.TopFactors),
	)
	return svc, deps
}

func validRecord() *transaction.Record {
	return &transaction.Record{
		TransactionID: "tx_1",
		CardID:        "card_a",
		Amount:        100,
		Timestamp:     time.Now(),
	}
}

func TestDetectionService_Score_Legitimate(t *testing.T) {
	svc, deps := newTestService(t)

	deps.cards.On("GetByCardID", mock.Anything, "card_a").
		Return(&card.Profile{CardID: "card_a", CreditLimit: 1000}, nil).Once()
	deps.verdicts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)

	assert.False(t, v.IsFraud)
	assert.Equal(t, verdict.ReasonWithinNormal, v.Reason)
	assert.False(t, v.ModelSkipped)
	assert.Len(t, v.TopFactors, 3)
	assert.Empty(t, deps.registries.Suspects())

	deps.cards.AssertExpectations(t)
	deps.verdicts.AssertExpectations(t)
}

func TestDetectionService_Score_KnownFraudulentSkipsModel(t *testing.T) {
	svc, deps := newTestService(t)
	deps.registries.AddFraudulent("card_a")
	deps.verdicts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)

	assert.True(t, v.IsFraud)
	assert.True(t, v.ModelSkipped)
	assert.Equal(t, 1.0, v.FraudProbability)
	assert.Equal(t, verdict.ReasonKnownFraudulent, v.Reason)
	assert.Empty(t, v.TopFactors)
	assert.Equal(t, int64(1), deps.registries.Suspects()["card_a"])

	// The card repository was never consulted
	deps.cards.AssertNotCalled(t, "GetByCardID", mock.Anything, mock.Anything)
}

func TestDetectionService_Score_StolenCard(t *testing.T) {
	svc, deps := newTestService(t)
	deps.registries.MarkStolen("card_a", "holder", "", time.Now())
	deps.verdicts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)

	assert.True(t, v.IsFraud)
	assert.Equal(t, verdict.ReasonReportedStolen, v.Reason)
}

func TestDetectionService_Score_UnknownCardStillScores(t *testing.T) {
	svc, deps := newTestService(t)

	deps.cards.On("GetByCardID", mock.Anything, "card_a").
		Return(nil, card.ErrCardNotFound{CardID: "card_a"}).Once()
	deps.verdicts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)
	assert.False(t, v.IsFraud)
}

func TestDetectionService_Score_CardLookupFailureDegrades(t *testing.T) {
	svc, deps := newTestService(t)

	deps.cards.On("GetByCardID", mock.Anything, "card_a").
		Return(nil, errors.New("connection refused")).Once()
	deps.verdicts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)
	assert.False(t, v.IsFraud)
}

func TestDetectionService_Score_ValidationFailure(t *testing.T) {
	svc, _ := newTestService(t)

	rec := validRecord()
	rec.Amount = -5

	_, err := svc.Score(context.Background(), rec)
	assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
}

func TestDetectionService_Score_AuditFailureIsBestEffort(t *testing.T) {
	svc, deps := newTestService(t)

	deps.cards.On("GetByCardID", mock.Anything, "card_a").
		Return(nil, card.ErrCardNotFound{CardID: "card_a"}).Once()
	deps.verdicts.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("mongo down")).Once()

	v, err := svc.Score(context.Background(), validRecord())
	require.NoError(t, err)
	assert.NotNil(t, v)
}
