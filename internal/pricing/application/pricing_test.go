package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
)

// --- in-memory fakes ---

type fakeRepo struct {
	mu      sync.Mutex
	saved   []*domain.PricingResult
	saveErr error
}

func (r *fakeRepo) Save(_ context.Context, result *domain.PricingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	result.ID = uint(len(r.saved) + 1)
	r.saved = append(r.saved, result)
	return nil
}

func (r *fakeRepo) GetLatest(_ context.Context, symbol string) (*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].Symbol == symbol {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetHistory(_ context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PricingResult
	for i := len(r.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if r.saved[i].Symbol == symbol {
			out = append(out, r.saved[i])
		}
	}
	return out, nil
}

type fakeCache struct {
	mu     sync.Mutex
	latest map[string]*domain.PricingResult
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{latest: make(map[string]*domain.PricingResult)}
}

func (c *fakeCache) SaveLatest(_ context.Context, result *domain.PricingResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[result.Symbol] = result
	return nil
}

func (c *fakeCache) GetLatest(_ context.Context, symbol string) (*domain.PricingResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.latest[symbol], nil
}

type fakePublisher struct {
	mu      sync.Mutex
	priced  []domain.OptionPricedEvent
	greeks  []domain.GreeksCalculatedEvent
	errors  []domain.PricingErrorEvent
	batches []domain.BatchPricingCompletedEvent
}

func (p *fakePublisher) PublishOptionPriced(_ context.Context, e domain.OptionPricedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.priced = append(p.priced, e)
	return nil
}

func (p *fakePublisher) PublishGreeksCalculated(_ context.Context, e domain.GreeksCalculatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greeks = append(p.greeks, e)
	return nil
}

func (p *fakePublisher) PublishPricingError(_ context.Context, e domain.PricingErrorEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, e)
	return nil
}

func (p *fakePublisher) PublishBatchPricingCompleted(_ context.Context, e domain.BatchPricingCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, e)
	return nil
}

type fakeMarketData struct {
	prices map[string]float64
}

func (c *fakeMarketData) GetSpotPrice(_ context.Context, symbol string) (float64, error) {
	price, ok := c.prices[symbol]
	if !ok {
		return 0, errors.New("no spot price available for " + symbol)
	}
	return price, nil
}

func newTestServices() (*PricingCommandService, *PricingQueryService, *fakeRepo, *fakeCache, *fakePublisher) {
	engine := domain.NewDefaultEngine()
	repo := &fakeRepo{}
	cache := newFakeCache()
	publisher := &fakePublisher{}
	marketData := &fakeMarketData{prices: map[string]float64{"AAPL": 100}}

	cmd := NewPricingCommandService(engine, repo, cache, marketData, publisher, nil)
	query := NewPricingQueryService(engine, repo, cache, nil)
	return cmd, query, repo, cache, publisher
}

func atmCallCommand() PriceOptionCommand {
	return PriceOptionCommand{
		Symbol:       "AAPL",
		OptionType:   "call",
		SpotPrice:    100,
		StrikePrice:  100,
		TimeToExpiry: 1,
		RiskFreeRate: 0.05,
		Volatility:   0.20,
	}
}

// --- command service ---

func TestPriceOptionAllModels(t *testing.T) {
	cmd, _, repo, cache, publisher := newTestServices()

	outcome, err := cmd.PriceOption(context.Background(), atmCallCommand())
	require.NoError(t, err)
	require.Len(t, outcome.Results, 3)
	require.NotNil(t, outcome.Comparison)

	assert.InDelta(t, 10.4506, outcome.Results[0].Price, 0.0001)
	assert.Equal(t, "AAPL", outcome.Symbol)

	// 每个模型结果都持久化，缓存保留最后一条
	assert.Len(t, repo.saved, 3)
	assert.Contains(t, cache.latest, "AAPL")

	// 每个模型发布定价与希腊字母事件
	assert.Len(t, publisher.priced, 3)
	assert.Len(t, publisher.greeks, 3)
}

func TestPriceOptionSingleModel(t *testing.T) {
	cmd, _, repo, _, _ := newTestServices()

	request := atmCallCommand()
	request.PricingModel = domain.ModelBlackScholes

	outcome, err := cmd.PriceOption(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 1)
	assert.Nil(t, outcome.Comparison)
	assert.Equal(t, domain.ModelBlackScholes, outcome.Results[0].ModelName)
	assert.Len(t, repo.saved, 1)
	assert.Equal(t, domain.ModelBlackScholes, repo.saved[0].PricingModel)
}

func TestPriceOptionUnknownModelPublishesError(t *testing.T) {
	cmd, _, _, _, publisher := newTestServices()

	request := atmCallCommand()
	request.PricingModel = "Heston"

	_, err := cmd.PriceOption(context.Background(), request)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownModel)
	assert.Len(t, publisher.errors, 1)
	assert.Equal(t, "Heston", publisher.errors[0].Model)
}

func TestPriceOptionInvalidParameters(t *testing.T) {
	cmd, _, repo, _, _ := newTestServices()

	request := atmCallCommand()
	request.Volatility = -1

	_, err := cmd.PriceOption(context.Background(), request)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
	assert.Empty(t, repo.saved)
}

func TestPriceOptionInvalidOptionType(t *testing.T) {
	cmd, _, _, _, _ := newTestServices()

	request := atmCallCommand()
	request.OptionType = "straddle"

	_, err := cmd.PriceOption(context.Background(), request)
	require.Error(t, err)
}

func TestPriceOptionFetchesSpotFromMarketData(t *testing.T) {
	cmd, _, _, _, _ := newTestServices()

	request := atmCallCommand()
	request.SpotPrice = 0 // 未提供时从市场数据客户端获取

	outcome, err := cmd.PriceOption(context.Background(), request)
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, outcome.Results[0].Price, 0.0001)
}

func TestPriceOptionRepoFailure(t *testing.T) {
	cmd, _, repo, _, _ := newTestServices()
	repo.saveErr = errors.New("connection refused")

	_, err := cmd.PriceOption(context.Background(), atmCallCommand())
	require.Error(t, err)
}

func TestBatchPriceOptionsIsolatesFailures(t *testing.T) {
	cmd, _, _, _, publisher := newTestServices()

	bad := atmCallCommand()
	bad.OptionType = "straddle"

	result, err := cmd.BatchPriceOptions(context.Background(), BatchPriceOptionsCommand{
		Contracts: []PriceOptionCommand{atmCallCommand(), bad, atmCallCommand()},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Len(t, result.Outcomes, 2)

	require.Len(t, publisher.batches, 1)
	assert.Equal(t, 3, publisher.batches[0].TotalContracts)
	assert.Equal(t, 2, publisher.batches[0].SuccessCount)
}

// --- query service ---

func TestGetGreeksDefaultsToBlackScholes(t *testing.T) {
	_, query, _, _, _ := newTestServices()

	greeks, err := query.GetGreeks(context.Background(), atmCallCommand())
	require.NoError(t, err)

	delta, _ := greeks.Delta.Float64()
	assert.Greater(t, delta, 0.0)
	assert.Less(t, delta, 1.0)
}

func TestGetGreeksUnknownModel(t *testing.T) {
	_, query, _, _, _ := newTestServices()

	request := atmCallCommand()
	request.PricingModel = "Heston"

	_, err := query.GetGreeks(context.Background(), request)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownModel)
}

func TestGetLatestResultCacheHit(t *testing.T) {
	cmd, query, _, _, _ := newTestServices()

	_, err := cmd.PriceOption(context.Background(), atmCallCommand())
	require.NoError(t, err)

	result, err := query.GetLatestResult(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "AAPL", result.Symbol)
}

func TestGetLatestResultFallsBackToRepo(t *testing.T) {
	cmd, query, _, cache, _ := newTestServices()

	_, err := cmd.PriceOption(context.Background(), atmCallCommand())
	require.NoError(t, err)

	// 缓存失效后仍可从数据库读取
	delete(cache.latest, "AAPL")
	result, err := query.GetLatestResult(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestGetHistoryRespectsLimit(t *testing.T) {
	cmd, query, _, _, _ := newTestServices()

	_, err := cmd.PriceOption(context.Background(), atmCallCommand())
	require.NoError(t, err)

	history, err := query.GetHistory(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestListModels(t *testing.T) {
	_, query, _, _, _ := newTestServices()
	assert.Equal(t, []string{
		domain.ModelBlackScholes,
		domain.ModelBinomialTree,
		domain.ModelMonteCarlo,
	}, query.ListModels())
}
