package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeConfigRepo struct {
	versions map[string][]*domain.ProductConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{versions: make(map[string][]*domain.ProductConfig)}
}

func repoKey(insurerID, productCode string) string {
	return insurerID + "/" + productCode
}

func (r *fakeConfigRepo) SaveVersion(ctx context.Context, config *domain.ProductConfig) error {
	key := repoKey(config.InsurerID, config.ProductCode)
	for _, v := range r.versions[key] {
		if v.Version == config.Version {
			return domain.ErrVersionConflict
		}
	}
	clone := *config
	r.versions[key] = append(r.versions[key], &clone)
	return nil
}

// WithTx 模拟事务：fn 返回错误时恢复事务前的版本快照
func (r *fakeConfigRepo) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	backup := make(map[string][]*domain.ProductConfig, len(r.versions))
	for k, vs := range r.versions {
		backup[k] = append([]*domain.ProductConfig(nil), vs...)
	}
	if err := fn(ctx); err != nil {
		r.versions = backup
		return err
	}
	return nil
}

func (r *fakeConfigRepo) GetCurrent(ctx context.Context, insurerID, productCode string) (*domain.ProductConfig, error) {
	vs := r.versions[repoKey(insurerID, productCode)]
	if len(vs) == 0 {
		return nil, domain.ErrConfigNotFound
	}
	latest := vs[0]
	for _, v := range vs {
		if v.Version > latest.Version {
			latest = v
		}
	}
	clone := *latest
	return &clone, nil
}

func (r *fakeConfigRepo) GetVersion(ctx context.Context, insurerID, productCode string, version uint64) (*domain.ProductConfig, error) {
	for _, v := range r.versions[repoKey(insurerID, productCode)] {
		if v.Version == version {
			clone := *v
			return &clone, nil
		}
	}
	return nil, domain.ErrConfigNotFound
}

func (r *fakeConfigRepo) ListVersions(ctx context.Context, insurerID, productCode string, limit int) ([]*domain.ProductConfig, error) {
	vs := r.versions[repoKey(insurerID, productCode)]
	if len(vs) > limit {
		vs = vs[len(vs)-limit:]
	}
	return vs, nil
}

type fakePublisher struct {
	events []domain.ProductConfigUpdatedEvent
	err    error
}

func (p *fakePublisher) PublishConfigUpdated(ctx context.Context, event domain.ProductConfigUpdatedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newService(repo domain.ConfigRepository, pub domain.EventPublisher) *ConfigApplicationService {
	return NewConfigApplicationService(repo, pub, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func projectValueTableCmd(insurerID, productCode string) *PutRateTableCommand {
	return &PutRateTableCommand{
		InsurerID:   insurerID,
		ProductCode: productCode,
		Table: rating.RateTable{
			Dimension: rating.DimensionProjectValue,
			Tiers: []rating.RateTier{
				{From: dec("0"), To: dec("500000"), PricingType: rating.PricingTypePercentage, Adjustment: dec("0"), QuoteDecision: rating.DecisionAutoQuote},
				{From: dec("500000"), To: rating.NoUpperBound, PricingType: rating.PricingTypePercentage, Adjustment: dec("5"), QuoteDecision: rating.DecisionAutoQuote},
			},
		},
	}
}

func TestPutRateTableCreatesFirstVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	pub := &fakePublisher{}
	svc := newService(repo, pub)

	config, err := svc.PutRateTable(context.Background(), projectValueTableCmd("insurer-001", "CAR"))
	if err != nil {
		t.Fatalf("PutRateTable failed: %v", err)
	}
	if config.Version != 1 {
		t.Errorf("first version = %d, want 1", config.Version)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if pub.events[0].Section != domain.SectionRateTables || pub.events[0].Version != 1 {
		t.Errorf("event = %+v, want rate_tables v1", pub.events[0])
	}
}

func TestPutOperationsBumpVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	pub := &fakePublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	if _, err := svc.PutRateTable(ctx, projectValueTableCmd("insurer-001", "CAR")); err != nil {
		t.Fatalf("PutRateTable failed: %v", err)
	}
	if _, err := svc.PutClauses(ctx, &PutClausesCommand{
		InsurerID: "insurer-001", ProductCode: "CAR",
		Clauses: []rating.ClausePricing{
			{Code: "MRe004", Name: "SRCC", IsMandatory: true, Enabled: true, PricingType: rating.PricingTypeFixed, PricingValue: dec("1500")},
		},
	}); err != nil {
		t.Fatalf("PutClauses failed: %v", err)
	}
	config, err := svc.PutLimits(ctx, &PutLimitsCommand{
		InsurerID: "insurer-001", ProductCode: "CAR",
		Limits: rating.PolicyLimits{MinimumPremium: dec("2500"), MaximumCover: dec("50000000")},
	})
	if err != nil {
		t.Fatalf("PutLimits failed: %v", err)
	}

	if config.Version != 3 {
		t.Errorf("version after three writes = %d, want 3", config.Version)
	}
	// 新版本保留此前各分区的内容
	if len(config.Clauses) != 1 || config.Clauses[0].Code != "MRe004" {
		t.Errorf("clauses lost across versions: %v", config.Clauses)
	}
	if _, ok := config.RateTables[rating.DimensionProjectValue]; !ok {
		t.Error("rate table lost across versions")
	}
}

func TestInvalidWriteDoesNotCreateVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	pub := &fakePublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	if _, err := svc.PutRateTable(ctx, projectValueTableCmd("insurer-001", "CAR")); err != nil {
		t.Fatalf("PutRateTable failed: %v", err)
	}

	_, err := svc.PutDimensionOrder(ctx, &PutDimensionOrderCommand{
		InsurerID: "insurer-001", ProductCode: "CAR",
		Order: []rating.Dimension{rating.DimensionClaimCount},
	})
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("invalid order error = %v, want ErrInvalidConfiguration", err)
	}

	config, err := svc.GetConfig(ctx, "insurer-001", "CAR")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.Version != 1 {
		t.Errorf("version after rejected write = %d, want 1", config.Version)
	}
	if len(pub.events) != 1 {
		t.Errorf("events after rejected write = %d, want 1", len(pub.events))
	}
}

func TestGetSnapshotReflectsCurrentVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	svc := newService(repo, &fakePublisher{})
	ctx := context.Background()

	if _, err := svc.PutRateTable(ctx, projectValueTableCmd("insurer-001", "CAR")); err != nil {
		t.Fatalf("PutRateTable failed: %v", err)
	}
	if _, err := svc.PutDimensionOrder(ctx, &PutDimensionOrderCommand{
		InsurerID: "insurer-001", ProductCode: "CAR",
		Order: []rating.Dimension{rating.DimensionProjectValue},
	}); err != nil {
		t.Fatalf("PutDimensionOrder failed: %v", err)
	}

	snap, err := svc.GetSnapshot(ctx, "insurer-001", "CAR")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("snapshot version = %d, want 2", snap.Version)
	}
	if len(snap.DimensionOrder) != 1 {
		t.Errorf("snapshot dimension order = %v", snap.DimensionOrder)
	}
}

func TestGetSnapshotUnknownProduct(t *testing.T) {
	svc := newService(newFakeConfigRepo(), &fakePublisher{})

	_, err := svc.GetSnapshot(context.Background(), "insurer-001", "UNKNOWN")
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("unknown product error = %v, want ErrConfigNotFound", err)
	}
}

func TestPublishFailureRollsBackVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	pub := &fakePublisher{err: fmt.Errorf("outbox insert failed")}
	svc := newService(repo, pub)

	// 事件与新版本同一事务：事件写入失败时不得留下无事件的版本
	_, err := svc.PutRateTable(context.Background(), projectValueTableCmd("insurer-001", "CAR"))
	if err == nil {
		t.Fatal("PutRateTable should fail when the event cannot be recorded")
	}

	if _, err := repo.GetCurrent(context.Background(), "insurer-001", "CAR"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("GetCurrent after rollback = %v, want ErrConfigNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("events after rollback = %d, want 0", len(pub.events))
	}
}
