package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minsukim/notisync/internal/core/domain"
)

// mockBillingService implements driving.BillingService for testing.
type mockBillingService struct {
	period  domain.BillingPeriod
	summary *domain.BillingSummary
	err     error
}

func (m *mockBillingService) Summary(period domain.BillingPeriod) (*domain.BillingSummary, error) {
	m.period = period
	return m.summary, m.err
}

func setupBillingTest(m *mockBillingService) func() {
	old := billingService
	billingService = m
	return func() {
		billingService = old
		billingDaily = false
		billingMonthly = false
	}
}

func TestBillingCmd_Total(t *testing.T) {
	mock := &mockBillingService{summary: &domain.BillingSummary{
		Total: domain.BillingTotals{
			EmbeddingCost: 0.003,
			VisionCost:    0.0005,
			QueryCost:     0.007,
			TotalCost:     0.0105,
		},
	}}
	cleanup := setupBillingTest(mock)
	defer cleanup()

	out, err := executeCmd(t, "billing")

	assert.NoError(t, err)
	assert.Equal(t, domain.BillingTotal, mock.period)
	assert.Contains(t, out, "Billing Summary")
	assert.Contains(t, out, "$0.01050000")
	assert.NotContains(t, out, "Breakdown")
}

func TestBillingCmd_Daily(t *testing.T) {
	mock := &mockBillingService{summary: &domain.BillingSummary{
		Breakdown: []domain.BillingBucket{
			{Period: "2026-08-20", BillingTotals: domain.BillingTotals{TotalCost: 0.001}},
			{Period: "2026-08-21", BillingTotals: domain.BillingTotals{TotalCost: 0.002}},
		},
	}}
	cleanup := setupBillingTest(mock)
	defer cleanup()

	out, err := executeCmd(t, "billing", "--daily")

	assert.NoError(t, err)
	assert.Equal(t, domain.BillingDaily, mock.period)
	assert.Contains(t, out, "Breakdown")
	assert.Contains(t, out, "2026-08-21")
}

func TestBillingCmd_Monthly(t *testing.T) {
	mock := &mockBillingService{summary: &domain.BillingSummary{}}
	cleanup := setupBillingTest(mock)
	defer cleanup()

	_, err := executeCmd(t, "billing", "--monthly")

	assert.NoError(t, err)
	assert.Equal(t, domain.BillingMonthly, mock.period)
}

func TestBillingCmd_ExclusiveFlags(t *testing.T) {
	cleanup := setupBillingTest(&mockBillingService{})
	defer cleanup()

	_, err := executeCmd(t, "billing", "--daily", "--monthly")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestBillingCmd_ServiceError(t *testing.T) {
	cleanup := setupBillingTest(&mockBillingService{err: errors.New("boom")})
	defer cleanup()

	_, err := executeCmd(t, "billing")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "billing failed")
}
