package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minsukim/notisync/internal/core/domain"
)

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	label  string
	model  string
	query  string
	source string
	res    *domain.QueryResult
	err    error
}

func (m *mockQueryService) Answer(_ context.Context, label, model, query, source string) (*domain.QueryResult, error) {
	m.label, m.model, m.query, m.source = label, model, query, source
	return m.res, m.err
}

func setupQueryTest(m *mockQueryService) func() {
	old := queryService
	queryService = m
	return func() {
		queryService = old
		queryModel = ""
	}
}

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [label] <question...>", queryCmd.Use)
}

func TestQueryCmd_Executes(t *testing.T) {
	mock := &mockQueryService{res: &domain.QueryResult{
		Answer:       "Deploy with make deploy.",
		Grounding:    "Deploy Guide",
		Model:        "gemini-2.5-flash-lite",
		InputTokens:  900,
		OutputTokens: 40,
		Cost:         0.000106,
		Elapsed:      1200 * time.Millisecond,
	}}
	cleanup := setupQueryTest(mock)
	defer cleanup()

	out, err := executeCmd(t, "query", "work", "how", "do", "we", "deploy")

	assert.NoError(t, err)
	assert.Equal(t, "work", mock.label)
	assert.Equal(t, "how do we deploy", mock.query)
	assert.Equal(t, "cli", mock.source)
	assert.Contains(t, out, "Deploy with make deploy.")
	assert.Contains(t, out, "Deploy Guide")
}

func TestQueryCmd_SingleArgIsQuestion(t *testing.T) {
	mock := &mockQueryService{res: &domain.QueryResult{Answer: "ok"}}
	cleanup := setupQueryTest(mock)
	defer cleanup()

	_, err := executeCmd(t, "query", "deployment?")

	assert.NoError(t, err)
	assert.Empty(t, mock.label)
	assert.Equal(t, "deployment?", mock.query)
}

func TestQueryCmd_ModelFlag(t *testing.T) {
	mock := &mockQueryService{res: &domain.QueryResult{Answer: "ok"}}
	cleanup := setupQueryTest(mock)
	defer cleanup()

	_, err := executeCmd(t, "query", "what is this?", "--model", "gemini-2.5-pro")

	assert.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", mock.model)
}

func TestQueryCmd_NoGroundingSection(t *testing.T) {
	mock := &mockQueryService{res: &domain.QueryResult{Answer: "ok"}}
	cleanup := setupQueryTest(mock)
	defer cleanup()

	out, err := executeCmd(t, "query", "anything?")

	assert.NoError(t, err)
	assert.NotContains(t, out, "Sources")
}

func TestQueryCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupQueryTest(nil)
	queryService = nil
	defer cleanup()

	_, err := executeCmd(t, "query", "anything?")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestQueryCmd_ServiceError(t *testing.T) {
	cleanup := setupQueryTest(&mockQueryService{err: errors.New("boom")})
	defer cleanup()

	_, err := executeCmd(t, "query", "anything?")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestSplitLabelArgs(t *testing.T) {
	label, q := splitLabelArgs([]string{"work", "how", "to", "deploy"})
	assert.Equal(t, "work", label)
	assert.Equal(t, "how to deploy", q)

	label, q = splitLabelArgs([]string{"how to deploy"})
	assert.Empty(t, label)
	assert.Equal(t, "how to deploy", q)
}
