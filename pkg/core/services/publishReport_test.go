package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishReport_Success(t *testing.T) {
	ctx := context.Background()
	store := storedMarch(t)
	writer := &fakeSheetWriter{}
	mailer := &fakeMailer{}

	result, err := PublishReport(ctx, store, writer, mailer, testConfig(), zap.NewNop(), "2025-03", true)
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", writer.spreadsheetID)
	require.Len(t, writer.tabs, 1)
	tab := writer.tabs[0]
	assert.Equal(t, "2025-03", tab.Month)
	assert.Equal(t, "2025-04-01 09:00", tab.GeneratedAt)
	require.Len(t, tab.Ranking, 2)
	assert.Equal(t, "Ana", tab.Ranking[0].Name)
	assert.Equal(t, 570.0, tab.Ranking[0].Bonus)
	require.Len(t, tab.Editors, 3)
	assert.Equal(t, "Fabio", tab.Editors[2].Name)
	assert.Equal(t, 0, tab.Editors[2].Rank)
	assert.Equal(t, 80.0, tab.Editors[2].Freelance)

	assert.Equal(t, []string{result.Run.ID}, store.publishedIDs)
	assert.NotNil(t, result.Run.PublishedAt)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, mailer.sent[0].to)
	assert.Equal(t, "Editor ranking 2025-03", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "1. Ana: 10.0 points, bonus 570.00")
	assert.Contains(t, mailer.sent[0].body, "Fabio (freelance): 2.0 points, bonus 80.00")
	assert.Equal(t, []string{"ops@example.com"}, result.Notified)
}

func TestPublishReport_WithoutNotify(t *testing.T) {
	store := storedMarch(t)
	writer := &fakeSheetWriter{}

	result, err := PublishReport(context.Background(), store, writer, nil, testConfig(), zap.NewNop(), "2025-03", false)
	require.NoError(t, err)
	assert.Len(t, writer.tabs, 1)
	assert.Empty(t, result.Notified)
}

func TestPublishReport_Failures(t *testing.T) {
	t.Run("no sheet configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.ReportSheetID = ""
		_, err := PublishReport(context.Background(), storedMarch(t), &fakeSheetWriter{}, nil, cfg, zap.NewNop(), "2025-03", false)
		assert.Error(t, err)
	})

	t.Run("notify without recipients", func(t *testing.T) {
		cfg := testConfig()
		cfg.NotifyRecipients = nil
		writer := &fakeSheetWriter{}
		_, err := PublishReport(context.Background(), storedMarch(t), writer, &fakeMailer{}, cfg, zap.NewNop(), "2025-03", true)
		assert.Error(t, err)
		assert.Empty(t, writer.tabs, "nothing is written when the request is invalid")
	})

	t.Run("sheet write fails", func(t *testing.T) {
		store := storedMarch(t)
		writer := &fakeSheetWriter{err: errors.New("quota exceeded")}
		_, err := PublishReport(context.Background(), store, writer, nil, testConfig(), zap.NewNop(), "2025-03", false)
		require.Error(t, err)
		assert.Empty(t, store.publishedIDs)
	})

	t.Run("email fails after publishing", func(t *testing.T) {
		store := storedMarch(t)
		mailer := &fakeMailer{err: errors.New("invalid grant")}
		_, err := PublishReport(context.Background(), store, &fakeSheetWriter{}, mailer, testConfig(), zap.NewNop(), "2025-03", true)
		require.Error(t, err)
		assert.Len(t, store.publishedIDs, 1)
	})
}

func TestSummaryText(t *testing.T) {
	store := storedMarch(t)
	stored, err := ViewReport(context.Background(), store, testConfig(), zap.NewNop(), "2025-03")
	require.NoError(t, err)

	text := SummaryText(stored.Report)
	assert.Contains(t, text, "Editor points for 2025-03")
	assert.Contains(t, text, "Total points: 16.0")
	assert.Contains(t, text, "Total bonus: 960.00")
	assert.NotContains(t, text, "Unmatched")
}
