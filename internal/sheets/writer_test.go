package sheets

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

func TestQueueValues(t *testing.T) {
	claims := []model.ProcessedClaim{
		{ClaimID: "C2", Category: "Escalation", PriorityScore: 40, IsActionable: true},
		{ClaimID: "C1", Category: "Billing Error", PriorityScore: 17, IsActionable: true},
	}
	metrics := model.Metrics{TotalClaims: 5, TotalNetPayment: 1234.5}
	generated := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	values := queueValues(claims, metrics, generated)

	require.Len(t, values, headerRows+len(claims))
	assert.Equal(t, []any{"Claims Work Queue", "Mar 1, 2024 9:30 AM"}, values[0])
	assert.Equal(t, []any{"Total Claims", 5}, values[3])
	assert.Equal(t, []any{"Total Net Payment", 1234.5}, values[4])
	assert.Equal(t, []any{"Claims In Queue", 2}, values[5])
	assert.Equal(t, "Priority", values[headerRows-1][0])
	assert.Len(t, values[headerRows-1], len(analysis.QueueColumns))

	// Claims keep the caller's order.
	assert.Equal(t, 40, values[headerRows][0])
	assert.Equal(t, "C1", values[headerRows+1][1])
}

func TestQueueValues_Empty(t *testing.T) {
	values := queueValues(nil, model.Metrics{}, time.Now())
	assert.Len(t, values, headerRows)
}

func TestNetPaymentColumn(t *testing.T) {
	col := netPaymentColumn()
	require.GreaterOrEqual(t, col, int64(0))
	assert.Equal(t, "Net Payment", analysis.QueueColumns[col].Header)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	assert.Equal(t, "r", RefreshTokenFromFile(path))
	assert.Empty(t, RefreshTokenFromFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Empty(t, RefreshTokenFromFile(""))
}

func TestFormattingRequests(t *testing.T) {
	reqs := formattingRequests(7, headerRows+3)
	require.Len(t, reqs, 5)
	assert.Equal(t, int64(headerRows), reqs[3].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)

	currency := reqs[4].RepeatCell
	assert.Equal(t, int64(7), currency.Range.SheetId)
	assert.Equal(t, int64(headerRows), currency.Range.StartRowIndex)
	assert.Equal(t, "CURRENCY", currency.Cell.UserEnteredFormat.NumberFormat.Type)

	assert.Len(t, formattingRequests(7, headerRows), 4)
}

func TestRetryClass(t *testing.T) {
	wrapped := func(code int) error {
		return fmt.Errorf("failed to write batch starting at row 1: %w", &googleapi.Error{Code: code})
	}

	assert.ErrorIs(t, retryClass(wrapped(429)), common.ErrRateLimit)

	var re *common.RetryableError
	require.ErrorAs(t, retryClass(wrapped(503)), &re)
	assert.True(t, re.Retryable)

	require.ErrorAs(t, retryClass(wrapped(403)), &re)
	assert.False(t, re.Retryable)

	plain := errors.New("dial tcp: timeout")
	assert.Same(t, plain, retryClass(plain))
	assert.NoError(t, retryClass(nil))
}
