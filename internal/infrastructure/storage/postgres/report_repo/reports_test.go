package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/reports"
)

var period = reports.Period{
	From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
}

func TestSummaryQuery_CompletedBillsOnly(t *testing.T) {
	r := NewReportRepo(nil)

	sql, args, err := r.summaryQuery(period).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "COALESCE(SUM(b.total), 0) AS net_sales")
	assert.Contains(t, sql, "AS items_sold FROM bills b")
	assert.Contains(t, sql, "WHERE ib.status = $1 AND ib.created_at >= $2 AND ib.created_at < $3")
	assert.Contains(t, sql, "b.status = $4")
	require.Len(t, args, 6)
	assert.Equal(t, bill.StatusCompleted, args[0])
	assert.Equal(t, bill.StatusCompleted, args[3])
	assert.Equal(t, period.To, args[5])
}

func TestByDayQuery_GroupsInTimezone(t *testing.T) {
	r := NewReportRepo(nil)

	sql, args, err := r.byDayQuery(period, "Asia/Colombo").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT (b.created_at AT TIME ZONE $1)::date AS day, COUNT(*) AS total_bills")
	assert.Contains(t, sql, "GROUP BY day ORDER BY day ASC")
	require.Len(t, args, 4)
	assert.Equal(t, "Asia/Colombo", args[0])
}

func TestTopItemsQuery_LimitAndOrder(t *testing.T) {
	r := NewReportRepo(nil)

	sql, _, err := r.topItemsQuery(period, 5).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN bills b ON b.id = bi.bill_id")
	assert.Contains(t, sql, "GROUP BY bi.item_type, bi.item_id")
	assert.Contains(t, sql, "ORDER BY total_quantity DESC, total_revenue DESC")
	assert.Contains(t, sql, "LIMIT 5")
}

func TestOrderStatsQuery_ByOrderDate(t *testing.T) {
	r := NewReportRepo(nil)

	sql, args, err := r.orderStatsQuery(period).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "o.order_date >= $1 AND o.order_date < $2")
	assert.Contains(t, sql, "GROUP BY o.status")
	assert.Equal(t, []any{period.From, period.To}, args)
}
