// Package reports provides sales, order and dashboard reports.
package reports

import (
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/registers/stock"
)

// Period is a half-open instant range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// --- Sales ---

// DailySummary totals the completed bills of one business day.
// Cancelled bills are excluded.
type DailySummary struct {
	Date          time.Time      `json:"date"`
	TotalBills    int64          `db:"total_bills" json:"totalBills"`
	GrossSales    types.Money    `db:"gross_sales" json:"grossSales"`
	TotalDiscount types.Money    `db:"total_discount" json:"totalDiscount"`
	NetSales      types.Money    `db:"net_sales" json:"netSales"`
	ItemsSold     types.Quantity `db:"items_sold" json:"itemsSold"`
}

// DayRow is one day of a monthly breakdown.
type DayRow struct {
	Date       time.Time   `db:"day" json:"date"`
	TotalBills int64       `db:"total_bills" json:"totalBills"`
	NetSales   types.Money `db:"net_sales" json:"netSales"`
}

// MonthlySummary is a per-day breakdown of a calendar month.
type MonthlySummary struct {
	Year       int         `json:"year"`
	Month      int         `json:"month"`
	Days       []DayRow    `json:"days"`
	TotalBills int64       `json:"totalBills"`
	NetSales   types.Money `json:"netSales"`
}

// SalesRange totals completed bills between two inclusive days, with a
// per-day breakdown. Summary.Date is the first day.
type SalesRange struct {
	From    time.Time    `json:"from"`
	To      time.Time    `json:"to"`
	Summary DailySummary `json:"summary"`
	Days    []DayRow     `json:"days"`
}

// TopItemsFilter defines filter for the best sellers report.
type TopItemsFilter struct {
	From  time.Time
	To    time.Time // inclusive day
	Limit int
}

// TopItem is one best seller row.
type TopItem struct {
	ItemType      documents.ItemType `db:"item_type" json:"itemType"`
	ItemID        id.ID              `db:"item_id" json:"itemId"`
	ItemName      string             `db:"item_name" json:"itemName"`
	TotalQuantity types.Quantity     `db:"total_quantity" json:"totalQuantity"`
	TotalRevenue  types.Money        `db:"total_revenue" json:"totalRevenue"`
	TimesSold     int64              `db:"times_sold" json:"timesSold"`
}

// --- Orders ---

// OrderStatusStat counts orders in one status.
type OrderStatusStat struct {
	Status     string      `db:"status" json:"status"`
	Count      int64       `db:"count" json:"count"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`
}

// --- Dashboard ---

// Dashboard is the landing page of the back office.
type Dashboard struct {
	Date          time.Time              `json:"date"`
	Today         DailySummary           `json:"today"`
	MonthNetSales types.Money            `json:"monthNetSales"`
	PendingOrders int64                  `json:"pendingOrders"`
	LowStock      []*stockitem.StockItem `json:"lowStock"`
	CurrentStock  []stock.StockView      `json:"currentStock"`
}
