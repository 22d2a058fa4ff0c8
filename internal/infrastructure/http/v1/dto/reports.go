package dto

// MonthlyReportQuery selects a calendar month.
type MonthlyReportQuery struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// TopItemsQuery is a best-seller request.
type TopItemsQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
