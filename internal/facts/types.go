package facts

import "time"

// Transaction is one sales transaction header.
// Date is nil when the stored value could not be parsed.
type Transaction struct {
	TransactionID int64      `json:"transactionid"`
	StoreID       int64      `json:"storeid"`
	CustomerID    *int64     `json:"customerid"`
	Date          *time.Time `json:"date"`
	TotalAmount   float64    `json:"totalamount"`
}

// LineItem is one purchased product row of a transaction.
// TotalPrice is nil when the store did not record it; the analytics layer
// derives it from quantity × unitprice before any aggregation.
type LineItem struct {
	TransactionID int64    `json:"transactionid"`
	ProductID     int64    `json:"productid"`
	Quantity      float64  `json:"quantity"`
	UnitPrice     float64  `json:"unitprice"`
	TotalPrice    *float64 `json:"totalprice"`
}

// Product carries the resolved category label: the registered category name,
// or the stringified raw category id when no label exists.
type Product struct {
	ProductID   int64   `json:"productid"`
	ProductName string  `json:"productname"`
	CategoryID  *int64  `json:"categoryid"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CostPrice   float64 `json:"costprice"`
}

type Store struct {
	StoreID   int64  `json:"storeid"`
	StoreName string `json:"storename"`
	County    string `json:"county"`
}

// Customer is optional master data: the underlying table may not exist.
type Customer struct {
	CustomerID   int64  `json:"customerid"`
	CustomerName string `json:"customername"`
}

type Category struct {
	CategoryID  int64  `json:"categoryid"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CategorySales is the per-category sales summary. Transactions counts
// distinct transaction ids touching the category, not line items.
type CategorySales struct {
	Category     string  `json:"category"`
	SalesSEK     float64 `json:"sales_sek"`
	Qty          float64 `json:"qty"`
	Transactions int64   `json:"transactions"`
}

// MonthlyCategorySales buckets category sales by calendar year-month,
// formatted "YYYY-MM".
type MonthlyCategorySales struct {
	YM       string  `json:"ym"`
	Category string  `json:"category"`
	SalesSEK float64 `json:"sales_sek"`
}
