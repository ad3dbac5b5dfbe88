// Package report computes read-only sales aggregates from persisted
// Sale, Product and User rows. Nothing here mutates state; two
// identical calls over the same data return the same report.
package report

import (
	"sort"
	"time"

	"padaria-backend/internal/apperr"
	"padaria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ProductSold struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type SellerResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TotalSales float64 `json:"total_sales"`
}

type ProductReport struct {
	TopSellingProducts   []ProductSold  `json:"top_selling_product"`
	TopLeastSoldProducts []ProductSold  `json:"top_least_sold_products"`
	SalesAmount          float64        `json:"sales_amount"`
	NumberOfSales        int            `json:"number_of_sales"`
	NumberOfProducts     int            `json:"number_of_products"`
	SalesProfit          float64        `json:"sales_profit"`
	NumberOfProductsSold float64        `json:"number_of_products_sold"`
	MeanTicket           float64        `json:"mean_ticket"`
	TopSellers           []SellerResult `json:"top_seller"`
}

func emptyReport() *ProductReport {
	return &ProductReport{
		TopSellingProducts:   []ProductSold{},
		TopLeastSoldProducts: []ProductSold{},
		TopSellers:           []SellerResult{},
	}
}

// ProductReport aggregates revenue, profit, product and seller
// rankings over the sales created inside the optional [start, end]
// window. Monetary sums are accumulated as decimals and exposed as
// float64. An empty database yields a zeroed report, not an error.
func (s *Service) ProductReport(start, end *time.Time, topN int) (*ProductReport, error) {
	if topN <= 0 {
		topN = 10
	}

	var products []models.Product
	if err := s.db.Find(&products).Error; err != nil {
		return nil, apperr.Server(err)
	}

	report := emptyReport()
	if len(products) == 0 {
		return report, nil
	}
	report.NumberOfProducts = len(products)

	salesQuery := s.db.Model(&models.Sale{})
	if start != nil {
		salesQuery = salesQuery.Where("created_at >= ?", *start)
	}
	if end != nil {
		salesQuery = salesQuery.Where("created_at <= ?", *end)
	}
	var sales []models.Sale
	if err := salesQuery.Find(&sales).Error; err != nil {
		return nil, apperr.Server(err)
	}
	if len(sales) == 0 {
		return report, nil
	}

	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	type productAgg struct {
		quantity float64
		total    decimal.Decimal
	}
	perProduct := make(map[string]*productAgg)
	perSeller := make(map[string]decimal.Decimal)
	codes := make(map[string]bool)

	amount := decimal.Zero
	profit := decimal.Zero
	quantitySold := 0.0

	for _, sale := range sales {
		value := decimal.NewFromFloat(sale.Value)
		amount = amount.Add(value)
		quantitySold += sale.Quantity
		codes[sale.SaleCode] = true

		if p, ok := productByID[sale.ProductID]; ok {
			margin := decimal.NewFromFloat(p.PriceSale).
				Sub(decimal.NewFromFloat(p.PriceCost)).
				Mul(decimal.NewFromFloat(sale.Quantity))
			profit = profit.Add(margin)
		}

		agg, ok := perProduct[sale.ProductID]
		if !ok {
			agg = &productAgg{total: decimal.Zero}
			perProduct[sale.ProductID] = agg
		}
		agg.quantity += sale.Quantity
		agg.total = agg.total.Add(value)

		sellerTotal, ok := perSeller[sale.UserID]
		if !ok {
			sellerTotal = decimal.Zero
		}
		perSeller[sale.UserID] = sellerTotal.Add(value)
	}

	report.SalesAmount = amount.InexactFloat64()
	report.SalesProfit = profit.InexactFloat64()
	report.NumberOfSales = len(codes)
	report.NumberOfProductsSold = quantitySold
	if report.NumberOfSales > 0 {
		report.MeanTicket = amount.
			Div(decimal.NewFromInt(int64(report.NumberOfSales))).
			InexactFloat64()
	}

	ranked := make([]ProductSold, 0, len(perProduct))
	for id, agg := range perProduct {
		name := ""
		if p, ok := productByID[id]; ok {
			name = p.Name
		}
		ranked = append(ranked, ProductSold{
			ID:         id,
			Name:       name,
			Quantity:   agg.quantity,
			TotalPrice: agg.total.InexactFloat64(),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity == ranked[j].Quantity {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].Quantity > ranked[j].Quantity
	})
	report.TopSellingProducts = firstN(ranked, topN)

	least := make([]ProductSold, len(ranked))
	copy(least, ranked)
	sort.Slice(least, func(i, j int) bool {
		if least[i].Quantity == least[j].Quantity {
			return least[i].Name < least[j].Name
		}
		return least[i].Quantity < least[j].Quantity
	})
	report.TopLeastSoldProducts = firstN(least, topN)

	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, apperr.Server(err)
	}
	userByID := make(map[string]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	sellers := make([]SellerResult, 0, len(perSeller))
	for id, total := range perSeller {
		name := ""
		if u, ok := userByID[id]; ok {
			name = u.Name
		}
		sellers = append(sellers, SellerResult{
			ID:         id,
			Name:       name,
			TotalSales: total.InexactFloat64(),
		})
	}
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].TotalSales == sellers[j].TotalSales {
			return sellers[i].Name < sellers[j].Name
		}
		return sellers[i].TotalSales > sellers[j].TotalSales
	})
	report.TopSellers = firstN(sellers, topN)

	return report, nil
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return items
}
