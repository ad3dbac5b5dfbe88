package report

import (
	"time"

	"padaria-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// GET /api/report/product?start_date=&end_date=&top_n=
func ProductReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := parseDateQuery(c.Query("start_date"))
		if err != nil {
			return err
		}
		end, err := parseDateQuery(c.Query("end_date"))
		if err != nil {
			return err
		}
		if end != nil {
			// make the end date inclusive for the whole day
			e := end.Add(24*time.Hour - time.Second)
			end = &e
		}

		topN := c.QueryInt("top_n", 10)

		rep, err := svc.ProductReport(start, end, topN)
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Validation("dates must be 'YYYY-MM-DD'")
	}
	return &d, nil
}
