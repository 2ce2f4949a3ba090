package dto

import (
	"fmt"

	"github.com/alimikegami/astromart/pkg/errs"
)

type Filter struct {
	Limit      int      `query:"limit"`
	Page       int      `query:"page"`
	Q          string   `query:"q"`
	Status     string   `query:"status"`
	ProductIds []string `json:"product_ids"`
}

// Validate rejects a page or limit below 1. Zero means the value was not
// given and paging is left off.
func (f Filter) Validate() error {
	if f.Page < 0 {
		return fmt.Errorf("%w: page must be at least 1", errs.ErrClient)
	}
	if f.Limit < 0 {
		return fmt.Errorf("%w: limit must be at least 1", errs.ErrClient)
	}

	return nil
}

func (f Filter) Offset() int64 {
	if f.Limit == 0 || f.Page == 0 {
		return 0
	}

	return int64((f.Page - 1) * f.Limit)
}
