package repository

import (
	"context"

	"serial-job-applier/internal/domain/model"
)

// CompanyRepository is the read side of the imported company dataset.
type CompanyRepository interface {
	Filter(ctx context.Context, f model.CompanyFilter) ([]model.Company, error)
	FilterValues(ctx context.Context) (*model.FilterValues, error)
}
