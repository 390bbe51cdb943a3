package postgres

import (
	"context"
	"fmt"
	"strings"

	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.CompanyRepository = (*companyRepo)(nil)

type companyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *companyRepo {
	return &companyRepo{pool: pool}
}

func (r *companyRepo) Filter(ctx context.Context, f model.CompanyFilter) ([]model.Company, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(col string, vals []string) {
		if len(vals) == 0 {
			return
		}
		args = append(args, vals)
		conds = append(conds, fmt.Sprintf("%s = ANY($%d)", col, len(args)))
	}
	add("industry", f.Industries)
	add("country", f.Countries)
	add("size", f.Sizes)

	q := `
SELECT id, name, industry, country, locality, region, size, linkedin_url, website
FROM companies`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Industry, &c.Country, &c.Locality,
			&c.Region, &c.Size, &c.LinkedInURL, &c.Website,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *companyRepo) FilterValues(ctx context.Context) (*model.FilterValues, error) {
	distinct := func(col string) ([]string, error) {
		q := fmt.Sprintf(`SELECT DISTINCT %s FROM companies WHERE %s <> '' ORDER BY %s`, col, col, col)
		rows, err := r.pool.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var vals []string
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return vals, rows.Err()
	}

	fv := &model.FilterValues{}
	var err error
	if fv.Industries, err = distinct("industry"); err != nil {
		return nil, err
	}
	if fv.Countries, err = distinct("country"); err != nil {
		return nil, err
	}
	if fv.Sizes, err = distinct("size"); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&fv.TotalCompanies); err != nil {
		return nil, err
	}
	return fv, nil
}
