package pgrepo

import (
	"context"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

const planColumns = `id, created_at, updated_at, name, roi, min_amount, max_amount, term_days`

type PlanRepository struct {
	db uow.DBTX
}

func NewPlanRepository(db uow.DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

// GetAll возвращает все тарифные планы, отсортированные по минимальной сумме входа.
func (p *PlanRepository) GetAll(ctx context.Context) ([]domain.Plan, error) {
	rows, err := p.db.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY min_amount ASC`)
	if err != nil {
		return nil, convertErr(err, "getting plans")
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		plan, scanErr := scanPlan(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning plan")
		}
		plans = append(plans, *plan)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting plans")
	}
	return plans, nil
}

// FindByName ищет план по имени. Возвращает domain.ErrRecordNotFound если план не найден.
func (p *PlanRepository) FindByName(ctx context.Context, name string) (*domain.Plan, error) {
	row := p.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE name = $1`, name)

	plan, err := scanPlan(row)
	if err != nil {
		return nil, convertErr(err, "finding plan by name %s", name)
	}
	return plan, nil
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var plan domain.Plan
	err := row.Scan(
		&plan.ID,
		&plan.CreatedAt,
		&plan.UpdatedAt,
		&plan.Name,
		&plan.ROI,
		&plan.MinAmount,
		&plan.MaxAmount,
		&plan.TermDays,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
