package pgrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

const investmentColumns = `id, created_at, updated_at, user_id, plan_name, order_code,
	amount, roi, status, started_at, last_payout, term_days`

type InvestmentRepository struct {
	db uow.DBTX
}

func NewInvestmentRepository(db uow.DBTX) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// Create создает инвестицию в статусе pending. Ставка и срок копируются из плана
// на момент создания и далее не зависят от изменений плана.
func (i *InvestmentRepository) Create(
	ctx context.Context,
	args repoargs.InvestmentCreate,
) (*domain.Investment, error) {
	row := i.db.QueryRow(ctx, `
		INSERT INTO investments (user_id, plan_name, order_code, amount, roi, term_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+investmentColumns,
		args.UserID, args.PlanName, args.OrderCode, args.Amount, args.ROI, args.TermDays)

	investment, err := scanInvestment(row)
	if err != nil {
		return nil, convertErr(err, "creating investment")
	}
	return investment, nil
}

func (i *InvestmentRepository) FindByID(ctx context.Context, id int64) (*domain.Investment, error) {
	row := i.db.QueryRow(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id)

	investment, err := scanInvestment(row)
	if err != nil {
		return nil, convertErr(err, "finding investment by id %d", id)
	}
	return investment, nil
}

// GetByUserID возвращает все инвестиции юзера, отсортированные по дате создания по убыванию.
func (i *InvestmentRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Investment, error) {
	rows, err := i.db.Query(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "getting investments of user %d", userID)
	}
	return collectInvestments(rows)
}

// GetActiveByUserID возвращает активные инвестиции юзера в порядке создания.
// Именно этот снимок обходит цикл начисления.
func (i *InvestmentRepository) GetActiveByUserID(ctx context.Context, userID int64) ([]domain.Investment, error) {
	rows, err := i.db.Query(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = $1 AND status = $2
		ORDER BY id ASC`, userID, domain.InvestmentStatusActive)
	if err != nil {
		return nil, convertErr(err, "getting active investments of user %d", userID)
	}
	return collectInvestments(rows)
}

// ActiveUserIDs возвращает id юзеров, имеющих хотя бы одну активную инвестицию.
// Используется воркером начислений для обхода.
func (i *InvestmentRepository) ActiveUserIDs(ctx context.Context, limit uint) ([]int64, error) {
	rows, err := i.db.Query(ctx, `
		SELECT DISTINCT user_id
		FROM investments
		WHERE status = $1
		ORDER BY user_id ASC
		LIMIT $2`, domain.InvestmentStatusActive, int64(limit))
	if err != nil {
		return nil, convertErr(err, "getting users with active investments")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, convertErr(scanErr, "scanning user id")
		}
		ids = append(ids, id)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting users with active investments")
	}
	return ids, nil
}

// UpdateStatus условный перевод статуса from -> to. Если инвестиция уже не в статусе from,
// запрос не затронет ни одной строки и вернется domain.ErrRecordNotFound - на этом
// строится идемпотентность переходов при конкурентных воркерах.
func (i *InvestmentRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.InvestmentStatusType,
) (*domain.Investment, error) {
	row := i.db.QueryRow(ctx, `
		UPDATE investments
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+investmentColumns, to, id, from)

	investment, err := scanInvestment(row)
	if err != nil {
		return nil, convertErr(err, "updating status of investment %d", id)
	}
	return investment, nil
}

// Activate условный переход pending -> active с выставлением якоря срока started_at.
func (i *InvestmentRepository) Activate(ctx context.Context, id int64, startedAt time.Time) (*domain.Investment, error) {
	row := i.db.QueryRow(ctx, `
		UPDATE investments
		SET status = $1, started_at = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING `+investmentColumns,
		domain.InvestmentStatusActive, startedAt, id, domain.InvestmentStatusPending)

	investment, err := scanInvestment(row)
	if err != nil {
		return nil, convertErr(err, "activating investment %d", id)
	}
	return investment, nil
}

// Complete условный переход active -> completed с выставлением last_payout. Выполняется
// из движка начислений когда срок инвестиции истек.
func (i *InvestmentRepository) Complete(ctx context.Context, id int64, at time.Time) (*domain.Investment, error) {
	row := i.db.QueryRow(ctx, `
		UPDATE investments
		SET status = $1, last_payout = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING `+investmentColumns,
		domain.InvestmentStatusCompleted, at, id, domain.InvestmentStatusActive)

	investment, err := scanInvestment(row)
	if err != nil {
		return nil, convertErr(err, "completing investment %d", id)
	}
	return investment, nil
}

// UpdateLastPayout сдвигает якорь последней выплаты, не затрагивая остальные поля.
func (i *InvestmentRepository) UpdateLastPayout(ctx context.Context, id int64, at time.Time) error {
	row := i.db.QueryRow(ctx, `
		UPDATE investments
		SET last_payout = $1, updated_at = now()
		WHERE id = $2
		RETURNING id`, at, id)

	var updatedID int64
	if err := row.Scan(&updatedID); err != nil {
		return convertErr(err, "updating last payout of investment %d", id)
	}
	return nil
}

func collectInvestments(rows pgx.Rows) ([]domain.Investment, error) {
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		investment, scanErr := scanInvestment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning investment")
		}
		investments = append(investments, *investment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "collecting investments")
	}
	return investments, nil
}

func scanInvestment(row rowScanner) (*domain.Investment, error) {
	var investment domain.Investment
	err := row.Scan(
		&investment.ID,
		&investment.CreatedAt,
		&investment.UpdatedAt,
		&investment.UserID,
		&investment.PlanName,
		&investment.OrderCode,
		&investment.Amount,
		&investment.ROI,
		&investment.Status,
		&investment.StartedAt,
		&investment.LastPayout,
		&investment.TermDays,
	)
	if err != nil {
		return nil, err
	}
	return &investment, nil
}
