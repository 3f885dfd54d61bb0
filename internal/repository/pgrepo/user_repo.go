package pgrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

const userColumns = `id, created_at, updated_at, username, encrypted_password, balance, kyc_verified, role`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser создает юзера с нулевым балансом. В случае конфликта юзернейма возвращает
// ошибку domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (username, encrypted_password)
		VALUES ($1, $2)
		RETURNING `+userColumns, args.Username, args.Password)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return user, nil
}

// FindByUsername ищет юзера по его юзернейму. Возвращает ошибку domain.ErrRecordNotFound
// если запись не найдена, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return user, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// IncrementBalance атомарно изменяет баланс юзера на delta (может быть отрицательной)
// и возвращает обновленного юзера. Неотрицательность баланса гарантирует CHECK ограничение
// схемы: при его нарушении вернется domain.ErrNotEnoughBalance. Единственный разрешенный
// способ мутации баланса - этот инкремент, никаких read-modify-write.
func (u *UserRepository) IncrementBalance(
	ctx context.Context,
	userID int64,
	delta decimal.Decimal,
) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users
		SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns, delta, userID)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "incrementing balance of user %d", userID)
	}
	return user, nil
}

// SetKYCVerified выставляет флаг прохождения KYC верификации.
func (u *UserRepository) SetKYCVerified(ctx context.Context, userID int64, verified bool) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users
		SET kyc_verified = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns, verified, userID)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "setting kyc status of user %d", userID)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.EncryptedPassword,
		&user.Balance,
		&user.KYCVerified,
		&user.Role,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
