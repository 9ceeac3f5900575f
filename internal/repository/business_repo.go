package repository

import (
	"context"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BusinessRepository struct {
	db *pgxpool.Pool
}

func NewBusinessRepository(db *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `id, name, employee_count, phone_number, email, country, city, owner_full_name, description, image, user_id, status, created_at`

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.EmployeeCount,
		&b.PhoneNumber,
		&b.Email,
		&b.Country,
		&b.City,
		&b.OwnerFullName,
		&b.Description,
		&b.Image,
		&b.UserID,
		&b.Status,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) query(ctx context.Context, op, sql string, args ...any) ([]*domain.Business, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var res []*domain.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO businesses (id, name, employee_count, phone_number, email, country, city, owner_full_name, description, image, user_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		b.ID, b.Name, b.EmployeeCount, b.PhoneNumber, b.Email, b.Country, b.City,
		b.OwnerFullName, b.Description, b.Image, b.UserID, b.Status,
	).Scan(&b.CreatedAt)
	return mapErr("create business", err)
}

func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get business", err)
	}
	return b, nil
}

func (r *BusinessRepository) GetByEmail(ctx context.Context, email string) (*domain.Business, error) {
	b, err := scanBusiness(r.db.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE email = $1`, email))
	if err != nil {
		return nil, mapErr("get business by email", err)
	}
	return b, nil
}

func (r *BusinessRepository) List(ctx context.Context, status domain.BusinessStatus) ([]*domain.Business, error) {
	if status == "" {
		return r.query(ctx, "list businesses",
			`SELECT `+businessColumns+` FROM businesses ORDER BY created_at DESC`)
	}
	return r.query(ctx, "list businesses by status",
		`SELECT `+businessColumns+` FROM businesses WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *BusinessRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Business, error) {
	return r.query(ctx, "list user businesses",
		`SELECT `+businessColumns+` FROM businesses WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *BusinessRepository) Update(ctx context.Context, b *domain.Business) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE businesses
		 SET name = $2, employee_count = $3, phone_number = $4, email = $5, country = $6, city = $7, description = $8, image = $9
		 WHERE id = $1`,
		b.ID, b.Name, b.EmployeeCount, b.PhoneNumber, b.Email, b.Country, b.City, b.Description, b.Image)
	return execOne("update business", tag, err)
}

func (r *BusinessRepository) UpdateStatus(ctx context.Context, id string, status domain.BusinessStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE businesses SET status = $2 WHERE id = $1`, id, status)
	return execOne("update business status", tag, err)
}

func (r *BusinessRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	return execOne("delete business", tag, err)
}
