package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"busticket-backend/internal/domains/ticket/model"
)

// =====================================================
// POSTGRES READ REPOSITORY
// =====================================================
type postgresTicketReadRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTicketReadRepository(pool *pgxpool.Pool) TicketReadRepository {
	return &postgresTicketReadRepository{pool: pool}
}

// detailColumns is shared by both projection queries so they cannot
// drift apart. Transaction and coupon are LEFT JOINed: a pending order
// has neither.
const detailColumns = `
	t.id, t.code, t.trip_id, t.seat_code,
	t.pickup_point_id, t.dropoff_point_id,
	t.qr_payload, t.status, t.purchased_at, t.checked_in_at,
	o.id, o.status, o.origin_amount, o.final_amount, o.created_at,
	tx.amount, tx.payment_method, tx.status, tx.created_at,
	cp.code, (o.origin_amount - o.final_amount)
`

const detailJoins = `
	FROM tickets t
	JOIN orders o ON o.id = t.order_id
	LEFT JOIN transactions tx ON tx.order_id = o.id
	LEFT JOIN coupons cp ON cp.id = o.coupon_id
`

func (r *postgresTicketReadRepository) GetDetailByCode(ctx context.Context, code string) (*model.TicketDetail, *model.TicketOwner, error) {
	query := `
		SELECT ` + detailColumns + `,
			c.id, c.email, c.phone
		` + detailJoins + `
		JOIN customers c ON c.id = o.customer_id
		WHERE t.code = $1
	`

	row := r.pool.QueryRow(ctx, query, code)

	var detail model.TicketDetail
	var owner model.TicketOwner
	if err := scanDetail(row, &detail, &owner.CustomerID, &owner.Email, &owner.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, model.ErrTicketNotFound
		}
		return nil, nil, fmt.Errorf("failed to load ticket by code: %w", err)
	}
	return &detail, &owner, nil
}

func (r *postgresTicketReadRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]model.TicketDetail, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM tickets t
		JOIN orders o ON o.id = t.order_id
		WHERE o.customer_id = $1
	`
	if err := r.pool.QueryRow(ctx, countQuery, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	query := `
		SELECT ` + detailColumns + `
		` + detailJoins + `
		WHERE o.customer_id = $1
		ORDER BY t.purchased_at DESC, t.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	details := make([]model.TicketDetail, 0, limit)
	for rows.Next() {
		var detail model.TicketDetail
		if err := scanDetail(rows, &detail); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read ticket rows: %w", err)
	}
	return details, total, nil
}

// scanDetail scans one projection row. extra receives trailing columns
// (the owner fields in GetDetailByCode). LEFT JOIN columns are scanned
// into pointers so a pending order's missing transaction/coupon comes
// back as nil instead of a scan error.
func scanDetail(row pgx.Row, detail *model.TicketDetail, extra ...any) error {
	var (
		txnAmount  *decimal.Decimal
		txnMethod  *string
		txnStatus  *string
		txnPaidAt  *time.Time
		couponCode *string
		discount   decimal.Decimal
	)

	dest := []any{
		&detail.TicketID, &detail.Code, &detail.TripID, &detail.SeatCode,
		&detail.PickupPointID, &detail.DropoffPointID,
		&detail.QRPayload, &detail.Status, &detail.PurchasedAt, &detail.CheckedInAt,
		&detail.Order.OrderID, &detail.Order.Status,
		&detail.Order.OriginAmount, &detail.Order.FinalAmount, &detail.Order.CreatedAt,
		&txnAmount, &txnMethod, &txnStatus, &txnPaidAt,
		&couponCode, &discount,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	if txnStatus != nil {
		detail.Transaction = &model.TransactionSummary{
			Amount:        *txnAmount,
			PaymentMethod: *txnMethod,
			Status:        *txnStatus,
			PaidAt:        *txnPaidAt,
		}
	}
	if couponCode != nil {
		detail.Coupon = &model.CouponSummary{
			Code:           *couponCode,
			DiscountAmount: discount,
		}
	}
	return nil
}
