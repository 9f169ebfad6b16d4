package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"busticket-backend/internal/domains/booking/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &postgresBookingRepository{pool: pool}
}

func (r *postgresBookingRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresBookingRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresBookingRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

// =====================================================
// CREATE ORDER + TICKETS
// =====================================================

func (r *postgresBookingRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, customer_id, coupon_id, origin_amount, final_amount, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := tx.QueryRow(ctx, query,
		order.ID,
		order.CustomerID,
		order.CouponID,
		order.OriginAmount,
		order.FinalAmount,
		order.Status,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) CreateTickets(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, code, order_id, trip_id, seat_code,
			pickup_point_id, dropoff_point_id, qr_payload, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING purchased_at
	`
	for _, t := range tickets {
		err := tx.QueryRow(ctx, query,
			t.ID,
			t.Code,
			t.OrderID,
			t.TripID,
			t.SeatCode,
			t.PickupPointID,
			t.DropoffPointID,
			t.QRPayload,
			t.Status,
		).Scan(&t.PurchasedAt)
		if err != nil {
			if isSeatConflict(err) {
				return fmt.Errorf("seat %s: %w", t.SeatCode, model.ErrSeatTaken)
			}
			return fmt.Errorf("failed to create ticket for seat %s: %w", t.SeatCode, err)
		}
	}
	return nil
}

// isSeatConflict matches a violation of uq_tickets_trip_seat_active
func isSeatConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_tickets_trip_seat_active"
	}
	return false
}

func (r *postgresBookingRepository) TakenSeats(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, seats []string) ([]string, error) {
	query := `
		SELECT seat_code FROM tickets
		WHERE trip_id = $1 AND seat_code = ANY($2) AND status <> 'cancelled'
	`
	rows, err := tx.Query(ctx, query, tripID, seats)
	if err != nil {
		return nil, fmt.Errorf("failed to query taken seats: %w", err)
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		taken = append(taken, seat)
	}
	return taken, rows.Err()
}

// =====================================================
// READS
// =====================================================

func (r *postgresBookingRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, customer_id, coupon_id, origin_amount, final_amount, status, created_at
		FROM orders
		WHERE id = $1
	`
	var o model.Order
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&o.ID,
		&o.CustomerID,
		&o.CouponID,
		&o.OriginAmount,
		&o.FinalAmount,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *postgresBookingRepository) GetTicketsByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.Ticket, error) {
	query := `
		SELECT id, code, order_id, trip_id, seat_code, pickup_point_id,
		       dropoff_point_id, qr_payload, status, purchased_at,
		       checked_in_at, checked_in_by
		FROM tickets
		WHERE order_id = $1
		ORDER BY seat_code
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*model.Ticket
	for rows.Next() {
		var t model.Ticket
		err := rows.Scan(
			&t.ID,
			&t.Code,
			&t.OrderID,
			&t.TripID,
			&t.SeatCode,
			&t.PickupPointID,
			&t.DropoffPointID,
			&t.QRPayload,
			&t.Status,
			&t.PurchasedAt,
			&t.CheckedInAt,
			&t.CheckedInBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}
