package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busticket-backend/internal/domains/ticket/model"
)

type fakeTicketReadRepo struct {
	byCode map[string]struct {
		detail *model.TicketDetail
		owner  *model.TicketOwner
	}
	byCustomer map[uuid.UUID][]model.TicketDetail

	lastLimit  int
	lastOffset int
}

func newFakeTicketReadRepo() *fakeTicketReadRepo {
	return &fakeTicketReadRepo{
		byCode: make(map[string]struct {
			detail *model.TicketDetail
			owner  *model.TicketOwner
		}),
		byCustomer: make(map[uuid.UUID][]model.TicketDetail),
	}
}

func (f *fakeTicketReadRepo) add(code string, detail *model.TicketDetail, owner *model.TicketOwner) {
	f.byCode[code] = struct {
		detail *model.TicketDetail
		owner  *model.TicketOwner
	}{detail, owner}
}

func (f *fakeTicketReadRepo) GetDetailByCode(ctx context.Context, code string) (*model.TicketDetail, *model.TicketOwner, error) {
	entry, ok := f.byCode[code]
	if !ok {
		return nil, nil, model.ErrTicketNotFound
	}
	return entry.detail, entry.owner, nil
}

func (f *fakeTicketReadRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]model.TicketDetail, int64, error) {
	f.lastLimit, f.lastOffset = limit, offset
	all := f.byCustomer[customerID]
	if offset >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func seededLookupFixture() (*fakeTicketReadRepo, Service, model.LookupRequest) {
	repo := newFakeTicketReadRepo()
	owner := &model.TicketOwner{
		CustomerID: uuid.New(),
		Email:      "rider@example.com",
		Phone:      "+84901234567",
	}
	detail := &model.TicketDetail{
		TicketID: uuid.New(),
		Code:     "TKT-ABCDE23456",
		SeatCode: "A1",
		Status:   "valid",
	}
	repo.add(detail.Code, detail, owner)

	req := model.LookupRequest{
		TicketCode: detail.Code,
		Email:      "rider@example.com",
		Phone:      "+84901234567",
	}
	return repo, NewTicketService(repo), req
}

func TestLookup_Success(t *testing.T) {
	_, svc, req := seededLookupFixture()

	detail, err := svc.Lookup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "TKT-ABCDE23456", detail.Code)
	assert.Equal(t, "A1", detail.SeatCode)
}

func TestLookup_EmailCaseInsensitive(t *testing.T) {
	_, svc, req := seededLookupFixture()
	req.Email = "RIDER@Example.COM"

	_, err := svc.Lookup(context.Background(), req)
	assert.NoError(t, err)
}

func TestLookup_TrimsInput(t *testing.T) {
	_, svc, req := seededLookupFixture()
	req.TicketCode = " TKT-ABCDE23456 "
	req.Email = " rider@example.com "
	req.Phone = " +84901234567 "

	_, err := svc.Lookup(context.Background(), req)
	assert.NoError(t, err)
}

func TestLookup_ContactMismatch(t *testing.T) {
	cases := []struct {
		name  string
		email string
		phone string
	}{
		{"wrong email", "other@example.com", "+84901234567"},
		{"wrong phone", "rider@example.com", "+84900000000"},
		{"both wrong", "other@example.com", "+84900000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, svc, req := seededLookupFixture()
			req.Email = tc.email
			req.Phone = tc.phone

			_, err := svc.Lookup(context.Background(), req)
			assert.ErrorIs(t, err, model.ErrUnauthorized)
		})
	}
}

func TestLookup_UnknownCode(t *testing.T) {
	_, svc, req := seededLookupFixture()
	req.TicketCode = "TKT-ZZZZZZZZZZ"

	_, err := svc.Lookup(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrTicketNotFound)
}

func TestLookup_ValidationRejectsBadInput(t *testing.T) {
	_, svc, req := seededLookupFixture()
	req.Email = "not-an-email"

	_, err := svc.Lookup(context.Background(), req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrTicketNotFound)
	assert.NotErrorIs(t, err, model.ErrUnauthorized)
}

func TestMyTickets_Pagination(t *testing.T) {
	repo := newFakeTicketReadRepo()
	customerID := uuid.New()
	for i := 0; i < 25; i++ {
		repo.byCustomer[customerID] = append(repo.byCustomer[customerID], model.TicketDetail{
			TicketID: uuid.New(),
		})
	}
	svc := NewTicketService(repo)

	page, total, err := svc.MyTickets(context.Background(), customerID, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 5)
	assert.Equal(t, 20, repo.lastOffset)
}

func TestMyTickets_ClampsPagination(t *testing.T) {
	repo := newFakeTicketReadRepo()
	svc := NewTicketService(repo)

	_, _, err := svc.MyTickets(context.Background(), uuid.New(), 0, 10000)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastOffset, "page defaults to 1")
	assert.Equal(t, 100, repo.lastLimit, "limit is capped")
}
