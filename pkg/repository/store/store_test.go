package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *PGRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewWithDB(mock, time.UTC)
}

func TestListServices(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("SELECT id, name, description, duration_min, price_minor").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "duration_min", "price_minor"}).
			AddRow("service-001", "Manicure", "Basic manicure service", 60, 3500).
			AddRow("service-002", "Pedicure", "Basic pedicure service", 45, 4000))

	services, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, model.Service{ID: "service-001", Name: "Manicure", Description: "Basic manicure service", DurationMin: 60, PriceMinor: 3500}, services[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListServicesUpstream(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM service").WillReturnError(errors.New("connection refused"))

	_, err := repo.ListServices(context.Background())
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
}

func expectService(mock pgxmock.PgxPoolIface, id string, duration int) {
	mock.ExpectQuery("FROM service WHERE id").WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"name", "duration_min", "price_minor"}).AddRow("Manicure", duration, 3500))
}

func TestListSlots(t *testing.T) {
	mock, repo := newMock(t)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC) // Thursday

	expectService(mock, "service-001", 60)
	mock.ExpectQuery("FROM master_service").WithArgs("service-001").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Anna").AddRow(int64(2), "Bella"))

	// Anna: 9-12 with 10:00 taken.
	mock.ExpectQuery("FROM working_hours").WithArgs(int64(1), 4).
		WillReturnRows(pgxmock.NewRows([]string{"s", "e"}).AddRow(9*3600, 12*3600))
	mock.ExpectQuery("FROM day_off").WithArgs(int64(1), day).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM appointment").WithArgs(int64(1), day, day.AddDate(0, 0, 1)).
		WillReturnRows(pgxmock.NewRows([]string{"start_at", "end_at"}).
			AddRow(day.Add(10*time.Hour), day.Add(11*time.Hour)))

	// Bella: 10-11, free.
	mock.ExpectQuery("FROM working_hours").WithArgs(int64(2), 4).
		WillReturnRows(pgxmock.NewRows([]string{"s", "e"}).AddRow(10*3600, 11*3600))
	mock.ExpectQuery("FROM day_off").WithArgs(int64(2), day).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM appointment").WithArgs(int64(2), day, day.AddDate(0, 0, 1)).
		WillReturnRows(pgxmock.NewRows([]string{"start_at", "end_at"}))

	slots, err := repo.ListSlots(context.Background(), "service-001", day)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "slot_202603050900_m1", slots[0].ID)
	assert.Equal(t, "slot_202603051000_m2", slots[1].ID)
	assert.Equal(t, "Bella", slots[1].StaffName)
	assert.Equal(t, "slot_202603051100_m1", slots[2].ID)
	assert.Equal(t, day.Add(12*time.Hour), slots[2].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSlotsDayOffAndNoSchedule(t *testing.T) {
	mock, repo := newMock(t)
	day := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC) // Sunday

	expectService(mock, "service-001", 60)
	mock.ExpectQuery("FROM master_service").WithArgs("service-001").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Anna").AddRow(int64(2), "Bella"))
	mock.ExpectQuery("FROM working_hours").WithArgs(int64(1), 0).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM working_hours").WithArgs(int64(2), 0).
		WillReturnRows(pgxmock.NewRows([]string{"s", "e"}).AddRow(9*3600, 17*3600))
	mock.ExpectQuery("FROM day_off").WithArgs(int64(2), day).
		WillReturnRows(pgxmock.NewRows([]string{"one"}).AddRow(1))

	slots, err := repo.ListSlots(context.Background(), "service-001", day)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSlotsUnknownService(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM service WHERE id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.ListSlots(context.Background(), "nope", time.Now())
	assert.True(t, errs.IsNotFound(err))
}

func TestBook(t *testing.T) {
	mock, repo := newMock(t)
	cust := model.Customer{Name: "Jane", Phone: "555", Email: "jane@x.com"}
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	expectService(mock, "service-001", 60)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customer").WithArgs("jane@x.com", "Jane", "555").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO appointment").
		WithArgs(pgxmock.AnyArg(), int64(42), int64(1), "service-001", start, start.Add(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	a, err := repo.Book(context.Background(), "service-001", "slot_202603050900_m1", cust)
	require.NoError(t, err)
	assert.Regexp(t, `^appt-[0-9a-f-]{36}$`, a.ID)
	assert.Equal(t, start, a.StartTime)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, cust, a.Customer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotTaken(t *testing.T) {
	mock, repo := newMock(t)

	expectService(mock, "service-001", 60)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customer").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO appointment").
		WillReturnError(&pgconn.PgError{Code: "23P01"})
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "service-001", "slot_202603050900_m1", model.Customer{Email: "a@b.co"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "slot no longer available")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookMalformedSlot(t *testing.T) {
	mock, repo := newMock(t)
	for _, id := range []string{"", "slot_202603050900", "slot_2026_m1", "slot_202603050900_mx", "x_202603050900_m1"} {
		_, err := repo.Book(context.Background(), "service-001", id, model.Customer{})
		assert.True(t, errs.IsValidation(err), id)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointment(t *testing.T) {
	mock, repo := newMock(t)
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM appointment a").WithArgs("appt-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "service_id", "name", "master_id", "start_at", "end_at", "status", "cname", "phone", "email"}).
			AddRow("appt-1", "service-001", "Manicure", int64(3), start, start.Add(time.Hour), "confirmed", "Jane", "555", "jane@x.com"))

	a, err := repo.GetAppointment(context.Background(), "APPT-1")
	require.NoError(t, err)
	assert.Equal(t, "Manicure", a.ServiceName)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, "slot_202603050900_m3", a.SlotID)
	assert.Equal(t, "jane@x.com", a.Customer.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentNotFound(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM appointment a").WithArgs("appt-x").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetAppointment(context.Background(), "appt-x")
	assert.True(t, errs.IsNotFound(err))
}

func TestCancelAppointment(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec("UPDATE appointment SET status='canceled'").WithArgs("appt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE appointment SET status='canceled'").WithArgs("appt-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	res, err := repo.CancelAppointment(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, res.Status)

	_, err = repo.CancelAppointment(context.Background(), "appt-2")
	assert.True(t, errs.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
