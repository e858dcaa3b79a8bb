package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGRepo is the Postgres booking backend. Availability is derived from
// masters' working hours, days off and existing appointments.
type PGRepo struct {
	db    DB
	loc   *time.Location
	close func()
}

func NewRepo(ctx context.Context, dsn string, loc *time.Location) (*PGRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	r := NewWithDB(pool, loc)
	r.close = pool.Close
	return r, nil
}

func NewWithDB(db DB, loc *time.Location) *PGRepo {
	if loc == nil {
		loc = time.Local
	}
	return &PGRepo{db: db, loc: loc}
}

func (r *PGRepo) Close() {
	if r.close != nil {
		r.close()
	}
}

func dbError(op string, err error) error {
	return errs.Upstream("the booking database is unavailable").Arg("op", op).Wrap(err)
}

// ---------- Каталог ----------

func (r *PGRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	const q = `
		SELECT id, name, description, duration_min, price_minor
		FROM service
		WHERE is_active
		ORDER BY sort_order, name;
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, dbError("list_services", err)
	}
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMin, &s.PriceMinor); err != nil {
			return nil, dbError("list_services", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list_services", err)
	}
	return out, nil
}

func (r *PGRepo) serviceByID(ctx context.Context, id string) (model.Service, error) {
	s := model.Service{ID: id}
	err := r.db.QueryRow(ctx, `SELECT name, duration_min, price_minor FROM service WHERE id=$1`, id).
		Scan(&s.Name, &s.DurationMin, &s.PriceMinor)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, errs.NotFound("unknown service").Arg("service_id", id)
	}
	if err != nil {
		return s, dbError("get_service", err)
	}
	return s, nil
}

// ---------- Слоты ----------

type master struct {
	id   int64
	name string
}

type interval struct{ a, b time.Time }

func overlaps(a1, a2, b1, b2 time.Time) bool { return a1.Before(b2) && b1.Before(a2) }

// ListSlots returns one slot per free start time across all active masters
// offering the service; when several are free the first by name takes it.
func (r *PGRepo) ListSlots(ctx context.Context, serviceID string, day time.Time) ([]model.Slot, error) {
	svc, err := r.serviceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	step := time.Duration(svc.DurationMin) * time.Minute
	if step <= 0 {
		return []model.Slot{}, nil
	}

	masters, err := r.mastersFor(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	byStart := make(map[int64]model.Slot)
	for _, m := range masters {
		slots, err := r.masterSlots(ctx, m, day.In(r.loc), step)
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			if _, ok := byStart[s.StartTime.Unix()]; !ok {
				byStart[s.StartTime.Unix()] = s
			}
		}
	}

	out := make([]model.Slot, 0, len(byStart))
	for _, s := range byStart {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *PGRepo) mastersFor(ctx context.Context, serviceID string) ([]master, error) {
	const q = `
		SELECT m.id, m.name
		FROM master_service ms
		JOIN master m ON m.id = ms.master_id
		WHERE ms.service_id = $1 AND m.is_active
		ORDER BY m.name;
	`
	rows, err := r.db.Query(ctx, q, serviceID)
	if err != nil {
		return nil, dbError("list_masters", err)
	}
	defer rows.Close()
	var out []master
	for rows.Next() {
		var m master
		if err := rows.Scan(&m.id, &m.name); err != nil {
			return nil, dbError("list_masters", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list_masters", err)
	}
	return out, nil
}

func (r *PGRepo) masterSlots(ctx context.Context, m master, day time.Time, step time.Duration) ([]model.Slot, error) {
	year, month, dayN := day.Date()
	midnight := time.Date(year, month, dayN, 0, 0, 0, 0, r.loc)

	// Рабочие часы (секунды от полуночи) и выходные
	var startSec, endSec int
	err := r.db.QueryRow(ctx,
		`SELECT EXTRACT(EPOCH FROM time_start)::int, EXTRACT(EPOCH FROM time_end)::int FROM working_hours WHERE master_id=$1 AND dow=$2`,
		m.id, int(day.Weekday())).Scan(&startSec, &endSec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // нет расписания — нет слотов
	}
	if err != nil {
		return nil, dbError("working_hours", err)
	}

	var dummy int
	err = r.db.QueryRow(ctx, `SELECT 1 FROM day_off WHERE master_id=$1 AND day=$2::date`, m.id, midnight).Scan(&dummy)
	if err == nil {
		return nil, nil // выходной день
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, dbError("day_off", err)
	}

	busy, err := r.busy(ctx, m.id, midnight)
	if err != nil {
		return nil, err
	}

	tStart := midnight.Add(time.Duration(startSec) * time.Second)
	tEnd := midnight.Add(time.Duration(endSec) * time.Second)

	var slots []model.Slot
	for t := tStart; !t.Add(step).After(tEnd); t = t.Add(step) {
		s, e := t, t.Add(step)
		conflict := false
		for _, iv := range busy {
			if overlaps(s, e, iv.a, iv.b) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, model.Slot{
				ID:        encodeSlotID(s, m.id),
				StartTime: s,
				EndTime:   e,
				StaffID:   strconv.FormatInt(m.id, 10),
				StaffName: m.name,
			})
		}
	}
	return slots, nil
}

// busy returns the master's confirmed appointments touching the day (UTC → локаль).
func (r *PGRepo) busy(ctx context.Context, masterID int64, midnight time.Time) ([]interval, error) {
	const q = `
		SELECT start_at, end_at
		FROM appointment
		WHERE master_id=$1
		  AND status = 'confirmed'
		  AND start_at < $3
		  AND end_at > $2;
	`
	rows, err := r.db.Query(ctx, q, masterID, midnight, midnight.AddDate(0, 0, 1))
	if err != nil {
		return nil, dbError("busy", err)
	}
	defer rows.Close()
	var out []interval
	for rows.Next() {
		var a, b time.Time
		if err := rows.Scan(&a, &b); err != nil {
			return nil, dbError("busy", err)
		}
		out = append(out, interval{a: a.In(r.loc), b: b.In(r.loc)})
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("busy", err)
	}
	return out, nil
}

// Slot ids look like slot_202603051000_m7: local start time and master id.
const slotLayout = "200601021504"

func encodeSlotID(start time.Time, masterID int64) string {
	return fmt.Sprintf("slot_%s_m%d", start.Format(slotLayout), masterID)
}

func (r *PGRepo) decodeSlotID(id string) (time.Time, int64, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "slot" || !strings.HasPrefix(parts[2], "m") {
		return time.Time{}, 0, errs.Validation("unknown time slot").Arg("slot_id", id)
	}
	start, err := time.ParseInLocation(slotLayout, parts[1], r.loc)
	if err != nil {
		return time.Time{}, 0, errs.Validation("unknown time slot").Arg("slot_id", id).Wrap(err)
	}
	masterID, err := strconv.ParseInt(parts[2][1:], 10, 64)
	if err != nil {
		return time.Time{}, 0, errs.Validation("unknown time slot").Arg("slot_id", id).Wrap(err)
	}
	return start, masterID, nil
}

// ---------- Бронирование ----------

// Book upserts the customer and inserts the appointment in one transaction.
// The no_overlap exclusion constraint turns a lost race into a validation error.
func (r *PGRepo) Book(ctx context.Context, serviceID, slotID string, c model.Customer) (*model.Appointment, error) {
	start, masterID, err := r.decodeSlotID(slotID)
	if err != nil {
		return nil, err
	}
	svc, err := r.serviceByID(ctx, serviceID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Validation("unknown service").Arg("service_id", serviceID)
		}
		return nil, err
	}

	a := &model.Appointment{
		ID:          "appt-" + uuid.NewString(),
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		SlotID:      slotID,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(svc.DurationMin) * time.Minute),
		Customer:    c,
		Status:      model.StatusConfirmed,
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, dbError("book", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsertCustomer = `
		INSERT INTO customer (email, name, phone)
		VALUES ($1,$2,$3)
		ON CONFLICT (email) DO UPDATE
		   SET name       = EXCLUDED.name,
		       phone      = EXCLUDED.phone,
		       updated_at = now()
		RETURNING id;
	`
	var customerID int64
	if err := tx.QueryRow(ctx, upsertCustomer, c.Email, c.Name, c.Phone).Scan(&customerID); err != nil {
		return nil, dbError("upsert_customer", err)
	}

	const insert = `
		INSERT INTO appointment (id, customer_id, master_id, service_id, start_at, end_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,'confirmed');
	`
	if _, err := tx.Exec(ctx, insert, a.ID, customerID, masterID, svc.ID, a.StartTime.UTC(), a.EndTime.UTC()); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) {
			switch pgerr.Code {
			case "23P01", "23505":
				return nil, errs.Validation("slot no longer available").Arg("slot_id", slotID)
			case "23503":
				return nil, errs.Validation("unknown time slot").Arg("slot_id", slotID)
			}
		}
		return nil, dbError("book", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, dbError("book", err)
	}
	return a, nil
}

func (r *PGRepo) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	const q = `
		SELECT a.id, a.service_id, s.name, a.master_id, a.start_at, a.end_at, a.status,
		       c.name, c.phone, c.email
		FROM appointment a
		JOIN service s ON s.id = a.service_id
		JOIN customer c ON c.id = a.customer_id
		WHERE a.id = $1;
	`
	var (
		a        model.Appointment
		masterID int64
		status   string
	)
	err := r.db.QueryRow(ctx, q, strings.ToLower(id)).Scan(
		&a.ID, &a.ServiceID, &a.ServiceName, &masterID, &a.StartTime, &a.EndTime, &status,
		&a.Customer.Name, &a.Customer.Phone, &a.Customer.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("appointment not found").Arg("id", id)
	}
	if err != nil {
		return nil, dbError("get_appointment", err)
	}
	a.StartTime = a.StartTime.In(r.loc)
	a.EndTime = a.EndTime.In(r.loc)
	a.Status = model.AppointmentStatus(status)
	a.SlotID = encodeSlotID(a.StartTime, masterID)
	return &a, nil
}

func (r *PGRepo) CancelAppointment(ctx context.Context, id string) (*model.Cancellation, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointment SET status='canceled', updated_at=now() WHERE id=$1 AND status <> 'canceled'`,
		strings.ToLower(id))
	if err != nil {
		return nil, dbError("cancel_appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, errs.NotFound("appointment not found or already canceled").Arg("id", id)
	}
	return &model.Cancellation{
		AppointmentID: strings.ToLower(id),
		Status:        model.StatusCanceled,
		Message:       "Appointment successfully canceled",
	}, nil
}
