package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/model"
)

// ErrTripExists is returned when a (contract, trip) pair was already saved.
// Extracted trips are written once and never updated.
var ErrTripExists = errors.New("trip already stored")

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS trips (
    contract_id TEXT NOT NULL,
    trip_id TEXT NOT NULL,
    document TEXT,
    trip_date TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER NOT NULL,
    start_location TEXT,
    end_location TEXT,
    distance REAL NOT NULL,
    duration REAL NOT NULL,
    drive_time REAL,
    driver_class TEXT,
    vehicle TEXT,
    PRIMARY KEY(contract_id, trip_id)
);
CREATE TABLE IF NOT EXISTS stops (
    contract_id TEXT NOT NULL,
    trip_id TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    facility_id TEXT,
    facility TEXT,
    arrival INTEGER,
    departure INTEGER,
    load_unload INTEGER,
    vehicle TEXT NOT NULL DEFAULT '',
    frequency TEXT NOT NULL DEFAULT '',
    stop_date TEXT,
    PRIMARY KEY(contract_id, trip_id, sequence)
);
CREATE TABLE IF NOT EXISTS shifts (
    id TEXT PRIMARY KEY,
    contract_id TEXT,
    shift_index INTEGER NOT NULL,
    shift_date TEXT,
    total_hours REAL NOT NULL,
    total_miles REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS shift_stops (
    shift_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    ref TEXT,
    facility TEXT,
    hours REAL NOT NULL,
    miles REAL,
    PRIMARY KEY(shift_id, position)
);
CREATE TABLE IF NOT EXISTS driver_shifts (
    id TEXT PRIMARY KEY,
    driver_id TEXT NOT NULL,
    shift_date TEXT,
    total_hours REAL NOT NULL,
    total_miles REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS driver_shift_trips (
    shift_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    contract_id TEXT NOT NULL,
    trip_id TEXT NOT NULL,
    PRIMARY KEY(shift_id, position)
);
CREATE TABLE IF NOT EXISTS drivers (
    id TEXT PRIMARY KEY,
    name TEXT,
    driver_class TEXT,
    max_hours_per_day REAL NOT NULL,
    home_base TEXT
);`

// SQLiteStore persists planning data in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps in-memory databases shared across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveDocument stores every trip of doc together with its stops. The whole
// document is rejected when one of its trips is already stored.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *extract.Document) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range doc.Trips {
			var one int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM trips WHERE contract_id = ? AND trip_id = ?`, t.ContractID, t.ID).Scan(&one)
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s", ErrTripExists, t.Key())
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO trips (contract_id, trip_id, document, trip_date,
                start_time, end_time, start_location, end_location, distance, duration, drive_time,
                driver_class, vehicle) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ContractID, t.ID, doc.Name, t.Date.Format(dateLayout), int(t.StartTime), int(t.EndTime),
				t.StartLocation, t.EndLocation, t.Distance, t.Duration, t.DriveTime,
				t.RequiredDriverClass, t.Vehicle); err != nil {
				return fmt.Errorf("insert trip %s: %w", t.Key(), err)
			}
			for _, st := range t.Stops {
				if _, err := tx.ExecContext(ctx, `INSERT INTO stops (contract_id, trip_id, sequence,
                    facility_id, facility, arrival, departure, load_unload, vehicle, frequency, stop_date)
                    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					t.ContractID, t.ID, st.Sequence, st.FacilityID, st.Facility,
					nullTime(st.Arrival), nullTime(st.Departure), int64(st.LoadUnload),
					st.Vehicle, st.Frequency, nullDate(st.Date)); err != nil {
					return fmt.Errorf("insert stop %s/%d: %w", t.Key(), st.Sequence, err)
				}
			}
		}
		return nil
	})
}

// LoadTrips returns the trips of a contract in the order they were saved.
func (s *SQLiteStore) LoadTrips(ctx context.Context, contract string) ([]model.Trip, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT trip_id, trip_date, start_time, end_time, start_location,
        end_location, distance, duration, drive_time, driver_class, vehicle
        FROM trips WHERE contract_id = ? ORDER BY rowid`, contract)
	if err != nil {
		return nil, err
	}
	var trips []model.Trip
	for rows.Next() {
		t := model.Trip{ContractID: contract}
		var date string
		var start, end int
		if err := rows.Scan(&t.ID, &date, &start, &end, &t.StartLocation, &t.EndLocation,
			&t.Distance, &t.Duration, &t.DriveTime, &t.RequiredDriverClass, &t.Vehicle); err != nil {
			_ = rows.Close()
			return nil, err
		}
		t.StartTime, t.EndTime = model.TimeOfDay(start), model.TimeOfDay(end)
		if t.Date, err = time.Parse(dateLayout, date); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("trip %s date: %w", t.Key(), err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	for i := range trips {
		if trips[i].Stops, err = s.loadStops(ctx, trips[i].Key()); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

func (s *SQLiteStore) loadStops(ctx context.Context, key model.TripKey) ([]model.Stop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sequence, facility_id, facility, arrival, departure,
        load_unload, vehicle, frequency, stop_date FROM stops WHERE contract_id = ? AND trip_id = ? ORDER BY sequence`,
		key.ContractID, key.TripID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var stops []model.Stop
	for rows.Next() {
		var st model.Stop
		var arr, dep sql.NullInt64
		var load int64
		var date sql.NullString
		if err := rows.Scan(&st.Sequence, &st.FacilityID, &st.Facility, &arr, &dep, &load,
			&st.Vehicle, &st.Frequency, &date); err != nil {
			return nil, err
		}
		st.Arrival, st.Departure = timeOf(arr), timeOf(dep)
		st.LoadUnload = time.Duration(load)
		if date.Valid {
			d, err := time.Parse(dateLayout, date.String)
			if err != nil {
				return nil, fmt.Errorf("stop %s/%d date: %w", key, st.Sequence, err)
			}
			st.Date = &d
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// SaveShifts stores packed shifts. Each call writes new rows.
func (s *SQLiteStore) SaveShifts(ctx context.Context, shifts []model.Shift) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, sh := range shifts {
			id := uuid.NewString()
			if _, err := tx.ExecContext(ctx, `INSERT INTO shifts (id, contract_id, shift_index, shift_date,
                total_hours, total_miles) VALUES (?, ?, ?, ?, ?, ?)`,
				id, sh.ContractID, sh.Index, dateOrNull(sh.Date), sh.TotalHours, sh.TotalMiles); err != nil {
				return fmt.Errorf("insert shift %d: %w", sh.Index, err)
			}
			for i, st := range sh.Stops {
				if _, err := tx.ExecContext(ctx, `INSERT INTO shift_stops (shift_id, position, ref, facility,
                    hours, miles) VALUES (?, ?, ?, ?, ?, ?)`,
					id, i, st.Ref, st.Facility, st.Hours, st.Miles); err != nil {
					return fmt.Errorf("insert shift stop %s: %w", st.Ref, err)
				}
			}
		}
		return nil
	})
}

// CountShifts returns the number of packed shifts stored for a contract.
func (s *SQLiteStore) CountShifts(ctx context.Context, contract string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shifts WHERE contract_id = ?`, contract).Scan(&n)
	return n, err
}

// SaveDriverShifts stores optimizer output with member trips referenced by key.
func (s *SQLiteStore) SaveDriverShifts(ctx context.Context, shifts []model.DriverShift) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, sh := range shifts {
			if _, err := tx.ExecContext(ctx, `INSERT INTO driver_shifts (id, driver_id, shift_date,
                total_hours, total_miles) VALUES (?, ?, ?, ?, ?)`,
				sh.ID, sh.DriverID, dateOrNull(sh.ShiftDate), sh.TotalHours, sh.TotalMiles); err != nil {
				return fmt.Errorf("insert driver shift %s: %w", sh.ID, err)
			}
			for i, t := range sh.Trips {
				if _, err := tx.ExecContext(ctx, `INSERT INTO driver_shift_trips (shift_id, position,
                    contract_id, trip_id) VALUES (?, ?, ?, ?)`, sh.ID, i, t.ContractID, t.ID); err != nil {
					return fmt.Errorf("insert driver shift trip %s: %w", t.Key(), err)
				}
			}
		}
		return nil
	})
}

// DriverShiftTrips returns the trip keys bound to the driver, grouped by shift
// in insertion order.
func (s *SQLiteStore) DriverShiftTrips(ctx context.Context, driverID string) ([][]model.TripKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ds.id, t.contract_id, t.trip_id
        FROM driver_shifts ds JOIN driver_shift_trips t ON t.shift_id = ds.id
        WHERE ds.driver_id = ? ORDER BY ds.rowid, t.position`, driverID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var (
		res  [][]model.TripKey
		last string
	)
	for rows.Next() {
		var id string
		var k model.TripKey
		if err := rows.Scan(&id, &k.ContractID, &k.TripID); err != nil {
			return nil, err
		}
		if id != last || len(res) == 0 {
			res = append(res, nil)
			last = id
		}
		res[len(res)-1] = append(res[len(res)-1], k)
	}
	return res, rows.Err()
}

// SaveDrivers inserts or updates roster entries.
func (s *SQLiteStore) SaveDrivers(ctx context.Context, drivers []model.Driver) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, d := range drivers {
			if _, err := tx.ExecContext(ctx, `INSERT INTO drivers (id, name, driver_class, max_hours_per_day, home_base)
                VALUES (?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET
                    name = excluded.name,
                    driver_class = excluded.driver_class,
                    max_hours_per_day = excluded.max_hours_per_day,
                    home_base = excluded.home_base`,
				d.ID, d.Name, d.Class, d.MaxHoursPerDay, d.HomeBase); err != nil {
				return fmt.Errorf("save driver %s: %w", d.ID, err)
			}
		}
		return nil
	})
}

// LoadDrivers returns the roster in insertion order.
func (s *SQLiteStore) LoadDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, driver_class, max_hours_per_day, home_base
        FROM drivers ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Driver
	for rows.Next() {
		var d model.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Class, &d.MaxHoursPerDay, &d.HomeBase); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func nullTime(t *model.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return int(*t)
}

func timeOf(v sql.NullInt64) *model.TimeOfDay {
	if !v.Valid {
		return nil
	}
	t := model.TimeOfDay(v.Int64)
	return &t
}

func nullDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(dateLayout)
}

func dateOrNull(d time.Time) any {
	if d.IsZero() {
		return nil
	}
	return d.Format(dateLayout)
}
