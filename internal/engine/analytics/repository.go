package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scan is one resolution of a payment link's short code.
type Scan struct {
	ID             string `json:"id"`
	LinkID         string `json:"link_id"`
	ShortCode      string `json:"short_code"`
	Timestamp      int64  `json:"timestamp"`
	IPAddress      string `json:"-"`
	UserAgent      string `json:"user_agent,omitempty"`
	DeviceType     string `json:"device_type"`
	OS             string `json:"os"`
	Browser        string `json:"browser"`
	Referrer       string `json:"referrer,omitempty"`
	ReferrerDomain string `json:"referrer_domain,omitempty"`
}

type DailyStat struct {
	Date        string `json:"date"`
	Scans       int    `json:"scans"`
	UniqueIPs   int    `json:"unique_ips"`
	TopDevice   string `json:"top_device"`
	TopOS       string `json:"top_os"`
	TopReferrer string `json:"top_referrer"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertScan(s *Scan) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO scans (
			id, link_id, short_code, timestamp, ip_address, user_agent,
			device_type, os, browser, referrer, referrer_domain
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		s.ID, s.LinkID, s.ShortCode, s.Timestamp, s.IPAddress, s.UserAgent,
		s.DeviceType, s.OS, s.Browser, s.Referrer, s.ReferrerDomain,
	)
	return err
}

func (r *Repository) GetScans(linkID string, start, end int64, limit, offset int) ([]Scan, error) {
	query := `
		SELECT id, link_id, short_code, timestamp, user_agent, device_type, os, browser, referrer, referrer_domain
		FROM scans
		WHERE link_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, linkID, start, end, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		var s Scan
		var ua, device, os, browser, ref, refDomain sql.NullString
		if err := rows.Scan(&s.ID, &s.LinkID, &s.ShortCode, &s.Timestamp, &ua, &device, &os, &browser, &ref, &refDomain); err != nil {
			return nil, err
		}
		s.UserAgent, s.DeviceType, s.OS, s.Browser = ua.String, device.String, os.String, browser.String
		s.Referrer, s.ReferrerDomain = ref.String, refDomain.String
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

func (r *Repository) GetDailyStats(linkID string, startDate, endDate string) ([]DailyStat, error) {
	query := `
		SELECT date, scans, unique_ips, top_device, top_os, top_referrer
		FROM daily_scan_stats
		WHERE link_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC
	`
	rows, err := r.db.Query(query, linkID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []DailyStat{}
	for rows.Next() {
		var s DailyStat
		var topDevice, topOS, topReferrer sql.NullString
		if err := rows.Scan(&s.Date, &s.Scans, &s.UniqueIPs, &topDevice, &topOS, &topReferrer); err != nil {
			return nil, err
		}
		s.TopDevice = topDevice.String
		s.TopOS = topOS.String
		s.TopReferrer = topReferrer.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// LinksScannedOn lists the links with at least one scan on the UTC date.
func (r *Repository) LinksScannedOn(date string) ([]string, error) {
	startTs, endTs, err := dayBounds(date)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query("SELECT DISTINCT link_id FROM scans WHERE timestamp >= ? AND timestamp < ?", startTs, endTs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) ComputeDailyStats(linkID, date string) (*DailyStat, error) {
	startTs, endTs, err := dayBounds(date)
	if err != nil {
		return nil, err
	}

	stat := &DailyStat{Date: date}
	err = r.db.QueryRow(
		"SELECT COUNT(*), COUNT(DISTINCT ip_address) FROM scans WHERE link_id = ? AND timestamp >= ? AND timestamp < ?",
		linkID, startTs, endTs).Scan(&stat.Scans, &stat.UniqueIPs)
	if err != nil {
		return nil, err
	}

	for column, dest := range map[string]*string{
		"device_type":     &stat.TopDevice,
		"os":              &stat.TopOS,
		"referrer_domain": &stat.TopReferrer,
	} {
		top, err := r.topValue(column, linkID, startTs, endTs)
		if err != nil {
			return nil, err
		}
		*dest = top
	}

	return stat, nil
}

func (r *Repository) topValue(column, linkID string, startTs, endTs int64) (string, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s FROM scans
		WHERE link_id = ? AND timestamp >= ? AND timestamp < ? AND %[1]s IS NOT NULL AND %[1]s != ''
		GROUP BY %[1]s ORDER BY COUNT(*) DESC, %[1]s LIMIT 1
	`, column)

	var top string
	err := r.db.QueryRow(query, linkID, startTs, endTs).Scan(&top)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return top, err
}

func (r *Repository) UpsertDailyStats(stat *DailyStat, linkID string) error {
	query := `
		INSERT INTO daily_scan_stats (id, link_id, date, scans, unique_ips, top_device, top_os, top_referrer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link_id, date) DO UPDATE SET
			scans=excluded.scans,
			unique_ips=excluded.unique_ips,
			top_device=excluded.top_device,
			top_os=excluded.top_os,
			top_referrer=excluded.top_referrer
	`
	id := fmt.Sprintf("%s_%s", linkID, stat.Date)

	_, err := r.db.Exec(query,
		id, linkID, stat.Date, stat.Scans, stat.UniqueIPs,
		stat.TopDevice, stat.TopOS, stat.TopReferrer,
		time.Now().Unix(),
	)
	return err
}

// dayBounds returns the [start, end) millisecond range of a YYYY-MM-DD UTC date.
func dayBounds(date string) (int64, int64, error) {
	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return start.UnixMilli(), start.Add(24 * time.Hour).UnixMilli(), nil
}
