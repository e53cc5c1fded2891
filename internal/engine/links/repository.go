package links

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrLinkNotFound = errors.New("payment link not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const linkColumns = `id, short_code, title, created_by, intent, status,
		       expires_at, password_hash, scan_count, last_scan_at, created_at, updated_at`

func (r *Repository) Create(link *PaymentLink) error {
	query := `
		INSERT INTO payment_links (
			id, short_code, title, created_by, intent, status,
			expires_at, password_hash, scan_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	intentJSON, err := json.Marshal(link.Intent)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query,
		link.ID,
		link.ShortCode,
		link.Title,
		link.CreatedBy,
		string(intentJSON),
		link.Status,
		link.ExpiresAt,
		link.PasswordHash,
		link.ScanCount,
		link.CreatedAt,
		link.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByID(id string) (*PaymentLink, error) {
	row := r.db.QueryRow(`SELECT `+linkColumns+` FROM payment_links WHERE id = ?`, id)
	return scanLink(row)
}

func (r *Repository) GetByShortCode(shortCode string) (*PaymentLink, error) {
	row := r.db.QueryRow(`SELECT `+linkColumns+` FROM payment_links WHERE short_code = ?`, shortCode)
	return scanLink(row)
}

func (r *Repository) ExistsByShortCode(shortCode string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM payment_links WHERE short_code = ?)"
	err := r.db.QueryRow(query, shortCode).Scan(&exists)
	return exists, err
}

func (r *Repository) Update(link *PaymentLink) error {
	query := `
		UPDATE payment_links SET
			title = ?, intent = ?, status = ?,
			expires_at = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`

	intentJSON, err := json.Marshal(link.Intent)
	if err != nil {
		return err
	}

	link.UpdatedAt = time.Now().Unix()
	res, err := r.db.Exec(query,
		link.Title,
		string(intentJSON),
		link.Status,
		link.ExpiresAt,
		link.PasswordHash,
		link.UpdatedAt,
		link.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) Archive(id string) error {
	res, err := r.db.Exec("UPDATE payment_links SET status = ?, updated_at = ? WHERE id = ?",
		StatusArchived, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) IncrementScanCount(id string) error {
	query := `UPDATE payment_links SET scan_count = scan_count + 1, last_scan_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, time.Now().Unix(), id)
	return err
}

// ExpireDue marks active links whose expiry has passed and returns how many changed.
func (r *Repository) ExpireDue(now int64) (int64, error) {
	res, err := r.db.Exec(
		`UPDATE payment_links SET status = ?, updated_at = ? WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		StatusExpired, now, StatusActive, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List pages through links newest first. An empty createdBy lists every owner.
func (r *Repository) List(createdBy string, limit, offset int) ([]*PaymentLink, error) {
	query := `SELECT ` + linkColumns + `
		FROM payment_links
		WHERE (? = '' OR created_by = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, createdBy, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*PaymentLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	return result, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func scanLink(s interface {
	Scan(dest ...interface{}) error
}) (*PaymentLink, error) {
	var link PaymentLink
	var expiresAt, lastScanAt sql.NullInt64

	err := s.Scan(
		&link.ID,
		&link.ShortCode,
		&link.Title,
		&link.CreatedBy,
		&link.Intent,
		&link.Status,
		&expiresAt,
		&link.PasswordHash,
		&link.ScanCount,
		&lastScanAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		val := expiresAt.Int64
		link.ExpiresAt = &val
	}
	if lastScanAt.Valid {
		val := lastScanAt.Int64
		link.LastScanAt = &val
	}

	return &link, nil
}
