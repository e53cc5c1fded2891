package analytics

import "time"

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) RecordScan(scan *Scan) error {
	if scan.Timestamp == 0 {
		scan.Timestamp = time.Now().UnixMilli()
	}
	return s.repo.InsertScan(scan)
}

func (s *Service) GetScanHistory(linkID string, start, end int64, limit, offset int) ([]Scan, error) {
	return s.repo.GetScans(linkID, start, end, limit, offset)
}

func (s *Service) GetStatsOverview(linkID string, startDate, endDate string) ([]DailyStat, error) {
	return s.repo.GetDailyStats(linkID, startDate, endDate)
}

// RollupDay recomputes the daily stats of every link scanned on date and
// returns how many rows were written.
func (s *Service) RollupDay(date string) (int, error) {
	ids, err := s.repo.LinksScannedOn(date)
	if err != nil {
		return 0, err
	}

	for i, id := range ids {
		stat, err := s.repo.ComputeDailyStats(id, date)
		if err != nil {
			return i, err
		}
		if err := s.repo.UpsertDailyStats(stat, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}
