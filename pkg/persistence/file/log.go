package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
)

func (fp *Persistence) SaveLog(_ context.Context, log *models.Log) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	if err := fp.write(logsDir, log.ID, log); err != nil {
		return fmt.Errorf("failed to save log %s: %w", log.ID, err)
	}

	return nil
}

func (fp *Persistence) LogByID(_ context.Context, id string) (*models.Log, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	var log models.Log

	found, err := fp.read(logsDir, id, &log)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("log %s: %w", id, persistence.ErrLogNotFound)
	}

	return &log, nil
}

func (fp *Persistence) Logs(_ context.Context, filter persistence.LogFilter) ([]*models.Log, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	logs, err := fp.logs()
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Log, 0, len(logs))
	for _, log := range logs {
		if filter.Matches(log) {
			matching = append(matching, log)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	if limit := filter.EffectiveLimit(); len(matching) > limit {
		matching = matching[:limit]
	}

	return matching, nil
}

// DeleteLogsBefore removes the logs created before the given time.
func (fp *Persistence) DeleteLogsBefore(_ context.Context, before time.Time) (int64, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	logs, err := fp.logs()
	if err != nil {
		return 0, err
	}

	var deleted int64

	for _, log := range logs {
		if !log.CreatedAt.Before(before) {
			continue
		}

		found, err := fp.remove(logsDir, log.ID)
		if err != nil {
			return deleted, err
		}

		if found {
			deleted++
		}
	}

	return deleted, nil
}

func (fp *Persistence) logs() ([]*models.Log, error) {
	ids, err := fp.ids(logsDir)
	if err != nil {
		return nil, err
	}

	logs := make([]*models.Log, 0, len(ids))

	for _, id := range ids {
		var log models.Log

		found, err := fp.read(logsDir, id, &log)
		if err != nil {
			return nil, err
		}

		if found {
			logs = append(logs, &log)
		}
	}

	return logs, nil
}
