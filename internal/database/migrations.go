package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const migrationBatchSize = 200

// RunMigrations runs data migrations after schema changes.
func RunMigrations(db *gorm.DB, compressor *Compressor) error {
	return pruneUndecodable(db, compressor)
}

// pruneUndecodable deletes rows whose value is empty or is not a zstd frame,
// such as rows written by a crashed process or by a build that stored raw
// JSON. Get would fail on them forever instead of reporting a miss.
func pruneUndecodable(db *gorm.DB, compressor *Compressor) error {
	var bad []string
	var batch []Entry
	result := db.Model(&Entry{}).FindInBatches(&batch, migrationBatchSize, func(tx *gorm.DB, _ int) error {
		for _, entry := range batch {
			if entry.Key == "" || len(entry.Value) == 0 {
				bad = append(bad, entry.Key)
				continue
			}
			if _, err := compressor.Decompress(entry.Value); err != nil {
				bad = append(bad, entry.Key)
			}
		}
		return nil
	})
	if result.Error != nil {
		logrus.Warnf("Failed to scan cache entries: %v", result.Error)
		return nil
	}
	if len(bad) == 0 {
		return nil
	}

	deleted := db.Where(`"key" IN ?`, bad).Delete(&Entry{})
	if deleted.Error != nil {
		logrus.Warnf("Failed to prune undecodable cache entries: %v", deleted.Error)
		return nil
	}
	logrus.Infof("Pruned %d undecodable cache entries", deleted.RowsAffected)
	return nil
}
