// Package database 负责各类存储连接的初始化。
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"ui-guide-go/pkg/log"
)

var BoltDB *bolt.DB

// OpenBolt 打开（必要时创建）本地 bbolt 文件。
func OpenBolt(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", path, err)
	}
	return db, nil
}

// InitBolt 打开默认的本地存储文件。
func InitBolt(path string) error {
	db, err := OpenBolt(path)
	if err != nil {
		return err
	}
	BoltDB = db
	log.Infof("Bolt store opened at %s", path)
	return nil
}
