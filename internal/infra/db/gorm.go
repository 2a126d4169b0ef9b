package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// DATABASE_URLがあれば最優先、無ければPOSTGRES_*から組み立てる。
func Connect() (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: queryLogger()}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "postgres")
	pass := envOr("POSTGRES_PASSWORD", "postgres")
	name := envOr("POSTGRES_DB", "storefront")
	ssl := envOr("POSTGRES_SSLMODE", "disable")

	//注文・監査のタイムスタンプはUTCで揃える
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, user, pass, name, ssl,
	)

	return gorm.Open(postgres.Open(dsn), cfg)
}

// 本番はクエリログを黙らせる（GO_ENVはconfigと同じキー）
func queryLogger() gormlogger.Interface {
	if os.Getenv("GO_ENV") == "production" {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return gormlogger.Default.LogMode(gormlogger.Warn)
}

func envOr(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
