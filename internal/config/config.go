package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	PaymentBaseURL   string // 決済ゲートウェイAPIのベースURL
	PaymentKeyID     string // ゲートウェイのキーID（Basic認証のuser）
	PaymentKeySecret string // ゲートウェイのシークレット（署名検証にも使う）

	NotifyURL string // 通知Webhook。空なら通知無効

	GoEnv string // dev/prod
}

// Loadは環境変数
// DB接続はDATABASE_URL / POSTGRES_*をinfra/db側で直接読む。
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PaymentBaseURL:   os.Getenv("PAYMENT_BASE_URL"),
		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),

		NotifyURL: os.Getenv("NOTIFY_URL"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PaymentBaseURL == "" {
		return Config{}, fmt.Errorf("PAYMENT_BASE_URL is required")
	}
	if cfg.PaymentKeyID == "" {
		return Config{}, fmt.Errorf("PAYMENT_KEY_ID is required")
	}
	if cfg.PaymentKeySecret == "" {
		return Config{}, fmt.Errorf("PAYMENT_KEY_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}
