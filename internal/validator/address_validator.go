package validator

import (
	"regexp"
	"strings"

	"app/internal/domain/model"
)

// 配送先住所のチェック。全項目必須。
// 問題のある項目を全部集めて返す（最初の1件で止めない）。
func ValidateAddress(a model.Address) []string {
	missing := []string{}

	if strings.TrimSpace(a.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(a.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if !isEmailLike(a.Email) {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.Pincode) == "" {
		missing = append(missing, "pincode")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phone")
	}

	return missing
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
