// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"fmt"
	"strconv"
)

// ParseID はパスパラメータのID文字列をint64に変換します。
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}
