package tools

import (
	"encoding/json"
	"math"
	"strconv"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

// FormatFixed prints f with the given number of decimals, "inf" for infinities.
func FormatFixed(f float64, decimals int) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// FormatSize prints an [x, y, z] size with four decimals.
func FormatSize(size [3]float64) string {
	return "[" + FormatFixed(size[0], 4) + ", " + FormatFixed(size[1], 4) + ", " + FormatFixed(size[2], 4) + "]"
}
