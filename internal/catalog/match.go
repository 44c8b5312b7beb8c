package catalog

// Matches reports whether doc's field key exactly equals value.
//
// Equality is strict except for numeric widening: a record that round-trips
// through JSON carries float64 where the caller may hold an int. Comparing
// across numeric types keeps the embedded and in-memory backends consistent
// with the database backends, which compare numerically server side.
func Matches(doc Document, key string, value any) bool {
	got, ok := doc[key]
	if !ok {
		return false
	}
	if gn, gok := toFloat(got); gok {
		vn, vok := toFloat(value)
		return vok && gn == vn
	}
	return got == value
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
