package sqlite

import (
	"database/sql/driver"
	"strings"

	modernc "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode-aware lower-casing function. SQLite's
// built-in lower() only folds ASCII.
const foldFunc = "promptcraft_fold"

func init() {
	modernc.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
