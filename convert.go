package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func isTextualType(base string) bool {
	switch base {
	case "char", "varchar", "character", "character varying", "text",
		"tinytext", "mediumtext", "longtext", "enum", "set",
		"json", "jsonb", "uuid", "string", "objectid":
		return true
	}
	return false
}

func isDecimalType(base string) bool {
	return base == "decimal" || base == "numeric"
}

func isIntegerType(base string) bool {
	switch base {
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year", "serial", "bigserial":
		return true
	}
	return false
}

func isFloatType(base string) bool {
	switch base {
	case "float", "double", "real", "double precision":
		return true
	}
	return false
}

// convertValue converts one source value into a form the target engine can
// insert. It never fails: values that cannot be decoded losslessly degrade
// to a text rendering.
func convertValue(val any, col Column, src, dst Family) any {
	if val == nil {
		return nil
	}
	base := typeBase(col.DataType)

	switch v := val.(type) {
	case primitive.ObjectID:
		// Canonical string form survives a round trip back into a
		// document engine.
		return v.Hex()

	case primitive.Binary:
		if dst == FamilyMongo {
			return v
		}
		return base64.StdEncoding.EncodeToString(v.Data)

	case primitive.DateTime:
		return convertTime(v.Time().UTC(), src, dst)

	case primitive.Decimal128:
		return decimalToFloat(v.String())

	case pgtype.Numeric:
		return convertNumeric(v, dst)

	case [16]byte:
		// pgx decodes uuid columns to their raw bytes.
		if base == "uuid" {
			return uuid.UUID(v).String()
		}
		return decodeBinary(v[:])

	case time.Time:
		return convertTime(v, src, dst)

	case bool:
		// Families without a native boolean get the narrowest integer.
		if dst == FamilyMySQL || dst == FamilySQLite {
			if v {
				return int64(1)
			}
			return int64(0)
		}
		return v

	case bson.M:
		return convertNested(v, dst)
	case map[string]any:
		return convertNested(v, dst)
	case bson.A:
		return convertNested([]any(v), dst)

	case string:
		if isDecimalType(base) && (dst == FamilyMongo || dst == FamilySQLite) {
			return decimalToFloat(v)
		}
		if dst == FamilyMySQL || dst == FamilyPostgres {
			return stripNulls(v)
		}
		return v

	case []byte:
		return convertBytes(v, base, src, dst)

	case []any:
		return convertNested(v, dst)
	}

	return val
}

// convertTime keeps native temporal values only between families whose
// drivers share a compatible binding; everywhere else it renders ISO 8601
// text. Zero times become NULL.
func convertTime(t time.Time, src, dst Family) any {
	if t.IsZero() {
		return nil
	}
	if (src == FamilyMySQL || src == FamilyPostgres) && (dst == FamilyMySQL || dst == FamilyPostgres) {
		return t
	}
	return t.Format(time.RFC3339)
}

// convertNested serializes objects and arrays for targets that cannot
// represent nested structures.
func convertNested(v any, dst Family) any {
	if dst == FamilyMongo {
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// convertBytes handles driver byte payloads: decimals and text come back as
// []byte from SQL drivers, and raw binary needs the heuristic decode for
// targets that store it as text.
func convertBytes(b []byte, base string, src, dst Family) any {
	switch {
	case isDecimalType(base):
		if dst == FamilyMongo || dst == FamilySQLite {
			return decimalToFloat(string(b))
		}
		return string(b)

	case isTextualType(base):
		if dst == FamilyMySQL || dst == FamilyPostgres {
			return stripNulls(string(b))
		}
		return string(b)

	case isIntegerType(base):
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return n
		}
		return string(b)

	case isFloatType(base):
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
		return string(b)
	}

	// Raw binary. MySQL targets always take the text decode; PostgreSQL
	// keeps bytea except for SQLite blobs, which carry no type information
	// worth preserving.
	if dst == FamilyMySQL || (dst == FamilyPostgres && src == FamilySQLite) {
		return decodeBinary(b)
	}
	return b
}

// convertNumeric renders a pgx numeric as exact decimal text, or as float
// for targets that store decimals in floating point.
func convertNumeric(n pgtype.Numeric, dst Family) any {
	if !n.Valid {
		return nil
	}
	dv, err := n.Value()
	if err != nil {
		return nil
	}
	s, ok := dv.(string)
	if !ok {
		return dv
	}
	if dst == FamilyMongo || dst == FamilySQLite {
		return decimalToFloat(s)
	}
	return s
}

// decimalToFloat parses an arbitrary-precision decimal rendering and
// returns the closest float64, falling back to the original text when it
// does not parse.
func decimalToFloat(s string) any {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}

// decodeBinary renders a raw binary value as text. A 16-byte payload is
// first probed as a UUID's binary form (RFC 4122 variant, version 1-5) and
// rendered canonically; otherwise printable ASCII wins, then printable
// UTF-8 (printable ratio above 0.8), and only then base64.
func decodeBinary(b []byte) string {
	if len(b) == 16 {
		if u, err := uuid.FromBytes(b); err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5 {
			return u.String()
		}
	}
	if isPrintableASCII(b) {
		return string(b)
	}
	if utf8.Valid(b) && printableRatio(string(b)) > 0.8 {
		return string(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func isPrintableASCII(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func printableRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	total, printable := 0, 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// stripNulls removes null bytes, which PostgreSQL text columns reject and
// MySQL silently truncates at.
func stripNulls(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// convertRow converts every value of a fetched row in place.
func convertRow(row []any, cols []Column, src, dst Family) []any {
	for i := range row {
		var col Column
		if i < len(cols) {
			col = cols[i]
		}
		row[i] = convertValue(row[i], col, src, dst)
	}
	return row
}
