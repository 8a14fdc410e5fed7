package utils

import "database/sql"

func StringPtr(s string) *string {
	return &s
}

func Uint64Ptr(v uint64) *uint64 {
	return &v
}

func BoolPtr(b bool) *bool {
	return &b
}

func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func NullTimeToEmptyString(nt sql.NullTime) string {
	if nt.Valid {
		return nt.Time.Local().Format("2006-01-02 15:04:05")
	}
	return ""
}
